// Package ambient detects the build environment from process state.
package ambient

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Environment variables read by the Detector.
const (
	EnvAcceleratorRoot  = "KILN_ACCELERATOR_ROOT"
	EnvCUDAHome         = "CUDA_HOME"
	EnvCUDAPath         = "CUDA_PATH"
	EnvAcceleratorArchs = "KILN_ACCELERATOR_ARCHS"
	EnvNVCC             = "NVCC"
	EnvCXX              = "CXX"
	EnvAR               = "AR"
	EnvRuntimeInclude   = "KILN_RUNTIME_INCLUDE"
	EnvRuntimeLibDir    = "KILN_RUNTIME_LIBDIR"
	EnvRuntimeLib       = "KILN_RUNTIME_LIB"
	EnvExtraInclude     = "KILN_EXTRA_INCLUDE"
	EnvCXXABI           = "KILN_CXX_ABI"
	EnvTarget           = "KILN_TARGET"
	EnvPython           = "KILN_PYTHON"
)

// DefaultAcceleratorRoot is probed when no SDK root variable is set.
const DefaultAcceleratorRoot = "/usr/local/cuda"

// sysconfigScript prints the managed runtime include dir, library dir and
// library name, one per line.
const sysconfigScript = `import sysconfig
print(sysconfig.get_paths().get("include") or "")
print(sysconfig.get_config_var("LIBDIR") or "")
print("python" + (sysconfig.get_config_var("LDVERSION") or sysconfig.get_python_version()))`

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// RunFunc runs a command and returns its standard output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

var _ ports.EnvironmentDetector = (*Detector)(nil)

// Detector implements ports.EnvironmentDetector. All process access goes
// through the injected functions.
type Detector struct {
	lookup LookupFunc
	run    RunFunc
	exists func(path string) bool
}

// NewDetector creates a Detector reading the real process environment.
func NewDetector() *Detector {
	return NewDetectorWith(os.LookupEnv, runCommand, dirExists)
}

// NewDetectorWith creates a Detector over the given lookup, runner and existence check.
func NewDetectorWith(lookup LookupFunc, run RunFunc, exists func(string) bool) *Detector {
	return &Detector{lookup: lookup, run: run, exists: exists}
}

// Detect fills an Environment from variables, probing the accelerator SDK and
// the managed runtime concurrently. Probe failures leave fields empty.
func (d *Detector) Detect(ctx context.Context) (domain.Environment, error) {
	env := domain.Environment{
		AcceleratorArchs:    splitFields(d.get(EnvAcceleratorArchs)),
		AcceleratorCompiler: d.get(EnvNVCC),
		CXX:                 d.get(EnvCXX),
		Archiver:            d.get(EnvAR),
		CXXABI:              d.get(EnvCXXABI),
		TargetTriple:        d.get(EnvTarget),
		ExtraIncludeDirs:    splitPaths(d.get(EnvExtraInclude)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		env.AcceleratorSDKRoot = d.acceleratorRoot()
		return nil
	})
	g.Go(func() error {
		rt, err := d.managedRuntime(gctx)
		if err != nil {
			return err
		}
		env.ManagedRuntime = rt
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Environment{}, err
	}

	return env, nil
}

func (d *Detector) acceleratorRoot() string {
	for _, key := range []string{EnvAcceleratorRoot, EnvCUDAHome, EnvCUDAPath} {
		if v := d.get(key); v != "" {
			return v
		}
	}
	if d.exists(DefaultAcceleratorRoot) {
		return DefaultAcceleratorRoot
	}
	return ""
}

// managedRuntime uses the variables when set and asks the interpreter for
// whatever is still missing.
func (d *Detector) managedRuntime(ctx context.Context) (domain.ManagedRuntime, error) {
	rt := domain.ManagedRuntime{
		IncludeDirs: splitPaths(d.get(EnvRuntimeInclude)),
		LibDir:      d.get(EnvRuntimeLibDir),
		Library:     d.get(EnvRuntimeLib),
	}
	if len(rt.IncludeDirs) > 0 && rt.LibDir != "" && rt.Library != "" {
		return rt, nil
	}

	python := d.get(EnvPython)
	if python == "" {
		python = "python3"
	}
	out, err := d.run(ctx, python, "-c", sysconfigScript)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ManagedRuntime{}, zerr.Wrap(ctxErr, "environment detection interrupted")
		}
		return rt, nil
	}

	lines := make([]string, 0, 3)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	for len(lines) < 3 {
		lines = append(lines, "")
	}

	if len(rt.IncludeDirs) == 0 && lines[0] != "" {
		rt.IncludeDirs = []string{lines[0]}
	}
	if rt.LibDir == "" {
		rt.LibDir = lines[1]
	}
	if rt.Library == "" && lines[2] != "python" {
		rt.Library = lines[2]
	}
	return rt, nil
}

func (d *Detector) get(key string) string {
	v, ok := d.lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// splitFields splits on commas and whitespace.
func splitFields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// splitPaths splits a PATH-style list, dropping empty entries.
func splitPaths(s string) []string {
	var out []string
	for _, part := range filepath.SplitList(s) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output() //nolint:gosec // interpreter comes from the environment
}

func dirExists(path string) bool {
	info, err := os.Stat(filepath.Clean(path))
	return err == nil && info.IsDir()
}
