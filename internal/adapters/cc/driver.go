// Package cc drives the host and accelerator compilers and the static archiver.
package cc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Compiler = (*Driver)(nil)

// Driver implements ports.Compiler by running the configured compiler once
// per source and archiving the objects with the configured archiver.
type Driver struct {
	jobs int
}

// NewDriver creates a Driver compiling up to one source per CPU at a time.
func NewDriver() *Driver {
	return &Driver{jobs: runtime.NumCPU()}
}

// WithJobs limits how many sources of one unit are compiled concurrently.
func (d *Driver) WithJobs(n int) *Driver {
	if n < 1 {
		n = 1
	}
	d.jobs = n
	return d
}

// Compile freezes cfg and produces lib<unit>.a under <out_dir>/<unit>.
func (d *Driver) Compile(ctx context.Context, cfg *domain.ToolchainConfig, sources []string) (domain.Artifact, error) {
	cfg.Freeze()

	for _, src := range sources {
		if err := checkSource(src); err != nil {
			return domain.Artifact{}, zerr.With(err, "unit", cfg.Unit())
		}
	}

	dir := domain.UnitDir(cfg.OutDir(), cfg.Unit())
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return domain.Artifact{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrOutputUnwritable, err.Error()), "unit", cfg.Unit()), "dir", dir)
	}

	out := newVertexOutput(ctx)
	objects := make([]string, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(d.jobs)
	for i, src := range sources {
		objects[i] = filepath.Join(dir, objectName(i, src))
		g.Go(func() error {
			errs[i] = d.run(ctx, out, cfg.Unit(), src, cfg.Compiler(), cfg.Args(src, objects[i])...)
			return nil
		})
	}
	_ = g.Wait()

	// Report the first failing source in declaration order.
	for _, err := range errs {
		if err != nil {
			return domain.Artifact{}, err
		}
	}

	archive := filepath.Join(dir, domain.ArchiveName(cfg.Unit()))
	if err := os.Remove(archive); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.Artifact{}, zerr.With(zerr.Wrap(domain.ErrOutputUnwritable, err.Error()), "path", archive)
	}
	args := append([]string{"crs", archive}, objects...)
	if err := d.run(ctx, out, cfg.Unit(), "", cfg.Archiver(), args...); err != nil {
		return domain.Artifact{}, err
	}

	return domain.Artifact{
		Unit:    cfg.Unit(),
		Library: cfg.Unit(),
		Path:    archive,
		Dir:     dir,
		Objects: objects,
	}, nil
}

// Commands returns the argument vectors Compile runs for sources, in order,
// with the archiver invocation last. Nothing is executed.
func Commands(cfg *domain.ToolchainConfig, sources []string) [][]string {
	dir := domain.UnitDir(cfg.OutDir(), cfg.Unit())
	cmds := make([][]string, 0, len(sources)+1)
	objects := make([]string, 0, len(sources))
	for i, src := range sources {
		obj := filepath.Join(dir, objectName(i, src))
		objects = append(objects, obj)
		cmds = append(cmds, append([]string{cfg.Compiler()}, cfg.Args(src, obj)...))
	}
	archive := filepath.Join(dir, domain.ArchiveName(cfg.Unit()))
	return append(cmds, append([]string{cfg.Archiver(), "crs", archive}, objects...))
}

// run executes one tool invocation. Its combined output is buffered so that
// concurrent compiles do not interleave on the vertex. A tool killed from
// outside is reported as a CompilationError.
func (d *Driver) run(ctx context.Context, out *vertexOutput, unit, src, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return zerr.Wrap(err, "compilation interrupted")
	}

	var buf bytes.Buffer
	// Once started, a tool runs to completion; ctx is only consulted before launch.
	cmd := exec.Command(name, args...) //nolint:gosec // tool comes from the environment
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	out.write(buf.Bytes())
	if err == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	diagnostics := buf.String()
	if exitCode == -1 {
		diagnostics = strings.TrimSpace(diagnostics + "\n" + err.Error())
	}
	return &domain.CompilationError{
		Unit:        unit,
		Source:      src,
		ExitCode:    exitCode,
		Diagnostics: diagnostics,
	}
}

func checkSource(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrSourceUnreadable, err.Error()), "path", src)
	}
	if info.IsDir() {
		return zerr.With(zerr.Wrap(domain.ErrSourceUnreadable, "source is a directory"), "path", src)
	}
	return nil
}

// objectName keeps object files unique when two sources share a base name.
func objectName(i int, src string) string {
	base := filepath.Base(src)
	return fmt.Sprintf("%03d_%s.o", i, strings.TrimSuffix(base, filepath.Ext(base)))
}

type vertexOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func newVertexOutput(ctx context.Context) *vertexOutput {
	w := io.Discard
	if v := ports.VertexFromContext(ctx); v != nil {
		w = v.Stdout()
	}
	return &vertexOutput{w: w}
}

func (o *vertexOutput) write(p []byte) {
	if len(p) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = o.w.Write(p)
}
