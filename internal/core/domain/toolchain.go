package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// Define is a single preprocessor definition. An empty Value renders as -DName.
type Define struct {
	Name  string
	Value string
}

func (d Define) String() string {
	if d.Value == "" {
		return "-D" + d.Name
	}
	return "-D" + d.Name + "=" + d.Value
}

// ToolchainConfig accumulates the settings for one unit's compiler invocation.
// It is mutated while being configured and frozen once a compiler consumes it.
type ToolchainConfig struct {
	unit     string
	kind     UnitKind
	compiler string
	archiver string
	outDir   string

	mu          sync.RWMutex
	frozen      bool
	flags       []string
	includeDirs []string
	defines     []Define
}

// NewToolchainConfig starts an empty configuration for the named unit.
func NewToolchainConfig(unit string, kind UnitKind, compiler, archiver, outDir string) *ToolchainConfig {
	return &ToolchainConfig{
		unit:     unit,
		kind:     kind,
		compiler: compiler,
		archiver: archiver,
		outDir:   outDir,
	}
}

// AddFlags appends raw compiler flags in order.
func (c *ToolchainConfig) AddFlags(flags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return c.frozenErr()
	}
	c.flags = append(c.flags, flags...)
	return nil
}

// AddIncludeDirs appends header search paths, skipping empties and repeats.
func (c *ToolchainConfig) AddIncludeDirs(dirs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return c.frozenErr()
	}
	for _, dir := range dirs {
		if dir == "" || slices.Contains(c.includeDirs, dir) {
			continue
		}
		c.includeDirs = append(c.includeDirs, dir)
	}
	return nil
}

// Define adds or replaces a preprocessor definition. Replacement keeps the original position.
func (c *ToolchainConfig) Define(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return c.frozenErr()
	}
	for i := range c.defines {
		if c.defines[i].Name == name {
			c.defines[i].Value = value
			return nil
		}
	}
	c.defines = append(c.defines, Define{Name: name, Value: value})
	return nil
}

// Freeze marks the config as consumed. It is safe to call more than once.
func (c *ToolchainConfig) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// Frozen reports whether the config has been consumed.
func (c *ToolchainConfig) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

func (c *ToolchainConfig) frozenErr() error {
	return zerr.With(zerr.Wrap(ErrToolchainFrozen, "cannot mutate consumed config"), "unit", c.unit)
}

// Unit returns the unit name the config was built for.
func (c *ToolchainConfig) Unit() string { return c.unit }

// Kind returns the unit kind.
func (c *ToolchainConfig) Kind() UnitKind { return c.kind }

// Compiler returns the compiler executable.
func (c *ToolchainConfig) Compiler() string { return c.compiler }

// Archiver returns the static archiver executable.
func (c *ToolchainConfig) Archiver() string { return c.archiver }

// OutDir returns the build-local output root.
func (c *ToolchainConfig) OutDir() string { return c.outDir }

// Flags returns a copy of the raw flags.
func (c *ToolchainConfig) Flags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.flags)
}

// IncludeDirs returns a copy of the header search paths.
func (c *ToolchainConfig) IncludeDirs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.includeDirs)
}

// Defines returns a copy of the preprocessor definitions.
func (c *ToolchainConfig) Defines() []Define {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.defines)
}

// CompileFlags renders flags, defines and include paths in that order.
func (c *ToolchainConfig) CompileFlags() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.flags)+len(c.defines)+len(c.includeDirs))
	out = append(out, c.flags...)
	for _, d := range c.defines {
		out = append(out, d.String())
	}
	for _, dir := range c.includeDirs {
		out = append(out, "-I"+dir)
	}
	return out
}

// Args renders the argument vector compiling src into obj, excluding the compiler itself.
func (c *ToolchainConfig) Args(src, obj string) []string {
	args := c.CompileFlags()
	return append(args, "-c", src, "-o", obj)
}

// Fingerprint is a stable digest of everything that affects the produced objects.
func (c *ToolchainConfig) Fingerprint() string {
	h := sha256.New()
	_, _ = h.Write([]byte(c.unit))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(c.kind))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(c.compiler))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(c.archiver))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strings.Join(c.CompileFlags(), "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}
