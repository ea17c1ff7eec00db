package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

const (
	// DefaultCXX is the host C++ compiler used when none is configured.
	DefaultCXX = "c++"
	// DefaultArchiver is the static archiver used when none is configured.
	DefaultArchiver = "ar"
	// DefaultCXXStandard is the language standard passed to both compilers.
	DefaultCXXStandard = "c++17"
	// DefaultAcceleratorRuntimeLibrary is the accelerator runtime linked by accelerator units.
	DefaultAcceleratorRuntimeLibrary = "cudart"
	// DefaultOutDir is the build-local directory receiving artifacts.
	DefaultOutDir = "build"
)

// ManagedRuntime locates the host runtime's headers and native library.
type ManagedRuntime struct {
	IncludeDirs []string `json:"include_dirs,omitempty"`
	LibDir      string   `json:"lib_dir,omitempty"`
	Library     string   `json:"library,omitempty"`
}

// Environment is the ambient, invocation-scoped input to configuration.
// It is always passed by value; nothing in the core reads process state.
type Environment struct {
	AcceleratorSDKRoot        string         `json:"accelerator_sdk_root,omitempty"`
	AcceleratorArchs          []string       `json:"accelerator_archs,omitempty"`
	AcceleratorCompiler       string         `json:"accelerator_compiler,omitempty"`
	AcceleratorRuntimeLibrary string         `json:"accelerator_runtime_library,omitempty"`
	ManagedRuntime            ManagedRuntime `json:"managed_runtime"`
	ExtraIncludeDirs          []string       `json:"extra_include_dirs,omitempty"`
	CXX                       string         `json:"cxx,omitempty"`
	Archiver                  string         `json:"archiver,omitempty"`
	CXXStandard               string         `json:"cxx_standard,omitempty"`
	CXXABI                    string         `json:"cxx_abi,omitempty"`
	TargetTriple              string         `json:"target_triple,omitempty"`
	OutDir                    string         `json:"out_dir,omitempty"`
}

// WithDefaults returns a copy with every unset tool and path filled in.
func (e Environment) WithDefaults() Environment {
	out := e.Clone()
	if out.CXX == "" {
		out.CXX = DefaultCXX
	}
	if out.Archiver == "" {
		out.Archiver = DefaultArchiver
	}
	if out.CXXStandard == "" {
		out.CXXStandard = DefaultCXXStandard
	}
	if out.AcceleratorRuntimeLibrary == "" {
		out.AcceleratorRuntimeLibrary = DefaultAcceleratorRuntimeLibrary
	}
	if out.AcceleratorCompiler == "" && out.AcceleratorSDKRoot != "" {
		out.AcceleratorCompiler = filepath.Join(out.AcceleratorSDKRoot, "bin", "nvcc")
	}
	if out.OutDir == "" {
		out.OutDir = DefaultOutDir
	}
	return out
}

// Merge layers every non-zero field of overrides on top of e.
func (e Environment) Merge(overrides Environment) Environment {
	out := e.Clone()
	setString(&out.AcceleratorSDKRoot, overrides.AcceleratorSDKRoot)
	setString(&out.AcceleratorCompiler, overrides.AcceleratorCompiler)
	setString(&out.AcceleratorRuntimeLibrary, overrides.AcceleratorRuntimeLibrary)
	setString(&out.ManagedRuntime.LibDir, overrides.ManagedRuntime.LibDir)
	setString(&out.ManagedRuntime.Library, overrides.ManagedRuntime.Library)
	setString(&out.CXX, overrides.CXX)
	setString(&out.Archiver, overrides.Archiver)
	setString(&out.CXXStandard, overrides.CXXStandard)
	setString(&out.CXXABI, overrides.CXXABI)
	setString(&out.TargetTriple, overrides.TargetTriple)
	setString(&out.OutDir, overrides.OutDir)
	if len(overrides.AcceleratorArchs) > 0 {
		out.AcceleratorArchs = slices.Clone(overrides.AcceleratorArchs)
	}
	if len(overrides.ManagedRuntime.IncludeDirs) > 0 {
		out.ManagedRuntime.IncludeDirs = slices.Clone(overrides.ManagedRuntime.IncludeDirs)
	}
	if len(overrides.ExtraIncludeDirs) > 0 {
		out.ExtraIncludeDirs = slices.Clone(overrides.ExtraIncludeDirs)
	}
	return out
}

// Clone returns a deep copy.
func (e Environment) Clone() Environment {
	out := e
	out.AcceleratorArchs = slices.Clone(e.AcceleratorArchs)
	out.ExtraIncludeDirs = slices.Clone(e.ExtraIncludeDirs)
	out.ManagedRuntime.IncludeDirs = slices.Clone(e.ManagedRuntime.IncludeDirs)
	return out
}

// IsWindows reports whether the target triple names a Windows target.
func (e Environment) IsWindows() bool {
	return strings.Contains(e.TargetTriple, "windows")
}

// AcceleratorIncludeDir returns the accelerator SDK header directory.
func (e Environment) AcceleratorIncludeDir() string {
	if e.AcceleratorSDKRoot == "" {
		return ""
	}
	return filepath.Join(e.AcceleratorSDKRoot, "include")
}

// AcceleratorLibDir returns the accelerator SDK library directory for the target.
func (e Environment) AcceleratorLibDir() string {
	if e.AcceleratorSDKRoot == "" {
		return ""
	}
	if e.IsWindows() {
		return filepath.Join(e.AcceleratorSDKRoot, "lib", "x64")
	}
	return filepath.Join(e.AcceleratorSDKRoot, "lib64")
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
