package domain

import (
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// UnitKind identifies the hardware target of a compilation unit.
type UnitKind string

const (
	// CpuUnit is general-purpose native code compiled by the host C++ compiler.
	CpuUnit UnitKind = "cpu"
	// AcceleratorUnit is kernel code compiled by the accelerator compiler.
	AcceleratorUnit UnitKind = "accelerator"
)

// ParseUnitKind converts a user-facing kind string into a UnitKind.
func ParseUnitKind(s string) (UnitKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu", "cpp", "c++":
		return CpuUnit, nil
	case "accelerator", "cuda", "gpu":
		return AcceleratorUnit, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidSpec, "unknown unit kind"), "kind", s)
	}
}

// unitName keeps names usable as a path segment and a linker library name.
var unitName = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// ExtensionSpec declares one compilation unit. It is immutable after construction.
type ExtensionSpec struct {
	name               string
	kind               UnitKind
	sources            []string
	useAcceleratorAPI  bool
	linkManagedRuntime bool
}

// SpecOption configures optional ExtensionSpec features.
type SpecOption func(*ExtensionSpec)

// WithAcceleratorAPI sets whether the unit uses accelerator API declarations.
func WithAcceleratorAPI(enabled bool) SpecOption {
	return func(s *ExtensionSpec) {
		s.useAcceleratorAPI = enabled
	}
}

// WithManagedRuntime sets whether the unit links against the managed runtime.
func WithManagedRuntime(enabled bool) SpecOption {
	return func(s *ExtensionSpec) {
		s.linkManagedRuntime = enabled
	}
}

// NewExtensionSpec validates and builds a spec. The sources slice is copied.
func NewExtensionSpec(name string, kind UnitKind, sources []string, opts ...SpecOption) (ExtensionSpec, error) {
	if strings.TrimSpace(name) == "" {
		return ExtensionSpec{}, zerr.With(zerr.Wrap(ErrInvalidSpec, "unit name is empty"), "kind", string(kind))
	}
	if !unitName.MatchString(name) {
		return ExtensionSpec{}, zerr.With(zerr.Wrap(ErrInvalidSpec, "unit name must match "+unitName.String()), "unit", name)
	}
	if kind != CpuUnit && kind != AcceleratorUnit {
		return ExtensionSpec{}, zerr.With(zerr.Wrap(ErrInvalidSpec, "unknown unit kind"), "unit", name)
	}
	if len(sources) == 0 {
		return ExtensionSpec{}, zerr.With(zerr.Wrap(ErrInvalidSpec, "unit has no sources"), "unit", name)
	}
	for _, src := range sources {
		if strings.TrimSpace(src) == "" {
			return ExtensionSpec{}, zerr.With(zerr.Wrap(ErrInvalidSpec, "empty source path"), "unit", name)
		}
	}

	spec := ExtensionSpec{
		name:    name,
		kind:    kind,
		sources: slices.Clone(sources),
	}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec, nil
}

// Name returns the unit name, which is also the static library name.
func (s ExtensionSpec) Name() string {
	return s.name
}

// Kind returns the unit kind.
func (s ExtensionSpec) Kind() UnitKind {
	return s.kind
}

// Sources returns a copy of the ordered source paths.
func (s ExtensionSpec) Sources() []string {
	return slices.Clone(s.sources)
}

// UseAcceleratorAPI reports whether the unit needs accelerator API declarations.
func (s ExtensionSpec) UseAcceleratorAPI() bool {
	return s.useAcceleratorAPI
}

// LinkManagedRuntime reports whether the unit links the managed runtime library.
func (s ExtensionSpec) LinkManagedRuntime() bool {
	return s.linkManagedRuntime
}

// NeedsAcceleratorRuntime reports whether the accelerator runtime must be linked.
func (s ExtensionSpec) NeedsAcceleratorRuntime() bool {
	return s.kind == AcceleratorUnit || s.useAcceleratorAPI
}
