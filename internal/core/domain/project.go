package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Project is a loaded project definition: the ordered units and the
// environment overrides declared next to them.
type Project struct {
	Root      string
	Units     []ExtensionSpec
	Overrides Environment
}

// Select returns the named units in registration order. An empty names list selects every unit.
func (p *Project) Select(names []string) ([]ExtensionSpec, error) {
	if len(names) == 0 {
		return slices.Clone(p.Units), nil
	}
	for _, name := range names {
		if !slices.ContainsFunc(p.Units, func(s ExtensionSpec) bool { return s.Name() == name }) {
			return nil, unknownUnit(name)
		}
	}
	var out []ExtensionSpec
	for _, spec := range p.Units {
		if slices.Contains(names, spec.Name()) {
			out = append(out, spec)
		}
	}
	return out, nil
}

// Sources returns every source path across units, without duplicates.
func (p *Project) Sources() []string {
	set := NewTriggerSet()
	for _, spec := range p.Units {
		set.Add(spec.Sources()...)
	}
	return set.Paths()
}

func unknownUnit(name string) error {
	return zerr.With(zerr.Wrap(ErrUnknownUnit, "unit is not declared"), "unit", name)
}
