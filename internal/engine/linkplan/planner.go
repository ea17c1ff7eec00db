// Package linkplan decides which native libraries a unit must be linked against.
package linkplan

import (
	"go.trai.ch/kiln/internal/core/domain"
)

// Planner computes link directives for specs against a fixed environment.
// Planning performs no I/O and never fails.
type Planner struct {
	env domain.Environment
}

// New creates a Planner for env.
func New(env domain.Environment) *Planner {
	return &Planner{env: env.WithDefaults()}
}

// Plan returns the directives spec needs, in dependency-before-dependent order:
// the managed runtime first, then the accelerator runtime with its search path.
func (p *Planner) Plan(spec domain.ExtensionSpec) []domain.LinkDirective {
	var out []domain.LinkDirective

	if spec.LinkManagedRuntime() {
		out = append(out, domain.LinkDirective{
			Library:    p.env.ManagedRuntime.Library,
			SearchPath: p.env.ManagedRuntime.LibDir,
			Kind:       domain.LinkDynamic,
			Condition:  domain.ConditionManagedRuntime,
		})
	}

	if spec.NeedsAcceleratorRuntime() {
		condition := domain.ConditionAcceleratorAPI
		if spec.Kind() == domain.AcceleratorUnit {
			condition = domain.ConditionAcceleratorUnit
		}
		out = append(out, domain.LinkDirective{
			Library:    p.env.AcceleratorRuntimeLibrary,
			SearchPath: p.env.AcceleratorLibDir(),
			Kind:       domain.LinkDynamic,
			Condition:  condition,
		})
	}

	return out
}
