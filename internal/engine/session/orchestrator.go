// Package session sequences configure, compile and link for a set of extension specs.
package session

import (
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

// Orchestrator holds the collaborators shared by every session it creates.
type Orchestrator struct {
	configurator *toolchain.Configurator
	compiler     ports.Compiler
	logger       ports.Logger
	telemetry    ports.Telemetry

	tools    ports.ToolChecker
	hasher   ports.Hasher
	store    ports.BuildInfoStore
	verifier ports.Verifier
}

// NewOrchestrator creates an Orchestrator without caching or tool checks.
func NewOrchestrator(
	configurator *toolchain.Configurator,
	compiler ports.Compiler,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *Orchestrator {
	return &Orchestrator{
		configurator: configurator,
		compiler:     compiler,
		logger:       logger,
		telemetry:    telemetry,
	}
}

// WithCache enables skipping the compiler when a unit's inputs are unchanged.
func (o *Orchestrator) WithCache(hasher ports.Hasher, store ports.BuildInfoStore, verifier ports.Verifier) *Orchestrator {
	o.hasher = hasher
	o.store = store
	o.verifier = verifier
	return o
}

// WithToolChecker enables verifying the compiler and archiver before compiling.
func (o *Orchestrator) WithToolChecker(tools ports.ToolChecker) *Orchestrator {
	o.tools = tools
	return o
}

// Options tunes a single session.
type Options struct {
	// NoCache forces every unit to be compiled.
	NoCache bool
}

// NewSession creates a session over specs, in order. Unit names must be unique.
func (o *Orchestrator) NewSession(env domain.Environment, opts Options, specs ...domain.ExtensionSpec) (*Session, error) {
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if _, ok := seen[spec.Name()]; ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrDuplicateUnit, "unit declared twice"), "unit", spec.Name())
		}
		seen[spec.Name()] = struct{}{}
	}
	return newSession(o, env, opts, specs), nil
}

func (o *Orchestrator) cacheEnabled(opts Options) bool {
	return !opts.NoCache && o.hasher != nil && o.store != nil && o.verifier != nil
}
