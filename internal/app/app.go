// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/adapters/emit"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/session"
	"go.trai.ch/kiln/internal/engine/toolchain"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader       ports.ConfigLoader
	detector     ports.EnvironmentDetector
	orchestrator *session.Orchestrator
	configurator *toolchain.Configurator
	watcher      ports.SourceWatcher
	logger       ports.Logger
	stdout       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	detector ports.EnvironmentDetector,
	orchestrator *session.Orchestrator,
	configurator *toolchain.Configurator,
	watcher ports.SourceWatcher,
	log ports.Logger,
) *App {
	return &App{
		loader:       loader,
		detector:     detector,
		orchestrator: orchestrator,
		configurator: configurator,
		watcher:      watcher,
		logger:       log,
		stdout:       os.Stdout,
	}
}

// WithOutput redirects emitted build output, which defaults to stdout.
func (a *App) WithOutput(w io.Writer) *App {
	a.stdout = w
	return a
}

// SetJSONLogs switches the logger to JSON output when it supports it.
func (a *App) SetJSONLogs(enabled bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enabled)
	}
}

// BuildOptions configuration for the Build and Watch methods.
type BuildOptions struct {
	ConfigPath string
	Format     string
	OutDir     string
	NoCache    bool
	Units      []string
}

// Build compiles the selected units and writes their link output once every
// unit succeeded. Nothing is written on failure.
func (a *App) Build(ctx context.Context, opts BuildOptions) (domain.SessionOutput, error) {
	emitter, err := emit.ForFormat(opts.Format)
	if err != nil {
		return domain.SessionOutput{}, err
	}

	env, specs, err := a.load(ctx, opts.ConfigPath, opts.OutDir, opts.Units)
	if err != nil {
		return domain.SessionOutput{}, err
	}

	s, err := a.orchestrator.NewSession(env, session.Options{NoCache: opts.NoCache}, specs...)
	if err != nil {
		return domain.SessionOutput{}, err
	}
	if _, err := s.BuildAll(ctx); err != nil {
		return domain.SessionOutput{}, zerr.Wrap(err, "build failed")
	}
	return s.Flush(a.stdout, emitter)
}

// Watch builds once and rebuilds whenever a source of the selected units
// changes, until ctx is cancelled. Build failures are logged, not returned.
func (a *App) Watch(ctx context.Context, opts BuildOptions) error {
	_, specs, err := a.load(ctx, opts.ConfigPath, opts.OutDir, opts.Units)
	if err != nil {
		return err
	}
	paths := domain.NewTriggerSet()
	for _, spec := range specs {
		paths.Add(spec.Sources()...)
	}

	a.rebuild(ctx, opts)
	a.logger.Info(fmt.Sprintf("watching %d sources", paths.Len()))

	return a.watcher.Watch(ctx, paths.Paths(), func(path string) error {
		a.logger.Info("changed " + path)
		a.rebuild(ctx, opts)
		return nil
	})
}

func (a *App) rebuild(ctx context.Context, opts BuildOptions) {
	if _, err := a.Build(ctx, opts); err != nil && ctx.Err() == nil {
		a.logger.Error(err)
	}
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
	OutDir     string
	Units      []string
}

// Clean removes the out dir, or only the directories of the named units.
func (a *App) Clean(_ context.Context, opts CleanOptions) error {
	project, err := a.loader.Load(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	outDir := project.Overrides.OutDir
	if opts.OutDir != "" {
		outDir = opts.OutDir
	}

	if len(opts.Units) == 0 {
		return a.remove(outDir)
	}

	specs, err := project.Select(opts.Units)
	if err != nil {
		return err
	}
	var errs error
	for _, spec := range specs {
		errs = errors.Join(errs, a.remove(domain.UnitDir(outDir, spec.Name())))
	}
	return errs
}

func (a *App) remove(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrOutputUnwritable, err.Error()), "path", path)
	}
	a.logger.Info("removed " + path)
	return nil
}

// load reads the project, detects the ambient environment and layers the
// project and command-line overrides on top of it.
func (a *App) load(ctx context.Context, configPath, outDir string, units []string) (domain.Environment, []domain.ExtensionSpec, error) {
	project, err := a.loader.Load(configPath)
	if err != nil {
		return domain.Environment{}, nil, zerr.Wrap(err, "failed to load configuration")
	}

	detected, err := a.detector.Detect(ctx)
	if err != nil {
		return domain.Environment{}, nil, zerr.Wrap(err, "failed to detect environment")
	}
	env := detected.Merge(project.Overrides)
	if outDir != "" {
		abs, err := filepath.Abs(outDir)
		if err != nil {
			return domain.Environment{}, nil, zerr.With(zerr.Wrap(domain.ErrOutputUnwritable, err.Error()), "path", outDir)
		}
		env.OutDir = abs
	}

	specs, err := project.Select(units)
	if err != nil {
		return domain.Environment{}, nil, err
	}
	return env, specs, nil
}
