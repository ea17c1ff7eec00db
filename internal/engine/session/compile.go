package session

import (
	"context"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// compile produces the artifact for spec, reusing the previous build when the
// config fingerprint and source contents are unchanged and the archive still exists.
func (s *Session) compile(ctx context.Context, spec domain.ExtensionSpec, cfg *domain.ToolchainConfig) (domain.Artifact, error) {
	ctx, vertex := s.o.telemetry.Record(ctx, "compile "+spec.Name())

	artifact, err := s.compileWithCache(ctx, spec, cfg)
	if err != nil {
		vertex.Complete(err)
		return domain.Artifact{}, err
	}
	if artifact.Cached {
		vertex.Cached()
	}
	vertex.Complete(nil)
	return artifact, nil
}

func (s *Session) compileWithCache(ctx context.Context, spec domain.ExtensionSpec, cfg *domain.ToolchainConfig) (domain.Artifact, error) {
	sources := spec.Sources()

	var inputHash string
	if s.o.cacheEnabled(s.opts) {
		hash, err := s.o.hasher.ComputeInputHash(cfg, sources)
		if err != nil {
			return domain.Artifact{}, err
		}
		inputHash = hash

		if artifact, ok := s.lookup(cfg, inputHash); ok {
			cfg.Freeze()
			s.o.logger.Info("unit " + spec.Name() + " is up to date")
			return artifact, nil
		}
	}

	if s.o.tools != nil {
		if err := s.o.tools.Check(cfg.Compiler(), cfg.Archiver()); err != nil {
			return domain.Artifact{}, err
		}
	}

	artifact, err := s.o.compiler.Compile(ctx, cfg, sources)
	if err != nil {
		return domain.Artifact{}, err
	}

	if inputHash != "" {
		s.record(cfg, artifact, inputHash)
	}
	return artifact, nil
}

func (s *Session) lookup(cfg *domain.ToolchainConfig, inputHash string) (domain.Artifact, bool) {
	info, err := s.o.store.Get(cfg.OutDir(), cfg.Unit())
	if err != nil {
		s.o.logger.Warn("ignoring unreadable build info: " + err.Error())
		return domain.Artifact{}, false
	}
	if info == nil || info.InputHash != inputHash || info.ArtifactPath == "" {
		return domain.Artifact{}, false
	}

	ok, err := s.o.verifier.VerifyOutputs(append([]string{info.ArtifactPath}, info.Objects...))
	if err != nil || !ok {
		return domain.Artifact{}, false
	}

	return domain.Artifact{
		Unit:    cfg.Unit(),
		Library: cfg.Unit(),
		Path:    info.ArtifactPath,
		Dir:     domain.UnitDir(cfg.OutDir(), cfg.Unit()),
		Objects: info.Objects,
		Cached:  true,
	}, true
}

// record persists build info. A failure only costs the next build its cache hit.
func (s *Session) record(cfg *domain.ToolchainConfig, artifact domain.Artifact, inputHash string) {
	err := s.o.store.Put(cfg.OutDir(), domain.BuildInfo{
		Unit:         cfg.Unit(),
		InputHash:    inputHash,
		ArtifactPath: artifact.Path,
		Objects:      artifact.Objects,
		Timestamp:    time.Now(),
	})
	if err != nil {
		s.o.logger.Warn(zerr.With(zerr.Wrap(err, "failed to store build info"), "unit", cfg.Unit()).Error())
	}
}
