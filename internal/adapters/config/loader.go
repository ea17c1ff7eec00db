// Package config provides the project file loader for kiln.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only project file version understood by this loader.
const SupportedVersion = "1"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger   ports.Logger
	Resolver ports.SourceResolver
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger, resolver ports.SourceResolver) *Loader {
	return &Loader{Logger: logger, Resolver: resolver}
}

// Load reads the project file. path may be the file or a directory to search upward from.
func (l *Loader) Load(path string) (*domain.Project, error) {
	configPath, err := findConfiguration(path)
	if err != nil {
		return nil, err
	}

	var kilnfile Kilnfile
	if err := readAndUnmarshalYAML(configPath, &kilnfile); err != nil {
		return nil, err
	}

	if kilnfile.Version != "" && kilnfile.Version != SupportedVersion {
		err := zerr.Wrap(domain.ErrInvalidProject, "unsupported project file version")
		return nil, zerr.With(zerr.With(err, "version", kilnfile.Version), "path", configPath)
	}
	if len(kilnfile.Units) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidProject, "project declares no units"), "path", configPath)
	}

	root := filepath.Dir(configPath)
	project := &domain.Project{Root: root}

	seen := make(map[string]struct{}, len(kilnfile.Units))
	for i := range kilnfile.Units {
		name := kilnfile.Units[i].Name
		if _, ok := seen[name]; ok {
			err := zerr.With(zerr.Wrap(domain.ErrDuplicateUnit, "unit declared twice"), "unit", name)
			return nil, zerr.With(err, "path", configPath)
		}
		seen[name] = struct{}{}

		spec, err := l.buildUnit(root, &kilnfile.Units[i])
		if err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
		project.Units = append(project.Units, spec)
	}

	if kilnfile.OutDir != "" {
		project.Overrides.OutDir = resolvePath(root, kilnfile.OutDir)
	} else {
		project.Overrides.OutDir = filepath.Join(root, domain.DefaultOutDir)
	}
	if kilnfile.Environment != nil {
		l.applyEnvironment(root, kilnfile.Environment, project)
	}

	return project, nil
}

func (l *Loader) buildUnit(root string, dto *UnitDTO) (domain.ExtensionSpec, error) {
	kind, err := domain.ParseUnitKind(dto.Kind)
	if err != nil {
		return domain.ExtensionSpec{}, zerr.With(err, "unit", dto.Name)
	}
	if len(dto.Sources) == 0 {
		return domain.ExtensionSpec{}, zerr.With(zerr.Wrap(domain.ErrInvalidSpec, "unit has no sources"), "unit", dto.Name)
	}

	sources, err := l.Resolver.ResolveSources(dto.Sources, root)
	if err != nil {
		return domain.ExtensionSpec{}, zerr.With(err, "unit", dto.Name)
	}

	return domain.NewExtensionSpec(dto.Name, kind, sources,
		domain.WithAcceleratorAPI(dto.AcceleratorAPI),
		domain.WithManagedRuntime(dto.ManagedRuntime),
	)
}

func (l *Loader) applyEnvironment(root string, dto *EnvironmentDTO, project *domain.Project) {
	env := &project.Overrides
	env.AcceleratorSDKRoot = resolvePath(root, dto.AcceleratorRoot)
	env.AcceleratorArchs = canonicalizeStrings(dto.AcceleratorArchs)
	env.AcceleratorCompiler = dto.AcceleratorCompiler
	env.AcceleratorRuntimeLibrary = dto.AcceleratorRuntime
	env.CXX = dto.CXX
	env.Archiver = dto.Archiver
	env.CXXStandard = dto.CXXStandard
	env.CXXABI = dto.CXXABI
	env.TargetTriple = dto.Target
	env.ExtraIncludeDirs = resolvePaths(root, dto.ExtraInclude)
	if dto.Runtime != nil {
		env.ManagedRuntime = domain.ManagedRuntime{
			IncludeDirs: resolvePaths(root, dto.Runtime.Include),
			LibDir:      resolvePath(root, dto.Runtime.LibDir),
			Library:     dto.Runtime.Library,
		}
	}

	if len(env.AcceleratorArchs) > 0 && !slices.ContainsFunc(project.Units, domain.ExtensionSpec.NeedsAcceleratorRuntime) {
		l.Logger.Warn("accelerator_archs has no effect: no unit uses the accelerator")
	}
}

// findConfiguration returns path itself when it is a file, and otherwise
// searches path and its parents for kiln.yaml.
func findConfiguration(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve path"), "path", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrProjectNotFound, err.Error()), "path", abs)
	}
	if !info.IsDir() {
		return abs, nil
	}

	for dir := abs; ; {
		candidate := filepath.Join(dir, domain.ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", zerr.With(zerr.Wrap(domain.ErrProjectNotFound, "no "+domain.ProjectFileName+" in directory or parents"), "cwd", abs)
}

// readAndUnmarshalYAML decodes the file strictly so that misspelled keys are reported.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is the discovered project file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidProject, err.Error()), "path", configPath)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidProject, err.Error()), "path", configPath)
	}
	return nil
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func resolvePaths(root string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = resolvePath(root, p)
	}
	return out
}

// canonicalizeStrings sorts and deduplicates.
func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
