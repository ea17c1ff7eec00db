package fs

import (
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceResolver = (*Resolver)(nil)

// Resolver implements ports.SourceResolver with filepath.Glob. A pattern naming
// a directory expands to every source file below it.
type Resolver struct {
	walker  *Walker
	ignores []string
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker, ignores ...string) *Resolver {
	return &Resolver{walker: walker, ignores: ignores}
}

// ResolveSources expands patterns relative to root. Each pattern must match at
// least one file; duplicates keep their first position.
func (r *Resolver) ResolveSources(patterns []string, root string) ([]string, error) {
	seen := make(map[string]struct{})
	var result []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		result = append(result, path)
	}

	for _, pattern := range patterns {
		path := pattern
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to resolve path"), "path", path)
		}

		matches, err := filepath.Glob(abs)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidProject, "malformed source pattern"), "pattern", pattern)
		}
		if len(matches) == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrSourceNotFound, "pattern matched no files"), "pattern", pattern)
		}
		slices.Sort(matches)

		found := 0
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(domain.ErrSourceUnreadable, err.Error()), "path", match)
			}
			if !info.IsDir() {
				add(match)
				found++
				continue
			}
			for file := range r.walker.WalkSources(match, r.ignores) {
				add(file)
				found++
			}
		}
		if found == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrSourceNotFound, "directory holds no sources"), "pattern", pattern)
		}
	}

	return result, nil
}
