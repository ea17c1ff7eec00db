// Package fs provides file system adapters for resolving, hashing and verifying files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
	"strings"
)

// SourceExtensions are the file extensions collected when a source entry names a directory.
var SourceExtensions = []string{".c", ".cc", ".cpp", ".cxx", ".cu"}

// Walker walks directories for compilable sources.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkSources yields every source file below root in lexical order, skipping
// VCS metadata, kiln state and any directory matching an ignore pattern.
func (w *Walker) WalkSources(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && w.skipDir(d.Name(), ignores) {
					return filepath.SkipDir
				}
				return nil
			}

			if !isSource(path) {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) skipDir(name string, ignores []string) bool {
	switch name {
	case ".git", ".jj", ".kiln":
		return true
	}
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}

func isSource(path string) bool {
	return slices.Contains(SourceExtensions, strings.ToLower(filepath.Ext(path)))
}
