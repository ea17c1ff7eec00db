// Package cas implements the build info store backing incremental builds.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BuildInfoStore = (*Store)(nil)

// Store implements ports.BuildInfoStore with one flat JSON file per out dir,
// located at <out_dir>/.kiln/state.json. Files are loaded on first use.
type Store struct {
	mu     sync.Mutex
	states map[string]map[string]domain.BuildInfo
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{states: make(map[string]map[string]domain.BuildInfo)}
}

// Get retrieves the build info for unit under outDir. It returns nil, nil if none is recorded.
func (s *Store) Get(outDir, unit string) (*domain.BuildInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.state(outDir)
	if err != nil {
		return nil, err
	}
	info, ok := state[unit]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// Put records info and rewrites the state file.
func (s *Store) Put(outDir string, info domain.BuildInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.state(outDir)
	if err != nil {
		// An unreadable file is replaced rather than blocking every future build.
		state = make(map[string]domain.BuildInfo)
		s.states[filepath.Clean(outDir)] = state
	}
	state[info.Unit] = info
	return save(domain.StatePath(outDir), state)
}

// state must be called with mu held.
func (s *Store) state(outDir string) (map[string]domain.BuildInfo, error) {
	key := filepath.Clean(outDir)
	if state, ok := s.states[key]; ok {
		return state, nil
	}

	state, err := load(domain.StatePath(key))
	if err != nil {
		return nil, err
	}
	s.states[key] = state
	return state, nil
}

func load(path string) (map[string]domain.BuildInfo, error) {
	state := make(map[string]domain.BuildInfo)

	//nolint:gosec // Path is derived from the configured out dir
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return state, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read build info store"), "path", path)
	}

	if len(data) == 0 {
		return state, nil
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to unmarshal build info store"), "path", path)
	}
	return state, nil
}

func save(path string, state map[string]domain.BuildInfo) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal build info store")
	}

	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrOutputUnwritable, err.Error()), "path", path)
	}

	tmp := path + ".tmp"
	//nolint:gosec // Path is derived from the configured out dir
	if err := os.WriteFile(tmp, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrOutputUnwritable, err.Error()), "path", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrOutputUnwritable, err.Error()), "path", path)
	}
	return nil
}
