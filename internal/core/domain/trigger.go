package domain

import "slices"

// TriggerSet is an insertion-ordered set of rebuild trigger paths.
// The zero value is ready to use.
type TriggerSet struct {
	index map[string]struct{}
	paths []string
}

// NewTriggerSet returns an empty set.
func NewTriggerSet() *TriggerSet {
	return &TriggerSet{}
}

// Add registers paths; a path already present keeps its original position.
func (t *TriggerSet) Add(paths ...string) {
	if t.index == nil {
		t.index = make(map[string]struct{})
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := t.index[p]; ok {
			continue
		}
		t.index[p] = struct{}{}
		t.paths = append(t.paths, p)
	}
}

// Contains reports whether path is registered.
func (t *TriggerSet) Contains(path string) bool {
	_, ok := t.index[path]
	return ok
}

// Len returns the number of distinct paths.
func (t *TriggerSet) Len() int {
	return len(t.paths)
}

// Paths returns a copy of the registered paths in first-seen order.
func (t *TriggerSet) Paths() []string {
	return slices.Clone(t.paths)
}

// Reset drops every registered path.
func (t *TriggerSet) Reset() {
	t.index = nil
	t.paths = nil
}
