package session

import "go.trai.ch/kiln/internal/core/domain"

// Tracker records source paths whose change must trigger a rebuild.
type Tracker struct {
	set domain.TriggerSet
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Register adds paths to the trigger set. Registering a path twice is a no-op.
func (t *Tracker) Register(paths ...string) {
	t.set.Add(paths...)
}

// Triggers returns the registered paths in first-registration order.
func (t *Tracker) Triggers() []string {
	return t.set.Paths()
}

func (t *Tracker) reset() {
	t.set.Reset()
}
