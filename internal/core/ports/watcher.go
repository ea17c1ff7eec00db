package ports

import "context"

// SourceWatcher reports changes to rebuild-trigger paths.
//
//go:generate go run go.uber.org/mock/mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type SourceWatcher interface {
	// Watch blocks until ctx is done, invoking onChange with the changed path after
	// each debounced burst of writes to any of paths.
	Watch(ctx context.Context, paths []string, onChange func(path string) error) error
}
