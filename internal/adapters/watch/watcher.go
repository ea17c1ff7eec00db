// Package watch re-runs builds when rebuild-trigger paths change.
package watch

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultWindow is how long the watcher waits for a burst of writes to settle.
const DefaultWindow = 150 * time.Millisecond

var _ ports.SourceWatcher = (*Watcher)(nil)

// Watcher implements ports.SourceWatcher with fsnotify. It watches the parent
// directory of every path so that editors replacing files by rename are seen.
type Watcher struct {
	logger ports.Logger
	window time.Duration
}

// NewWatcher creates a Watcher with the default debounce window.
func NewWatcher(logger ports.Logger) *Watcher {
	return &Watcher{logger: logger, window: DefaultWindow}
}

// WithWindow sets the debounce window.
func (w *Watcher) WithWindow(d time.Duration) *Watcher {
	w.window = d
	return w
}

// Watch blocks until ctx is done. onChange runs on the calling goroutine, so
// rebuilds never overlap; an error from it stops the watch.
func (w *Watcher) Watch(ctx context.Context, paths []string, onChange func(path string) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}
	defer fsw.Close() //nolint:errcheck // Best effort close in defer

	tracked := make(map[string]struct{}, len(paths))
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve path"), "path", p)
		}
		tracked[abs] = struct{}{}
		dirs = append(dirs, filepath.Dir(abs))
	}
	slices.Sort(dirs)
	for _, dir := range slices.Compact(dirs) {
		if err := fsw.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
		}
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		changed string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			name := filepath.Clean(event.Name)
			if _, ok := tracked[name]; !ok {
				continue
			}
			changed = name
			if timer == nil {
				timer = time.NewTimer(w.window)
			} else {
				timer.Reset(w.window)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := onChange(changed); err != nil {
				return err
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error: " + err.Error())
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
