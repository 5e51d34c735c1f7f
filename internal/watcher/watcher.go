// Package watcher reports settled file changes under watched directories.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/planroom/internal/logger"
)

// DefaultSettle is how long a path must be quiet before its change is
// reported. Editors and copy tools emit several events per save.
const DefaultSettle = 300 * time.Millisecond

// ChangeType describes what happened to a file.
type ChangeType string

// Change types.
const (
	Created ChangeType = "created"
	Updated ChangeType = "updated"
	Removed ChangeType = "removed"
)

// Change is one settled file change.
type Change struct {
	Type ChangeType
	Path string
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithFilter limits reported changes to paths accepted by keep.
func WithFilter(keep func(path string) bool) Option {
	return func(w *Watcher) {
		w.keep = keep
	}
}

// Watcher wraps fsnotify with recursive directory registration and
// per-path debouncing.
type Watcher struct {
	fsw    *fsnotify.Watcher
	settle time.Duration
	keep   func(path string) bool

	mu      sync.Mutex
	pending map[string]pendingChange
}

type pendingChange struct {
	change Change
	seen   time.Time
}

// New creates a watcher with no watched paths.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		settle:  DefaultSettle,
		pending: make(map[string]pendingChange),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add watches dir and every non-hidden directory below it.
func (w *Watcher) Add(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Watch streams settled changes until ctx is done. The channel is closed
// when watching stops.
func (w *Watcher) Watch(ctx context.Context) <-chan Change {
	out := make(chan Change)
	go w.loop(ctx, out)
	return out
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context, out chan<- Change) {
	defer close(out)

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if change := w.handleEvent(event); change != nil {
				w.record(*change, time.Now())
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.Warn("watch error: %v", err)
			}
		case now := <-ticker.C:
			for _, change := range w.flush(now) {
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleEvent maps a raw event to a change, or nil when it is ignored.
// New directories are registered so the watch stays recursive.
func (w *Watcher) handleEvent(event fsnotify.Event) *Change {
	if isHidden(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if !w.accept(event.Name) {
			return nil
		}
		return &Change{Type: Removed, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if event.Has(fsnotify.Create) {
				if err := w.Add(event.Name); err != nil {
					logger.Warn("watch %s: %v", event.Name, err)
				}
			}
			return nil
		}
		if !w.accept(event.Name) {
			return nil
		}
		if event.Has(fsnotify.Create) {
			return &Change{Type: Created, Path: event.Name}
		}
		return &Change{Type: Updated, Path: event.Name}
	default:
		return nil
	}
}

// record merges change into the pending set for its path.
func (w *Watcher) record(change Change, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prev, ok := w.pending[change.Path]; ok {
		change.Type = merge(prev.change.Type, change.Type)
	}
	w.pending[change.Path] = pendingChange{change: change, seen: now}
}

// flush returns and forgets changes that have been quiet for the settle
// period.
func (w *Watcher) flush(now time.Time) []Change {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []Change
	for path, p := range w.pending {
		if now.Sub(p.seen) >= w.settle {
			ready = append(ready, p.change)
			delete(w.pending, path)
		}
	}
	return ready
}

func (w *Watcher) accept(path string) bool {
	return w.keep == nil || w.keep(path)
}

// merge folds a later change type into an earlier one.
func merge(prev, next ChangeType) ChangeType {
	switch {
	case next == Removed:
		return Removed
	case prev == Created:
		return Created
	case prev == Removed:
		return Updated
	default:
		return next
	}
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
