// ABOUTME: Reloads the live snapshot when another process rewrites the index files
// ABOUTME: fsnotify events on the index directory are debounced into one Load
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/harper/medrag/internal/logging"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 250 * time.Millisecond

// Watcher triggers Storage.Load after changes to the index or metadata file
type Watcher struct {
	storage  *Storage
	fsw      *fsnotify.Watcher
	targets  map[string]bool
	debounce time.Duration
	logger   *log.Logger
	onReload func(error)
}

// NewWatcher watches the directory holding the index file
func NewWatcher(s *Storage, logger *log.Logger) (*Watcher, error) {
	dir := filepath.Dir(s.IndexPath())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		storage: s,
		fsw:     fsw,
		targets: map[string]bool{
			filepath.Clean(s.IndexPath()):       true,
			filepath.Clean(s.Metadata().Path()): true,
		},
		debounce: DefaultDebounce,
		logger:   logging.Component(logger, "watcher"),
	}, nil
}

// SetDebounce overrides DefaultDebounce; call before Run
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// OnReload registers a callback invoked with the result of every reload
func (w *Watcher) OnReload(fn func(error)) {
	w.onReload = fn
}

// Run processes events until ctx is cancelled or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("index file changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)

		case <-timer.C:
			err := w.storage.Load()
			if err != nil {
				w.logger.Warn("reload after file change failed", "err", err)
			}
			if w.onReload != nil {
				w.onReload(err)
			}
		}
	}
}

// Close stops watching; Run returns shortly after
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !w.targets[filepath.Clean(event.Name)] {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}
