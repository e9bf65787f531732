package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to a single configuration file.
//
// The parent directory is watched rather than the file, so replacing the
// file by rename (as editors and ConfigStore do) is still observed.
type Watcher struct {
	path     string
	debounce time.Duration
	log      logger.Component
}

// NewWatcher creates a watcher for the file at path.
func NewWatcher(path string) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		log:      logger.For("config"),
	}
}

// WithDebounce returns a copy using d as the quiet period before notifying.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	c := *w
	c.debounce = d
	return &c
}

// Watch delivers one value per settled burst of changes to the file.
// The channel is closed when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	changes := make(chan struct{}, 1)
	go w.run(ctx, fw, changes)
	return changes, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, changes chan<- struct{}) {
	defer close(changes)
	defer fw.Close()

	var settle *time.Timer
	var settled <-chan time.Time
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !w.handleFsEvent(event) {
				continue
			}
			if settle != nil {
				settle.Stop()
			}
			settle = time.NewTimer(w.debounce)
			settled = settle.C

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)

		case <-settled:
			settled = nil
			select {
			case changes <- struct{}{}:
			default:
				// A notification is already pending.
			}
		}
	}
}

// handleFsEvent reports whether event concerns the watched file.
func (w *Watcher) handleFsEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Rename) && !event.Op.Has(fsnotify.Remove) {
		return false
	}
	w.log.Debug("%s: %s", event.Op, event.Name)
	return true
}
