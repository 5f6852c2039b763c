package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals when the card database file changes on disk, so a
// serving process can reload its candidate pools without restarting.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *log.Logger
}

// NewWatcher creates a watcher over the database file path. A nil
// logger falls back to the standard logger.
func NewWatcher(path string, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		path:     path,
		debounce: 500 * time.Millisecond,
		logger:   logger,
	}
}

// Watch blocks until ctx is cancelled, invoking onChange after writes to
// the database file. Bursts of writes within the debounce window
// collapse into one notification.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err := <-watcher.Errors:
			w.logger.Printf("storage: file watcher error: %v", err)
		case <-fire:
			w.logger.Printf("storage: card database changed, reloading")
			onChange()
		}
	}
}
