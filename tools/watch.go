package tools

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce groups the burst of writes Doxygen does while regenerating
var watchDebounce = 500 * time.Millisecond

var (
	watchMu     sync.Mutex
	watchCancel context.CancelFunc
	watchDone   chan struct{}
)

// StartWatcher reloads the search data whenever a table file in the source
// directory changes. It is a no-op when no source directory is configured.
func StartWatcher(ctx context.Context) error {
	if settings.SourceDir == "" {
		return nil
	}

	watchMu.Lock()
	defer watchMu.Unlock()

	if watchCancel != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(settings.SourceDir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", settings.SourceDir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	watchCancel = cancel
	watchDone = done

	go runWatcher(ctx, watcher, settings.Pattern(), done)

	log.Printf("✓ Watching %s for %s changes", settings.SourceDir, settings.Pattern())
	return nil
}

// StopWatcher stops a running watcher and waits for it to exit
func StopWatcher() {
	watchMu.Lock()
	cancel, done := watchCancel, watchDone
	watchCancel, watchDone = nil, nil
	watchMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func runWatcher(ctx context.Context, watcher *fsnotify.Watcher, pattern string, done chan struct{}) {
	defer close(done)
	defer watcher.Close()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevantEvent(event, pattern) {
				continue
			}
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: Watcher error: %v", err)

		case <-timer.C:
			if _, err := refreshDocumentationIndex(true); err != nil {
				log.Printf("Warning: Reload after change failed, keeping previous data: %v", err)
			}
		}
	}
}

func relevantEvent(event fsnotify.Event, pattern string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	matched, err := filepath.Match(pattern, filepath.Base(event.Name))
	return err == nil && matched
}
