package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/subflow/internal/logger"
)

type implWatcher struct {
	inputDir    string
	handler     EventHandler
	logger      logger.Logger
	watcher     *fsnotify.Watcher
	settleDelay time.Duration
}

// Start monitors the input directory until ctx is cancelled. Each new
// .srt file is handled on this goroutine, so runs never overlap.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Watching %s for subtitle files", w.inputDir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isSubtitleFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-subtitle file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New subtitle detected: %s", event.Name)

			// Give the producing process time to finish writing.
			time.Sleep(w.settleDelay)

			if err := w.handler(ctx, event.Name); err != nil {
				w.logger.Error(ctx, "Failed to process %s: %v", event.Name, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the underlying file watcher.
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func isSubtitleFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".srt"
}
