package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/subflow/internal/logger"
)

const defaultSettleDelay = 500 * time.Millisecond

// New creates a Watcher for inputDir. Files are handled one at a time:
// a transcript run saturates the provider anyway, and sequential intake
// keeps run logs readable.
func New(inputDir string, handler EventHandler, log logger.Logger) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fsw.Add(inputDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		inputDir:    inputDir,
		handler:     handler,
		logger:      log,
		watcher:     fsw,
		settleDelay: defaultSettleDelay,
	}, nil
}
