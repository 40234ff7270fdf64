package watcher

import "context"

// Watcher monitors a directory for new subtitle files.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler runs the pipeline for a newly arrived subtitle file.
type EventHandler func(ctx context.Context, filePath string) error
