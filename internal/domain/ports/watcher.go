package ports

import (
	"context"
	"time"
)

// ChangeType classifies a watched-file change.
type ChangeType int

const (
	Modified ChangeType = iota
	Removed
)

// FileChangeEvent reports a change to a watched file.
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// FileWatcher observes a deck file and reports content changes so the
// session can replace the deck in place.
type FileWatcher interface {
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	Stop() error
}
