package ports

import (
	"context"
	"time"
)

// FileWatcher reports changes to a deck source and the images it uses.
// Every Watch call returns the same channel; Stop closes it.
type FileWatcher interface {
	Watch(ctx context.Context, path string) (<-chan FileChangeEvent, error)
	Stop() error
}

// FileChangeEvent is one observed change to a watched path
type FileChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// ChangeType classifies a FileChangeEvent
type ChangeType string

const (
	Modified ChangeType = "modified"
	Created  ChangeType = "created" // the path reappeared after a deletion
	Deleted  ChangeType = "deleted"
)

func (c ChangeType) String() string {
	return string(c)
}
