package namespace

import (
	"context"
	"time"
)

// EntryType distinguishes directories from files.
type EntryType string

const (
	EntryDirectory EntryType = "DIRECTORY"
	EntryFile      EntryType = "FILE"
)

// Entry is a persisted namespace node.
//
// For a directory Policy holds its explicit assignment (empty when none).
// For a file Policy holds the effective policy frozen when the file was
// created; files never change layout afterwards.
type Entry struct {
	Path      string    `json:"path"`
	Type      EntryType `json:"type"`
	Policy    string    `json:"policy,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDir returns true if the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.Type == EntryDirectory
}

// Store persists namespace entries keyed by cleaned path.
//
// Implementations must be safe for concurrent use. They do not enforce
// namespace rules; Namespace does.
type Store interface {
	// Get returns the entry at path or ErrNotFound.
	Get(ctx context.Context, path string) (*Entry, error)

	// Put creates or replaces the entry at e.Path.
	Put(ctx context.Context, e *Entry) error

	// List returns all entries whose path starts with prefix, ordered by path.
	List(ctx context.Context, prefix string) ([]*Entry, error)

	// Close releases resources held by the store.
	Close() error
}
