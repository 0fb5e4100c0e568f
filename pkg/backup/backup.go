// Package backup exports and imports namespace snapshots.
//
// A snapshot is a JSON document holding every namespace entry with its
// explicit (directory) or frozen (file) policy. Snapshots are written to a
// local file or to an S3 bucket and can be restored into any store type.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/pkg/namespace"
)

// FormatVersion is the snapshot format written by Export.
const FormatVersion = 1

// Snapshot is a point-in-time copy of a namespace store.
type Snapshot struct {
	Version   int                `json:"version"`
	CreatedAt time.Time          `json:"created_at"`
	Entries   []*namespace.Entry `json:"entries"`
}

// Export reads every entry of store into a snapshot.
func Export(ctx context.Context, store namespace.Store) (*Snapshot, error) {
	entries, err := store.List(ctx, namespace.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to list namespace entries: %w", err)
	}
	logger.Debug("Namespace exported", "entries", len(entries))
	return &Snapshot{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		Entries:   entries,
	}, nil
}

// Validate checks that every entry of s can be restored under catalog.
// Policies must be known but need not be enabled: files keep the policy
// they were created with even after it is disabled.
func (s *Snapshot) Validate(catalog *namespace.Catalog) error {
	if s.Version != FormatVersion {
		return fmt.Errorf("unsupported snapshot version %d", s.Version)
	}

	seen := make(map[string]*namespace.Entry, len(s.Entries))
	for _, e := range s.Entries {
		if e == nil {
			return fmt.Errorf("snapshot contains an empty entry")
		}
		p, err := namespace.CleanPath(e.Path)
		if err != nil {
			return err
		}
		if p != e.Path {
			return fmt.Errorf("%w: entry path %q is not clean", namespace.ErrInvalidPath, e.Path)
		}
		if seen[p] != nil {
			return fmt.Errorf("duplicate entry %s", p)
		}
		seen[p] = e

		switch e.Type {
		case namespace.EntryDirectory, namespace.EntryFile:
		default:
			return fmt.Errorf("entry %s has unknown type %q", p, e.Type)
		}
		if p == namespace.Root && !e.IsDir() {
			return fmt.Errorf("%w: root must be a directory", namespace.ErrNotDirectory)
		}
		if e.Policy != "" {
			if _, err := catalog.Lookup(e.Policy); err != nil {
				return fmt.Errorf("entry %s: %w", p, err)
			}
		}
	}

	for p := range seen {
		if p == namespace.Root {
			continue
		}
		parent, ok := seen[namespace.Parent(p)]
		if !ok && namespace.Parent(p) == namespace.Root {
			continue
		}
		if !ok || !parent.IsDir() {
			return fmt.Errorf("entry %s has no parent directory in the snapshot", p)
		}
	}
	return nil
}

// Import validates s and writes its entries into store, replacing entries
// at the same paths. It returns the number of entries written.
func Import(ctx context.Context, store namespace.Store, catalog *namespace.Catalog, s *Snapshot) (int, error) {
	if err := s.Validate(catalog); err != nil {
		return 0, fmt.Errorf("invalid snapshot: %w", err)
	}

	for i, e := range s.Entries {
		if err := store.Put(ctx, e); err != nil {
			return i, fmt.Errorf("failed to restore %s: %w", e.Path, err)
		}
	}
	logger.Info("Namespace snapshot imported", "entries", len(s.Entries), "created_at", s.CreatedAt)
	return len(s.Entries), nil
}

// Write encodes s as indented JSON.
func Write(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}
