// Package memory provides an in-process namespace.Store. Contents are lost
// when the process exits; it backs tests and the local ecfsctl mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/ecfs/pkg/namespace"
)

// Store keeps namespace entries in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	entries map[string]namespace.Entry
	closed  bool
}

var _ namespace.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]namespace.Entry)}
}

func (s *Store) Get(ctx context.Context, path string) (*namespace.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, namespace.ErrStoreClosed
	}
	e, ok := s.entries[path]
	if !ok {
		return nil, namespace.ErrNotFound
	}
	return &e, nil
}

func (s *Store) Put(ctx context.Context, e *namespace.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return namespace.ErrStoreClosed
	}
	// Store a copy so callers can keep mutating their entry.
	s.entries[e.Path] = *e
	return nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]*namespace.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, namespace.ErrStoreClosed
	}

	var out []*namespace.Entry
	for p, e := range s.entries {
		if strings.HasPrefix(p, prefix) {
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
