// Package badger provides a namespace.Store persisted in an embedded BadgerDB.
//
// Entries are stored as JSON under "e:<path>" keys. Badger orders keys
// bytewise, so prefix iteration yields entries in path order.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/ecfs/internal/telemetry"
	"github.com/marmos91/ecfs/pkg/namespace"
)

const entryPrefix = "e:"

// Config configures the Badger store.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string `mapstructure:"path" yaml:"path"`

	// InMemory keeps all data in memory. Used by tests.
	InMemory bool `mapstructure:"in_memory" yaml:"in_memory"`
}

// Store implements namespace.Store on BadgerDB.
type Store struct {
	db     *badgerdb.DB
	closed atomic.Bool
}

var _ namespace.Store = (*Store)(nil)

// New opens (or creates) the Badger database described by cfg.
func New(cfg Config) (*Store, error) {
	var opts badgerdb.Options
	switch {
	case cfg.InMemory:
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	case cfg.Path != "":
		opts = badgerdb.DefaultOptions(cfg.Path)
	default:
		return nil, errors.New("badger store: path is required")
	}
	opts = opts.WithLogger(badgerLogger{})

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

func entryKey(path string) []byte {
	return []byte(entryPrefix + path)
}

func (s *Store) Get(ctx context.Context, path string) (*namespace.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, namespace.ErrStoreClosed
	}
	ctx, span := telemetry.StartStoreSpan(ctx, "badger", "get", telemetry.Path(path))
	defer span.End()

	var e namespace.Entry
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(entryKey(path))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return namespace.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		if !errors.Is(err, namespace.ErrNotFound) {
			telemetry.RecordError(ctx, err)
		}
		return nil, err
	}
	return &e, nil
}

func (s *Store) Put(ctx context.Context, e *namespace.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return namespace.ErrStoreClosed
	}
	ctx, span := telemetry.StartStoreSpan(ctx, "badger", "put", telemetry.Path(e.Path))
	defer span.End()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode entry %s: %w", e.Path, err)
	}

	err = s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(entryKey(e.Path), data)
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	return err
}

func (s *Store) List(ctx context.Context, prefix string) ([]*namespace.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, namespace.ErrStoreClosed
	}
	_, span := telemetry.StartStoreSpan(ctx, "badger", "list", telemetry.Path(prefix))
	defer span.End()

	var out []*namespace.Entry
	err := s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		p := entryKey(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e namespace.Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			out = append(out, &e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the database. Calling it more than once is a no-op.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
