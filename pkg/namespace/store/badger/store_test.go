package badger_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ecfs/pkg/namespace"
	"github.com/marmos91/ecfs/pkg/namespace/store/badger"
	"github.com/marmos91/ecfs/pkg/namespace/storetest"
)

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) namespace.Store {
		store, err := badger.New(badger.Config{InMemory: true})
		if err != nil {
			t.Fatalf("badger.New() failed: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "namespace")
	ctx := t.Context()

	store, err := badger.New(badger.Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, &namespace.Entry{
		Path:   "/archive",
		Type:   namespace.EntryDirectory,
		Policy: "RS-10-4-1024k",
	}))
	require.NoError(t, store.Close())

	store, err = badger.New(badger.Config{Path: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	e, err := store.Get(ctx, "/archive")
	require.NoError(t, err)
	assert.Equal(t, "RS-10-4-1024k", e.Policy)
}

func TestRequiresPath(t *testing.T) {
	_, err := badger.New(badger.Config{})
	assert.ErrorContains(t, err, "path is required")
}
