package storetest

import (
	"errors"
	"testing"
	"time"

	"github.com/marmos91/ecfs/pkg/namespace"
)

func runEntryTests(t *testing.T, factory StoreFactory) {
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory) })
	t.Run("PutGet", func(t *testing.T) { testPutGet(t, factory) })
	t.Run("PutReplaces", func(t *testing.T) { testPutReplaces(t, factory) })
	t.Run("PutCopiesEntry", func(t *testing.T) { testPutCopiesEntry(t, factory) })
	t.Run("ListPrefix", func(t *testing.T) { testListPrefix(t, factory) })
	t.Run("ClosedStore", func(t *testing.T) { testClosedStore(t, factory) })
}

// testGetMissing verifies that a missing path reports ErrNotFound.
func testGetMissing(t *testing.T, factory StoreFactory) {
	store := factory(t)

	_, err := store.Get(t.Context(), "/nope")
	if !errors.Is(err, namespace.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

// testPutGet verifies that every entry field survives a round trip.
func testPutGet(t *testing.T, factory StoreFactory) {
	store := factory(t)
	want := putEntry(t, store, "/data/cold", namespace.EntryDirectory, "RS-6-3-1024k")

	got, err := store.Get(t.Context(), "/data/cold")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Path != want.Path {
		t.Errorf("Path = %q, want %q", got.Path, want.Path)
	}
	if got.Type != namespace.EntryDirectory {
		t.Errorf("Type = %q, want DIRECTORY", got.Type)
	}
	if got.Policy != "RS-6-3-1024k" {
		t.Errorf("Policy = %q, want RS-6-3-1024k", got.Policy)
	}
	if d := got.UpdatedAt.Sub(want.UpdatedAt); d > time.Second || d < -time.Second {
		t.Errorf("UpdatedAt = %v, want about %v", got.UpdatedAt, want.UpdatedAt)
	}
}

// testPutReplaces verifies that a second Put on the same path overwrites it.
func testPutReplaces(t *testing.T, factory StoreFactory) {
	store := factory(t)
	putEntry(t, store, "/a", namespace.EntryDirectory, "XOR-2-1-1024k")
	putEntry(t, store, "/a", namespace.EntryDirectory, "")

	got, err := store.Get(t.Context(), "/a")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Policy != "" {
		t.Errorf("Policy = %q, want empty after replace", got.Policy)
	}

	all, err := store.List(t.Context(), "/")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() returned %d entries, want 1", len(all))
	}
}

// testPutCopiesEntry verifies that the store does not alias caller memory.
func testPutCopiesEntry(t *testing.T, factory StoreFactory) {
	store := factory(t)
	e := putEntry(t, store, "/a", namespace.EntryDirectory, "RS-3-2-1024k")
	e.Policy = "mutated"

	got, err := store.Get(t.Context(), "/a")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Policy != "RS-3-2-1024k" {
		t.Errorf("Policy = %q, stored entry was aliased", got.Policy)
	}
}

// testListPrefix verifies prefix filtering and path ordering.
func testListPrefix(t *testing.T, factory StoreFactory) {
	store := factory(t)
	putEntry(t, store, "/b", namespace.EntryDirectory, "")
	putEntry(t, store, "/a/y", namespace.EntryFile, "")
	putEntry(t, store, "/a", namespace.EntryDirectory, "")
	putEntry(t, store, "/a/x", namespace.EntryDirectory, "")

	got, err := store.List(t.Context(), "/a")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	want := []string{"/a", "/a/x", "/a/y"}
	if len(got) != len(want) {
		t.Fatalf("List() returned %d entries, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.Path != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, e.Path, want[i])
		}
	}
}

// testClosedStore verifies that a closed store refuses further reads.
func testClosedStore(t *testing.T, factory StoreFactory) {
	store := factory(t)
	putEntry(t, store, "/a", namespace.EntryDirectory, "")

	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if _, err := store.Get(t.Context(), "/a"); err == nil {
		t.Error("Get() after Close() should fail")
	}
}
