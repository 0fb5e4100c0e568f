// Package storetest provides a conformance suite that every namespace.Store
// implementation must pass.
package storetest

import (
	"testing"
	"time"

	"github.com/marmos91/ecfs/pkg/namespace"
)

// StoreFactory creates a fresh Store for each test. The factory receives
// *testing.T so it can use t.TempDir() and t.Cleanup().
type StoreFactory func(t *testing.T) namespace.Store

// RunConformanceSuite runs the full suite against the provided factory.
//
// It covers two categories:
//   - Entries: raw Get/Put/List/Close behavior
//   - Namespace: policy resolution running on top of the store
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("Entries", func(t *testing.T) {
		runEntryTests(t, factory)
	})

	t.Run("Namespace", func(t *testing.T) {
		runNamespaceTests(t, factory)
	})
}

func putEntry(t *testing.T, store namespace.Store, path string, typ namespace.EntryType, policy string) *namespace.Entry {
	t.Helper()

	e := &namespace.Entry{
		Path:      path,
		Type:      typ,
		Policy:    policy,
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := store.Put(t.Context(), e); err != nil {
		t.Fatalf("Put(%q) failed: %v", path, err)
	}
	return e
}

func newNamespace(t *testing.T, store namespace.Store, enabled ...string) *namespace.Namespace {
	t.Helper()

	catalog, err := namespace.NewCatalog(enabled)
	if err != nil {
		t.Fatalf("NewCatalog() failed: %v", err)
	}
	ns, err := namespace.New(t.Context(), store, catalog)
	if err != nil {
		t.Fatalf("namespace.New() failed: %v", err)
	}
	return ns
}
