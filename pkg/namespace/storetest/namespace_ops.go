package storetest

import (
	"errors"
	"testing"

	"github.com/marmos91/ecfs/pkg/namespace"
)

func runNamespaceTests(t *testing.T, factory StoreFactory) {
	t.Run("RootCreated", func(t *testing.T) { testRootCreated(t, factory) })
	t.Run("ReopenKeepsRoot", func(t *testing.T) { testReopenKeepsRoot(t, factory) })
	t.Run("InheritAndRevert", func(t *testing.T) { testInheritAndRevert(t, factory) })
	t.Run("FileFreezesPolicy", func(t *testing.T) { testFileFreezesPolicy(t, factory) })
}

// testRootCreated verifies that New materializes the root directory.
func testRootCreated(t *testing.T, factory StoreFactory) {
	store := factory(t)
	newNamespace(t, store)

	root, err := store.Get(t.Context(), namespace.Root)
	if err != nil {
		t.Fatalf("Get(/) failed: %v", err)
	}
	if !root.IsDir() {
		t.Error("root should be a directory")
	}
}

// testReopenKeepsRoot verifies that New leaves an existing root untouched.
func testReopenKeepsRoot(t *testing.T, factory StoreFactory) {
	store := factory(t)
	ns := newNamespace(t, store)
	if err := ns.SetPolicy(t.Context(), "/", namespace.DefaultEnabledPolicy); err != nil {
		t.Fatalf("SetPolicy(/) failed: %v", err)
	}

	reopened := newNamespace(t, store)
	p, err := reopened.GetEffectivePolicy(t.Context(), "/")
	if err != nil {
		t.Fatalf("GetEffectivePolicy(/) failed: %v", err)
	}
	if p == nil || p.Name != namespace.DefaultEnabledPolicy {
		t.Errorf("policy on / = %v, want %s", p, namespace.DefaultEnabledPolicy)
	}
}

// testInheritAndRevert verifies inheritance and fallback after unset.
func testInheritAndRevert(t *testing.T, factory StoreFactory) {
	ctx := t.Context()
	ns := newNamespace(t, factory(t), "RS-6-3-1024k", "XOR-2-1-1024k")

	if err := ns.Mkdirs(ctx, "/a/b/c"); err != nil {
		t.Fatalf("Mkdirs() failed: %v", err)
	}
	if err := ns.SetPolicy(ctx, "/a", "RS-6-3-1024k"); err != nil {
		t.Fatalf("SetPolicy(/a) failed: %v", err)
	}
	if err := ns.SetPolicy(ctx, "/a/b", "XOR-2-1-1024k"); err != nil {
		t.Fatalf("SetPolicy(/a/b) failed: %v", err)
	}

	assertPolicy(t, ns, "/a/b/c", "XOR-2-1-1024k")

	if err := ns.UnsetPolicy(ctx, "/a/b"); err != nil {
		t.Fatalf("UnsetPolicy(/a/b) failed: %v", err)
	}
	assertPolicy(t, ns, "/a/b/c", "RS-6-3-1024k")

	err := ns.UnsetPolicy(ctx, "/a/b")
	if !errors.Is(err, namespace.ErrNoPolicySet) {
		t.Errorf("second UnsetPolicy() error = %v, want ErrNoPolicySet", err)
	}
}

// testFileFreezesPolicy verifies that files keep the layout they were created with.
func testFileFreezesPolicy(t *testing.T, factory StoreFactory) {
	ctx := t.Context()
	ns := newNamespace(t, factory(t), "RS-6-3-1024k", "RS-3-2-1024k")

	if err := ns.Mkdirs(ctx, "/d"); err != nil {
		t.Fatalf("Mkdirs() failed: %v", err)
	}
	if err := ns.SetPolicy(ctx, "/d", "RS-6-3-1024k"); err != nil {
		t.Fatalf("SetPolicy() failed: %v", err)
	}
	if _, err := ns.CreateFile(ctx, "/d/f"); err != nil {
		t.Fatalf("CreateFile() failed: %v", err)
	}
	if err := ns.SetPolicy(ctx, "/d", "RS-3-2-1024k"); err != nil {
		t.Fatalf("SetPolicy() failed: %v", err)
	}

	assertPolicy(t, ns, "/d/f", "RS-6-3-1024k")
	assertPolicy(t, ns, "/d", "RS-3-2-1024k")
}

func assertPolicy(t *testing.T, ns *namespace.Namespace, path, want string) {
	t.Helper()

	p, err := ns.GetEffectivePolicy(t.Context(), path)
	if err != nil {
		t.Fatalf("GetEffectivePolicy(%q) failed: %v", path, err)
	}
	if p == nil {
		t.Fatalf("GetEffectivePolicy(%q) = unspecified, want %s", path, want)
	}
	if p.Name != want {
		t.Errorf("GetEffectivePolicy(%q) = %s, want %s", path, p.Name, want)
	}
}
