package namespace_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/ecfs/pkg/namespace"
	"github.com/marmos91/ecfs/pkg/namespace/store/memory"
)

func newNamespace(t *testing.T, enabled ...string) *namespace.Namespace {
	t.Helper()

	catalog, err := namespace.NewCatalog(enabled)
	require.NoError(t, err)
	ns, err := namespace.New(context.Background(), memory.New(), catalog)
	require.NoError(t, err)
	return ns
}

func effective(t *testing.T, ns *namespace.Namespace, path string) string {
	t.Helper()

	p, err := ns.GetEffectivePolicy(context.Background(), path)
	require.NoError(t, err)
	if p == nil {
		return ""
	}
	return p.Name
}

func TestNewRequiresDependencies(t *testing.T) {
	catalog, err := namespace.NewCatalog(nil)
	require.NoError(t, err)

	_, err = namespace.New(context.Background(), nil, catalog)
	assert.Error(t, err)
	_, err = namespace.New(context.Background(), memory.New(), nil)
	assert.Error(t, err)
}

func TestGetEffectivePolicy(t *testing.T) {
	ctx := context.Background()
	ns := newNamespace(t, "RS-6-3-1024k", "RS-3-2-1024k")
	require.NoError(t, ns.Mkdirs(ctx, "/a/b/c"))

	t.Run("UnspecifiedByDefault", func(t *testing.T) {
		assert.Empty(t, effective(t, ns, "/a/b/c"))
		assert.Empty(t, effective(t, ns, "/"))
	})

	t.Run("InheritedFromNearestAncestor", func(t *testing.T) {
		require.NoError(t, ns.SetPolicy(ctx, "/a", "RS-6-3-1024k"))
		assert.Equal(t, "RS-6-3-1024k", effective(t, ns, "/a/b/c"))

		require.NoError(t, ns.SetPolicy(ctx, "/a/b", "RS-3-2-1024k"))
		assert.Equal(t, "RS-3-2-1024k", effective(t, ns, "/a/b/c"))
		assert.Equal(t, "RS-6-3-1024k", effective(t, ns, "/a"))
	})

	t.Run("PathIsCleaned", func(t *testing.T) {
		assert.Equal(t, "RS-3-2-1024k", effective(t, ns, "/a//b/./c/"))
	})

	t.Run("MissingPath", func(t *testing.T) {
		_, err := ns.GetEffectivePolicy(ctx, "/a/missing")
		assert.True(t, errors.Is(err, namespace.ErrNotFound))
		assert.Contains(t, err.Error(), "/a/missing")
	})

	t.Run("InvalidPath", func(t *testing.T) {
		_, err := ns.GetEffectivePolicy(ctx, "relative")
		assert.True(t, errors.Is(err, namespace.ErrInvalidPath))
	})
}

func TestSetPolicy(t *testing.T) {
	ctx := context.Background()
	ns := newNamespace(t, "RS-6-3-1024k", "XOR-2-1-1024k")
	require.NoError(t, ns.Mkdirs(ctx, "/data"))

	t.Run("Idempotent", func(t *testing.T) {
		require.NoError(t, ns.SetPolicy(ctx, "/data", "XOR-2-1-1024k"))
		require.NoError(t, ns.SetPolicy(ctx, "/data", "XOR-2-1-1024k"))
		assert.Equal(t, "XOR-2-1-1024k", effective(t, ns, "/data"))
	})

	t.Run("UnknownPolicy", func(t *testing.T) {
		err := ns.SetPolicy(ctx, "/data", "RS-99-1-1k")
		assert.True(t, errors.Is(err, namespace.ErrUnknownPolicy))
		assert.Equal(t, "XOR-2-1-1024k", effective(t, ns, "/data"))
	})

	t.Run("DisabledPolicy", func(t *testing.T) {
		err := ns.SetPolicy(ctx, "/data", "RS-10-4-1024k")
		assert.True(t, errors.Is(err, namespace.ErrPolicyDisabled))
	})

	t.Run("MissingPath", func(t *testing.T) {
		err := ns.SetPolicy(ctx, "/nope", "RS-6-3-1024k")
		assert.True(t, errors.Is(err, namespace.ErrNotFound))
	})

	t.Run("FileRejected", func(t *testing.T) {
		_, err := ns.CreateFile(ctx, "/data/f")
		require.NoError(t, err)

		err = ns.SetPolicy(ctx, "/data/f", "RS-6-3-1024k")
		assert.True(t, errors.Is(err, namespace.ErrNotDirectory))
		assert.Contains(t, err.Error(), "attempt to set an erasure coding policy for a file /data/f")
	})

	t.Run("Root", func(t *testing.T) {
		require.NoError(t, ns.SetPolicy(ctx, "/", "RS-6-3-1024k"))
		require.NoError(t, ns.Mkdirs(ctx, "/other/deep"))
		assert.Equal(t, "RS-6-3-1024k", effective(t, ns, "/other/deep"))
	})
}

func TestUnsetPolicy(t *testing.T) {
	ctx := context.Background()
	ns := newNamespace(t, "RS-6-3-1024k", "RS-3-2-1024k")
	require.NoError(t, ns.Mkdirs(ctx, "/p/c"))
	require.NoError(t, ns.SetPolicy(ctx, "/p", "RS-6-3-1024k"))
	require.NoError(t, ns.SetPolicy(ctx, "/p/c", "RS-3-2-1024k"))

	require.NoError(t, ns.UnsetPolicy(ctx, "/p/c"))
	assert.Equal(t, "RS-6-3-1024k", effective(t, ns, "/p/c"))

	err := ns.UnsetPolicy(ctx, "/p/c")
	assert.True(t, errors.Is(err, namespace.ErrNoPolicySet))
	assert.Contains(t, err.Error(), "no erasure coding policy explicitly set on /p/c")

	require.NoError(t, ns.UnsetPolicy(ctx, "/p"))
	assert.Empty(t, effective(t, ns, "/p/c"))

	err = ns.UnsetPolicy(ctx, "/missing")
	assert.True(t, errors.Is(err, namespace.ErrNotFound))
}

func TestCreateFile(t *testing.T) {
	ctx := context.Background()
	ns := newNamespace(t, "RS-6-3-1024k", "RS-3-2-1024k")
	require.NoError(t, ns.Mkdirs(ctx, "/d"))

	t.Run("WithoutPolicy", func(t *testing.T) {
		e, err := ns.CreateFile(ctx, "/d/plain")
		require.NoError(t, err)
		assert.Empty(t, e.Policy)
		assert.Empty(t, effective(t, ns, "/d/plain"))
	})

	t.Run("FreezesInheritedPolicy", func(t *testing.T) {
		require.NoError(t, ns.SetPolicy(ctx, "/d", "RS-6-3-1024k"))
		_, err := ns.CreateFile(ctx, "/d/f")
		require.NoError(t, err)

		require.NoError(t, ns.SetPolicy(ctx, "/d", "RS-3-2-1024k"))
		assert.Equal(t, "RS-6-3-1024k", effective(t, ns, "/d/f"))

		// Files created before any policy stay unspecified.
		assert.Empty(t, effective(t, ns, "/d/plain"))
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := ns.CreateFile(ctx, "/d/f")
		assert.True(t, errors.Is(err, namespace.ErrAlreadyExists))

		_, err = ns.CreateFile(ctx, "/")
		assert.True(t, errors.Is(err, namespace.ErrAlreadyExists))

		_, err = ns.CreateFile(ctx, "/missing/f")
		assert.True(t, errors.Is(err, namespace.ErrNotFound))

		_, err = ns.CreateFile(ctx, "/d/f/g")
		assert.True(t, errors.Is(err, namespace.ErrNotDirectory))
	})
}

func TestMkdirs(t *testing.T) {
	ctx := context.Background()
	ns := newNamespace(t)

	require.NoError(t, ns.Mkdirs(ctx, "/x/y/z"))
	require.NoError(t, ns.Mkdirs(ctx, "/x/y"))

	for _, p := range []string{"/x", "/x/y", "/x/y/z"} {
		e, err := ns.Stat(ctx, p)
		require.NoError(t, err)
		assert.True(t, e.IsDir(), p)
	}

	_, err := ns.CreateFile(ctx, "/x/file")
	require.NoError(t, err)
	err = ns.Mkdirs(ctx, "/x/file/sub")
	assert.True(t, errors.Is(err, namespace.ErrNotDirectory))
}

func TestListPolicies(t *testing.T) {
	ns := newNamespace(t, "XOR-2-1-1024k")

	list, err := ns.ListPolicies(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 6)
	assert.Equal(t, uint8(1), list[0].ID)

	var enabled []string
	for _, p := range list {
		if p.IsEnabled() {
			enabled = append(enabled, p.Name)
		}
	}
	assert.Equal(t, []string{"XOR-2-1-1024k"}, enabled)
}

func TestConcurrentSetPolicy(t *testing.T) {
	ctx := context.Background()
	ns := newNamespace(t, "RS-6-3-1024k", "RS-3-2-1024k")
	require.NoError(t, ns.Mkdirs(ctx, "/c"))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "RS-6-3-1024k"
			if i%2 == 0 {
				name = "RS-3-2-1024k"
			}
			assert.NoError(t, ns.SetPolicy(ctx, "/c", name))
		}(i)
	}
	wg.Wait()

	assert.Contains(t, []string{"RS-6-3-1024k", "RS-3-2-1024k"}, effective(t, ns, "/c"))
}
