package namespace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPolicyNames(t *testing.T) {
	var names []string
	for _, p := range SystemPolicies() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"RS-6-3-1024k",
		"RS-3-2-1024k",
		"RS-6-3-64k",
		"RS-LEGACY-6-3-1024k",
		"XOR-2-1-1024k",
		"RS-10-4-1024k",
	}, names)
}

func TestNewCatalogDefaultEnabled(t *testing.T) {
	c, err := NewCatalog(nil)
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 6)
	for _, p := range list {
		assert.Equal(t, p.Name == DefaultEnabledPolicy, p.IsEnabled(), p.Name)
	}
}

func TestNewCatalogUnknown(t *testing.T) {
	_, err := NewCatalog([]string{"RS-99-1-1k"})
	assert.True(t, errors.Is(err, ErrUnknownPolicy))
}

func TestCatalogListReturnsCopies(t *testing.T) {
	c, err := NewCatalog(nil)
	require.NoError(t, err)

	c.List()[0].State = PolicyDisabled
	p, err := c.Lookup("RS-6-3-1024k")
	require.NoError(t, err)
	assert.True(t, p.IsEnabled())
}

func TestCatalogAssignable(t *testing.T) {
	c, err := NewCatalog([]string{"RS-6-3-1024k", "XOR-2-1-1024k"})
	require.NoError(t, err)

	p, err := c.Assignable("XOR-2-1-1024k")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Schema.DataUnits)
	assert.Equal(t, 1024*1024, p.CellSize)

	_, err = c.Assignable("RS-3-2-1024k")
	assert.True(t, errors.Is(err, ErrPolicyDisabled))
	assert.Contains(t, err.Error(), "[RS-6-3-1024k, XOR-2-1-1024k]")

	_, err = c.Assignable("nope")
	assert.True(t, errors.Is(err, ErrUnknownPolicy))
	assert.Contains(t, err.Error(), "policy 'nope' does not match any enabled erasure coding policies")
}
