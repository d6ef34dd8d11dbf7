package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/catalog"
)

func TestMemoryContract(t *testing.T) {
	runContract(t, func(*testing.T) catalog.Store { return NewMemory() })
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_, err := m.InsertCategory(ctx, "Shoes")
	require.NoError(t, err)

	list, err := m.Categories(ctx)
	require.NoError(t, err)
	list[0].Name = "changed"

	c, err := m.CategoryByName(ctx, "shoes")
	require.NoError(t, err)
	assert.Equal(t, "Shoes", c.Name)
}

func TestMemoryRejectsOrphanProduct(t *testing.T) {
	_, err := NewMemory().InsertProduct(context.Background(), product(42, "Boot"))
	assert.Error(t, err)
}
