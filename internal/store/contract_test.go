package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/catalog"
)

// runContract exercises behavior every catalog.Store must share.
func runContract(t *testing.T, newStore func(t *testing.T) catalog.Store) {
	ctx := context.Background()

	t.Run("singletons are seeded", func(t *testing.T) {
		s := newStore(t)
		h, err := s.Header(ctx)
		require.NoError(t, err)
		assert.Equal(t, defaultHeader.Title, h.Title)
		f, err := s.Footer(ctx)
		require.NoError(t, err)
		assert.Equal(t, defaultFooter.Whatsapp, f.Whatsapp)
	})

	t.Run("insert positions are dense", func(t *testing.T) {
		s := newStore(t)
		a, err := s.InsertCategory(ctx, "Shoes")
		require.NoError(t, err)
		b, err := s.InsertCategory(ctx, "Hats")
		require.NoError(t, err)
		assert.Equal(t, 0, a.Position)
		assert.Equal(t, 1, b.Position)

		p1, err := s.InsertProduct(ctx, product(a.ID, "Boot"))
		require.NoError(t, err)
		p2, err := s.InsertProduct(ctx, product(b.ID, "Cap"))
		require.NoError(t, err)
		assert.Equal(t, 0, p1.Position)
		assert.Equal(t, 1, p2.Position)

		got, err := s.Product(ctx, p2.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cap", got.Name)
		assert.Equal(t, "19.90", got.Price)
	})

	t.Run("duplicate category name", func(t *testing.T) {
		s := newStore(t)
		_, err := s.InsertCategory(ctx, "Shoes")
		require.NoError(t, err)
		_, err = s.InsertCategory(ctx, "Shoes")
		assert.ErrorIs(t, err, catalog.ErrDuplicate)

		list, err := s.Categories(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("delete category cascades and renumbers", func(t *testing.T) {
		s := newStore(t)
		shoes, err := s.InsertCategory(ctx, "Shoes")
		require.NoError(t, err)
		hats, err := s.InsertCategory(ctx, "Hats")
		require.NoError(t, err)
		_, err = s.InsertProduct(ctx, product(shoes.ID, "Boot"))
		require.NoError(t, err)
		cap1, err := s.InsertProduct(ctx, product(hats.ID, "Cap"))
		require.NoError(t, err)
		_, err = s.InsertProduct(ctx, product(shoes.ID, "Sandal"))
		require.NoError(t, err)

		c, removed, err := s.DeleteCategory(ctx, shoes.ID)
		require.NoError(t, err)
		assert.Equal(t, "Shoes", c.Name)
		require.Len(t, removed, 2)
		assert.Equal(t, "Boot", removed[0].Name)
		assert.Equal(t, "Sandal", removed[1].Name)

		products, err := s.Products(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, cap1.ID, products[0].ID)
		assert.Equal(t, 0, products[0].Position)

		categories, err := s.Categories(ctx)
		require.NoError(t, err)
		require.Len(t, categories, 1)
		assert.Equal(t, 0, categories[0].Position)

		_, _, err = s.DeleteCategory(ctx, shoes.ID)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("reorder assigns positions in order", func(t *testing.T) {
		s := newStore(t)
		var want []int64
		for i := 0; i < 3; i++ {
			p, err := s.InsertPropaganda(ctx, "big", "small")
			require.NoError(t, err)
			want = append([]int64{p.ID}, want...)
		}
		require.NoError(t, s.Reorder(ctx, catalog.TablePropagandas, want))
		got, err := s.IDs(ctx, catalog.TablePropagandas)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		list, err := s.Propagandas(ctx)
		require.NoError(t, err)
		for i, p := range list {
			assert.Equal(t, i, p.Position)
		}
	})

	t.Run("reorder rejects a stale id set", func(t *testing.T) {
		s := newStore(t)
		a, err := s.InsertCategory(ctx, "Shoes")
		require.NoError(t, err)
		b, err := s.InsertCategory(ctx, "Hats")
		require.NoError(t, err)
		stale := []int64{b.ID, a.ID}
		c, err := s.InsertCategory(ctx, "Bags")
		require.NoError(t, err)

		err = s.Reorder(ctx, catalog.TableCategories, stale)
		e, ok := catalog.AsError(err)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, 400, e.Status)

		got, err := s.IDs(ctx, catalog.TableCategories)
		require.NoError(t, err)
		assert.Equal(t, []int64{a.ID, b.ID, c.ID}, got)
		list, err := s.Categories(ctx)
		require.NoError(t, err)
		for i, cat := range list {
			assert.Equal(t, i, cat.Position)
		}
	})

	t.Run("category rename keeps names unique", func(t *testing.T) {
		s := newStore(t)
		a, err := s.InsertCategory(ctx, "shoes")
		require.NoError(t, err)
		_, err = s.InsertCategory(ctx, "Hats")
		require.NoError(t, err)

		require.NoError(t, s.UpdateField(ctx, catalog.CategoryName, a.ID, "Shoes"))
		err = s.UpdateField(ctx, catalog.CategoryName, a.ID, "Hats")
		assert.ErrorIs(t, err, catalog.ErrDuplicate)

		got, err := s.Category(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Shoes", got.Name)
	})

	t.Run("fields round trip", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.UpdateField(ctx, catalog.HeaderTitle, 0, "New title"))
		v, err := s.FieldValue(ctx, catalog.HeaderTitle, 0)
		require.NoError(t, err)
		assert.Equal(t, "New title", v)

		c, err := s.InsertCategory(ctx, "Shoes")
		require.NoError(t, err)
		p, err := s.InsertProduct(ctx, product(c.ID, "Boot"))
		require.NoError(t, err)
		require.NoError(t, s.UpdateField(ctx, catalog.ProductOff, p.ID, "25"))
		require.NoError(t, s.UpdateField(ctx, catalog.ProductPrice, p.ID, "5.00"))
		got, err := s.Product(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 25, got.Off)
		assert.Equal(t, "5.00", got.Price)

		_, err = s.FieldValue(ctx, catalog.ProductName, p.ID+100)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("clicks are appended", func(t *testing.T) {
		s := newStore(t)
		c, err := s.InsertCategory(ctx, "Shoes")
		require.NoError(t, err)
		p, err := s.InsertProduct(ctx, product(c.ID, "Boot"))
		require.NoError(t, err)
		at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, s.RecordClick(ctx, p.ID, at))
		require.NoError(t, s.RecordClick(ctx, p.ID, at.Add(time.Minute)))

		clicks, err := s.Clicks(ctx, p.ID)
		require.NoError(t, err)
		require.Len(t, clicks, 2)
		assert.True(t, clicks[0].At.Equal(at))

		got, err := s.Product(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Clicks)
	})

	t.Run("credential", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Credential(ctx)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
		want := catalog.Credential{UsernameHash: "u", PasswordHash: "p", Token: "t1"}
		require.NoError(t, s.SaveCredential(ctx, want))
		want.Token = "t2"
		require.NoError(t, s.SaveCredential(ctx, want))
		got, err := s.Credential(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func product(categoryID int64, name string) catalog.Product {
	return catalog.Product{
		CategoryID: categoryID,
		Name:       name,
		Price:      "19.90",
		Whatsapp:   "5511912345678",
		Message:    "Quero ###",
		Image:      "products/abc",
	}
}
