package admin

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/catalog"
	"storefront/internal/storage"
	"storefront/internal/store"
)

func pngFile(t *testing.T) File {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.NRGBA{B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return File{Name: "pic.png", ContentType: "image/png", Data: buf.Bytes()}
}

// flaky fails selected writes after validation has passed.
type flaky struct {
	catalog.Store
	failInsert bool
	failUpdate bool
}

var errDown = errors.New("database is down")

func (f *flaky) InsertProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if f.failInsert {
		return catalog.Product{}, errDown
	}
	return f.Store.InsertProduct(ctx, p)
}

func (f *flaky) InsertPropaganda(ctx context.Context, big, small string) (catalog.Propaganda, error) {
	if f.failInsert {
		return catalog.Propaganda{}, errDown
	}
	return f.Store.InsertPropaganda(ctx, big, small)
}

func (f *flaky) UpdateField(ctx context.Context, fl catalog.Field, id int64, v string) error {
	if f.failUpdate {
		return errDown
	}
	return f.Store.UpdateField(ctx, fl, id, v)
}

type fixture struct {
	svc     *Service
	rows    *flaky
	objects *storage.Memory
}

func newFixture() fixture {
	rows := &flaky{Store: store.NewMemory()}
	objects := storage.NewMemory("/media")
	return fixture{svc: New(rows, objects), rows: rows, objects: objects}
}

func clientErr(t *testing.T, err error) *catalog.Error {
	t.Helper()
	e, ok := catalog.AsError(err)
	require.True(t, ok, "expected client error, got %v", err)
	return e
}

func form(c catalog.Category, name string) ProductForm {
	return ProductForm{
		Category:    strconv.FormatInt(c.ID, 10),
		Name:        name,
		Price:       "49.9",
		Off:         "10",
		Installment: "3x sem juros",
		Whatsapp:    "5511912345678",
		Message:     "Quero ###",
	}
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	_, err := fx.svc.CreateCategory(ctx, "Hats")
	require.NoError(t, err)

	c, err := fx.svc.CreateCategory(ctx, "Shoes")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Position)

	_, err = fx.svc.CreateCategory(ctx, "Shoes")
	e := clientErr(t, err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "category already exists", e.Message)

	n, err := fx.svc.DeleteCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := fx.svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hats", list[0].Name)
	assert.Equal(t, 0, list[0].Position)
}

func TestDeleteCategoryReleasesProductImages(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	shoes, err := fx.svc.CreateCategory(ctx, "Shoes")
	require.NoError(t, err)
	hats, err := fx.svc.CreateCategory(ctx, "Hats")
	require.NoError(t, err)

	for _, name := range []string{"Boot", "Sandal", "Sneaker"} {
		_, err := fx.svc.CreateProduct(ctx, form(shoes, name), pngFile(t))
		require.NoError(t, err)
	}
	cap1, err := fx.svc.CreateProduct(ctx, form(hats, "Cap"), pngFile(t))
	require.NoError(t, err)
	require.Equal(t, 4, fx.objects.Len())

	n, err := fx.svc.DeleteCategory(ctx, shoes.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, fx.objects.Len())
	_, _, ok := fx.objects.Get(cap1.Image)
	assert.True(t, ok)

	products, err := fx.svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, hats.ID, products[0].CategoryID)
	assert.Equal(t, 0, products[0].Position)

	_, err = fx.svc.DeleteCategory(ctx, shoes.ID)
	assert.Equal(t, http.StatusNotFound, clientErr(t, err).Status)
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	shoes, err := fx.svc.CreateCategory(ctx, "Shoes")
	require.NoError(t, err)

	first, err := fx.svc.CreateProduct(ctx, form(shoes, "Boot"), pngFile(t))
	require.NoError(t, err)
	second, err := fx.svc.CreateProduct(ctx, form(shoes, "Sandal"), pngFile(t))
	require.NoError(t, err)

	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, "49.90", second.Price)
	assert.Equal(t, 10, second.Off)

	products, err := fx.svc.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "/media/"+second.Image, products[1].ImageURL)
}

func TestCreateProductRejectsBeforeUpload(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	shoes, err := fx.svc.CreateCategory(ctx, "Shoes")
	require.NoError(t, err)

	tests := []struct {
		name string
		form ProductForm
		msg  string
	}{
		{"missing category", form(catalog.Category{ID: 99}, "Boot"), "products.category does not exist"},
		{"empty name", form(shoes, ""), "products.name must have between 1 and 50 characters"},
		{"bad whatsapp", func() ProductForm { f := form(shoes, "Boot"); f.Whatsapp = "123"; return f }(), "products.whatsapp must have exactly 13 digits"},
		{"off too high", func() ProductForm { f := form(shoes, "Boot"); f.Off = "101"; return f }(), "products.off must be between 0 and 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.CreateProduct(ctx, tt.form, pngFile(t))
			assert.Equal(t, tt.msg, clientErr(t, err).Message)
			assert.Zero(t, fx.objects.Len())
		})
	}
}

func TestCreateProductRemovesImageWhenInsertFails(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	shoes, err := fx.svc.CreateCategory(ctx, "Shoes")
	require.NoError(t, err)
	fx.rows.failInsert = true

	_, err = fx.svc.CreateProduct(ctx, form(shoes, "Boot"), pngFile(t))
	assert.ErrorIs(t, err, errDown)
	assert.Zero(t, fx.objects.Len())
}

func TestCreatePropaganda(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	_, err := fx.svc.CreatePropaganda(ctx, []File{pngFile(t), pngFile(t)}, []string{"bigImage", "bigImage"})
	assert.Equal(t, http.StatusBadRequest, clientErr(t, err).Status)
	_, err = fx.svc.CreatePropaganda(ctx, []File{pngFile(t)}, []string{"bigImage"})
	assert.Equal(t, http.StatusBadRequest, clientErr(t, err).Status)
	assert.Zero(t, fx.objects.Len())

	p, err := fx.svc.CreatePropaganda(ctx, []File{pngFile(t), pngFile(t)}, []string{"smallImage", "bigImage"})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Position)
	assert.Equal(t, 2, fx.objects.Len())

	big, _, ok := fx.objects.Get(p.BigImage)
	require.True(t, ok)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(big))
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Width)

	small, _, ok := fx.objects.Get(p.SmallImage)
	require.True(t, ok)
	cfg, _, err = image.DecodeConfig(bytes.NewReader(small))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)

	require.NoError(t, fx.svc.DeletePropaganda(ctx, p.ID))
	assert.Zero(t, fx.objects.Len())
	assert.Equal(t, http.StatusNotFound, clientErr(t, fx.svc.DeletePropaganda(ctx, p.ID)).Status)
}

func TestCreatePropagandaRemovesImagesWhenInsertFails(t *testing.T) {
	fx := newFixture()
	fx.rows.failInsert = true
	_, err := fx.svc.CreatePropaganda(context.Background(), []File{pngFile(t), pngFile(t)}, []string{"bigImage", "smallImage"})
	assert.ErrorIs(t, err, errDown)
	assert.Zero(t, fx.objects.Len())
}

func TestUpdateText(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	v, err := fx.svc.UpdateText(ctx, catalog.HeaderTitle, 0, "  Loja Nova ")
	require.NoError(t, err)
	assert.Equal(t, "Loja Nova", v)

	_, err = fx.svc.UpdateText(ctx, catalog.HeaderColor, 0, "red")
	e := clientErr(t, err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Contains(t, e.Message, "header.color")

	h, err := fx.svc.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Loja Nova", h.Title)
	assert.Equal(t, "#222222", h.Color)

	_, err = fx.svc.UpdateText(ctx, catalog.ProductName, 7, "Boot")
	e = clientErr(t, err)
	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.Equal(t, "product not found", e.Message)

	_, err = fx.svc.UpdateText(ctx, catalog.HeaderLogo, 0, "x")
	assert.Equal(t, http.StatusBadRequest, clientErr(t, err).Status)
}

func TestRenameCategoryToItsOwnName(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	shoes, err := fx.svc.CreateCategory(ctx, "shoes")
	require.NoError(t, err)
	_, err = fx.svc.CreateCategory(ctx, "Hats")
	require.NoError(t, err)

	v, err := fx.svc.UpdateText(ctx, catalog.CategoryName, shoes.ID, "shoes")
	require.NoError(t, err)
	assert.Equal(t, "shoes", v)
	v, err = fx.svc.UpdateText(ctx, catalog.CategoryName, shoes.ID, "Shoes")
	require.NoError(t, err)
	assert.Equal(t, "Shoes", v)

	_, err = fx.svc.UpdateText(ctx, catalog.CategoryName, shoes.ID, "hats")
	e := clientErr(t, err)
	assert.Equal(t, "category already exists", e.Message)
}

func TestReplaceImage(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	shoes, err := fx.svc.CreateCategory(ctx, "Shoes")
	require.NoError(t, err)
	p, err := fx.svc.CreateProduct(ctx, form(shoes, "Boot"), pngFile(t))
	require.NoError(t, err)

	key, err := fx.svc.ReplaceImage(ctx, catalog.ProductImage, p.ID, pngFile(t))
	require.NoError(t, err)
	assert.NotEqual(t, p.Image, key)
	assert.Equal(t, 1, fx.objects.Len())
	_, _, ok := fx.objects.Get(p.Image)
	assert.False(t, ok)

	fx.rows.failUpdate = true
	_, err = fx.svc.ReplaceImage(ctx, catalog.ProductImage, p.ID, pngFile(t))
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, 1, fx.objects.Len())
	_, _, ok = fx.objects.Get(key)
	assert.True(t, ok)

	_, err = fx.svc.ReplaceImage(ctx, catalog.ProductImage, 999, pngFile(t))
	assert.Equal(t, http.StatusNotFound, clientErr(t, err).Status)
}

func TestReplaceHeaderIcon(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	key, err := fx.svc.ReplaceImage(ctx, catalog.HeaderIcon, 0, pngFile(t))
	require.NoError(t, err)

	h, err := fx.svc.Header(ctx)
	require.NoError(t, err)
	assert.Equal(t, key, h.Icon)
	assert.Equal(t, "/media/"+key, h.IconURL)
	assert.Empty(t, h.LogoURL)
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	var ids []int64
	for _, name := range []string{"A", "B", "C"} {
		c, err := fx.svc.CreateCategory(ctx, name)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	for _, bad := range [][]int64{
		{ids[0], ids[1]},
		{ids[0], ids[1], ids[1]},
		{ids[0], ids[1], 99},
	} {
		err := fx.svc.Reorder(ctx, catalog.TableCategories, bad)
		assert.Equal(t, http.StatusBadRequest, clientErr(t, err).Status)
	}
	list, err := fx.svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", list[0].Name)

	require.NoError(t, fx.svc.Reorder(ctx, catalog.TableCategories, []int64{ids[2], ids[0], ids[1]}))
	list, err = fx.svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, []string{list[0].Name, list[1].Name, list[2].Name})
	assert.Equal(t, 2, list[2].Position)

	assert.Error(t, fx.svc.Reorder(ctx, catalog.TableHeader, nil))
}
