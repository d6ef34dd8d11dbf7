package admin

import (
	"context"
	"fmt"
	"strconv"

	"storefront/internal/catalog"
	"storefront/internal/mask"
	"storefront/internal/storage"
)

// ProductForm carries the text fields of a product upload.
type ProductForm struct {
	Category    string `schema:"category"`
	Name        string `schema:"name"`
	Price       string `schema:"price"`
	Off         string `schema:"off"`
	Installment string `schema:"installment"`
	Whatsapp    string `schema:"whatsapp"`
	Message     string `schema:"message"`
}

// CreateProduct validates every field, uploads the image and inserts the row.
// The image is removed again when the insert fails.
func (s *Service) CreateProduct(ctx context.Context, form ProductForm, image File) (catalog.Product, error) {
	values := []struct {
		field catalog.Field
		in    string
		out   *string
	}{
		{catalog.ProductCategory, form.Category, &form.Category},
		{catalog.ProductName, form.Name, &form.Name},
		{catalog.ProductPrice, form.Price, &form.Price},
		{catalog.ProductOff, form.Off, &form.Off},
		{catalog.ProductInstallment, form.Installment, &form.Installment},
		{catalog.ProductWhatsapp, form.Whatsapp, &form.Whatsapp},
		{catalog.ProductMessage, form.Message, &form.Message},
	}
	for _, v := range values {
		checked, err := mask.Check(ctx, s.store, v.field, v.in)
		if err != nil {
			return catalog.Product{}, err
		}
		*v.out = checked
	}
	// both were normalized by their checkers
	categoryID, _ := strconv.ParseInt(form.Category, 10, 64)
	off, _ := strconv.Atoi(form.Off)

	key, err := s.upload(ctx, catalog.ProductImage, image)
	if err != nil {
		return catalog.Product{}, err
	}
	p, err := s.store.InsertProduct(ctx, catalog.Product{
		CategoryID:  categoryID,
		Name:        form.Name,
		Price:       form.Price,
		Off:         off,
		Installment: form.Installment,
		Whatsapp:    form.Whatsapp,
		Message:     form.Message,
		Image:       key,
	})
	if err != nil {
		storage.DeleteQuietly(ctx, s.objects, key)
		return catalog.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// DeleteProduct removes a product and then its image.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	p, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return notFound(err, "product")
	}
	storage.DeleteQuietly(ctx, s.objects, p.Image)
	return nil
}
