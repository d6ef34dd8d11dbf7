package admin

import (
	"context"
	"errors"
	"fmt"
	"log"

	"storefront/internal/catalog"
	"storefront/internal/mask"
	"storefront/internal/storage"
)

func (s *Service) CreateCategory(ctx context.Context, name string) (catalog.Category, error) {
	name, err := mask.Check(ctx, s.store, catalog.CategoryName, name)
	if err != nil {
		return catalog.Category{}, err
	}
	c, err := s.store.InsertCategory(ctx, name)
	if errors.Is(err, catalog.ErrDuplicate) {
		return catalog.Category{}, catalog.Invalid("category already exists")
	}
	if err != nil {
		return catalog.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes a category together with its products and returns
// how many products went with it. Product images are released after the rows
// are gone.
func (s *Service) DeleteCategory(ctx context.Context, id int64) (int, error) {
	c, products, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		return 0, notFound(err, "category")
	}
	keys := make([]string, 0, len(products))
	for _, p := range products {
		keys = append(keys, p.Image)
	}
	storage.DeleteQuietly(ctx, s.objects, keys...)
	log.Printf("deleted category %d (%s) with %d products", c.ID, c.Name, len(products))
	return len(products), nil
}
