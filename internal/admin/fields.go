package admin

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/catalog"
	"storefront/internal/mask"
	"storefront/internal/storage"
)

// UpdateText validates value and writes it to one text column. Singleton
// tables ignore id.
func (s *Service) UpdateText(ctx context.Context, f catalog.Field, id int64, value string) (string, error) {
	if f.Kind != catalog.KindText {
		return "", catalog.Invalid("%s cannot be edited as text", f)
	}
	if _, err := s.store.FieldValue(ctx, f, id); err != nil {
		return "", notFound(err, entity(f.Table))
	}
	v, err := mask.CheckRow(ctx, s.store, f, id, value)
	if err != nil {
		return "", err
	}
	err = s.store.UpdateField(ctx, f, id, v)
	switch {
	case errors.Is(err, catalog.ErrDuplicate):
		return "", catalog.Invalid("category already exists")
	case err != nil:
		return "", notFound(err, entity(f.Table))
	}
	return v, nil
}

// ReplaceImage uploads file for an image column and swaps it in. The old
// object is deleted once the row points at the new one; on failure the new
// object is deleted instead. It returns the new key.
func (s *Service) ReplaceImage(ctx context.Context, f catalog.Field, id int64, file File) (string, error) {
	if f.Kind != catalog.KindImage {
		return "", catalog.Invalid("%s is not an image field", f)
	}
	old, err := s.store.FieldValue(ctx, f, id)
	if err != nil {
		return "", notFound(err, entity(f.Table))
	}
	key, err := s.upload(ctx, f, file)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateField(ctx, f, id, key); err != nil {
		storage.DeleteQuietly(ctx, s.objects, key)
		return "", notFound(err, entity(f.Table))
	}
	storage.DeleteQuietly(ctx, s.objects, old)
	return key, nil
}

// URL resolves a stored key for display.
func (s *Service) URL(ctx context.Context, key string) string {
	return storage.SignedURL(ctx, s.objects, key)
}

// Reorder sets the display order of an orderable table. ids must be exactly
// the table's current ids; the store checks this atomically with the write.
func (s *Service) Reorder(ctx context.Context, t catalog.Table, ids []int64) error {
	if !t.Orderable() {
		return catalog.Invalid("%s cannot be reordered", t)
	}
	if err := s.store.Reorder(ctx, t, ids); err != nil {
		if _, ok := catalog.AsError(err); ok {
			return err
		}
		return fmt.Errorf("reorder %s: %w", t, err)
	}
	return nil
}
