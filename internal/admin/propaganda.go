package admin

import (
	"context"
	"fmt"

	"storefront/internal/catalog"
	"storefront/internal/mask"
	"storefront/internal/storage"
)

// CreatePropaganda stores a banner from two images. contexts[i] names the
// role of files[i]: bigImage or smallImage.
func (s *Service) CreatePropaganda(ctx context.Context, files []File, contexts []string) (catalog.Propaganda, error) {
	if len(files) != 2 {
		return catalog.Propaganda{}, catalog.Invalid("images must contain exactly 2 files")
	}
	if err := mask.ImagesContext(contexts); err != nil {
		return catalog.Propaganda{}, err
	}
	byRole := map[string]File{contexts[0]: files[0], contexts[1]: files[1]}

	big, err := s.upload(ctx, catalog.PropagandaBigImage, byRole["bigImage"])
	if err != nil {
		return catalog.Propaganda{}, err
	}
	small, err := s.upload(ctx, catalog.PropagandaSmallImage, byRole["smallImage"])
	if err != nil {
		storage.DeleteQuietly(ctx, s.objects, big)
		return catalog.Propaganda{}, err
	}

	p, err := s.store.InsertPropaganda(ctx, big, small)
	if err != nil {
		storage.DeleteQuietly(ctx, s.objects, big, small)
		return catalog.Propaganda{}, fmt.Errorf("insert propaganda: %w", err)
	}
	return p, nil
}

// DeletePropaganda removes a banner and then both of its images.
func (s *Service) DeletePropaganda(ctx context.Context, id int64) error {
	p, err := s.store.DeletePropaganda(ctx, id)
	if err != nil {
		return notFound(err, "propaganda")
	}
	storage.DeleteQuietly(ctx, s.objects, p.BigImage, p.SmallImage)
	return nil
}
