// Package admin implements the content-management operations behind the
// admin API. Every operation validates first, then touches object storage,
// then the row store, and releases replaced objects only after the rows
// are committed.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log"

	"storefront/internal/catalog"
	"storefront/internal/imaging"
	"storefront/internal/storage"
)

// File is an uploaded file held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service runs admin operations against a row store and an object store.
type Service struct {
	store   catalog.Store
	objects storage.Store
}

func New(store catalog.Store, objects storage.Store) *Service {
	return &Service{store: store, objects: objects}
}

// HeaderView is the header with display URLs for its images.
type HeaderView struct {
	catalog.Header
	IconURL string `json:"iconUrl"`
	LogoURL string `json:"logoUrl"`
}

// PropagandaView is a banner with display URLs.
type PropagandaView struct {
	catalog.Propaganda
	BigImageURL   string `json:"bigImageUrl"`
	SmallImageURL string `json:"smallImageUrl"`
}

// ProductView is a product with a display URL.
type ProductView struct {
	catalog.Product
	ImageURL string `json:"imageUrl"`
}

func (s *Service) Header(ctx context.Context) (HeaderView, error) {
	h, err := s.store.Header(ctx)
	if err != nil {
		return HeaderView{}, notFound(err, "header")
	}
	return HeaderView{
		Header:  h,
		IconURL: storage.SignedURL(ctx, s.objects, h.Icon),
		LogoURL: storage.SignedURL(ctx, s.objects, h.Logo),
	}, nil
}

func (s *Service) Footer(ctx context.Context) (catalog.Footer, error) {
	f, err := s.store.Footer(ctx)
	if err != nil {
		return catalog.Footer{}, notFound(err, "footer")
	}
	return f, nil
}

func (s *Service) Propagandas(ctx context.Context) ([]PropagandaView, error) {
	list, err := s.store.Propagandas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list propagandas: %w", err)
	}
	out := make([]PropagandaView, 0, len(list))
	for _, p := range list {
		out = append(out, PropagandaView{
			Propaganda:    p,
			BigImageURL:   storage.SignedURL(ctx, s.objects, p.BigImage),
			SmallImageURL: storage.SignedURL(ctx, s.objects, p.SmallImage),
		})
	}
	return out, nil
}

func (s *Service) Categories(ctx context.Context) ([]catalog.Category, error) {
	list, err := s.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if list == nil {
		list = []catalog.Category{}
	}
	return list, nil
}

func (s *Service) Products(ctx context.Context) ([]ProductView, error) {
	list, err := s.store.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]ProductView, 0, len(list))
	for _, p := range list {
		out = append(out, ProductView{Product: p, ImageURL: storage.SignedURL(ctx, s.objects, p.Image)})
	}
	return out, nil
}

// upload processes file with the preset of f and stores it under a new key.
func (s *Service) upload(ctx context.Context, f catalog.Field, file File) (string, error) {
	preset, ok := imaging.PresetFor(f)
	if !ok {
		return "", catalog.Invalid("%s is not an image field", f)
	}
	res, err := imaging.Process(file.Data, preset)
	if err != nil {
		return "", err
	}
	if err := s.objects.Put(ctx, res.Key, res.ContentType, res.Data); err != nil {
		return "", fmt.Errorf("upload %s: %w", f, err)
	}
	log.Printf("uploaded %s as %s (%dx%d)", f, res.Key, res.Width, res.Height)
	return res.Key, nil
}

// entity names a table's rows in client messages.
func entity(t catalog.Table) string {
	switch t {
	case catalog.TablePropagandas:
		return "propaganda"
	case catalog.TableCategories:
		return "category"
	case catalog.TableProducts:
		return "product"
	default:
		return string(t)
	}
}

// notFound turns catalog.ErrNotFound into a 404 naming what and wraps
// anything else.
func notFound(err error, what string) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.NotFound(what)
	}
	if _, ok := catalog.AsError(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", what, err)
}
