// Package storefront assembles the public shop page and the WhatsApp order
// redirect.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/storage"
)

// Shop reads the catalog for public pages.
type Shop struct {
	store   catalog.Store
	objects storage.Store
	now     func() time.Time
}

func New(store catalog.Store, objects storage.Store) *Shop {
	return &Shop{store: store, objects: objects, now: time.Now}
}

type Header struct {
	catalog.Header
	IconURL string
	LogoURL string
}

type Banner struct {
	BigImageURL   string
	SmallImageURL string
}

// Card is a product as shown on the page.
type Card struct {
	ID          int64
	Name        string
	Price       string
	FinalPrice  string
	Off         int
	Installment string
	ImageURL    string
	OrderURL    string
}

// Section is a category with its products in display order.
type Section struct {
	Category catalog.Category
	Products []Card
}

type Footer struct {
	catalog.Footer
	Phone string
}

// Page is everything the storefront template renders.
type Page struct {
	Header   Header
	Banners  []Banner
	Sections []Section
	Footer   Footer
}

// Page builds the storefront: header, banners, categories with their
// products, then footer. Categories without products are left out.
func (s *Shop) Page(ctx context.Context) (Page, error) {
	var page Page

	h, err := s.store.Header(ctx)
	if err != nil {
		return Page{}, notFound(err, "header")
	}
	page.Header = Header{
		Header:  h,
		IconURL: storage.SignedURL(ctx, s.objects, h.Icon),
		LogoURL: storage.SignedURL(ctx, s.objects, h.Logo),
	}

	banners, err := s.store.Propagandas(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("list propagandas: %w", err)
	}
	for _, b := range banners {
		page.Banners = append(page.Banners, Banner{
			BigImageURL:   storage.SignedURL(ctx, s.objects, b.BigImage),
			SmallImageURL: storage.SignedURL(ctx, s.objects, b.SmallImage),
		})
	}

	categories, err := s.store.Categories(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("list categories: %w", err)
	}
	products, err := s.store.Products(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("list products: %w", err)
	}
	byCategory := make(map[int64][]Card, len(categories))
	for _, p := range products {
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], s.card(ctx, p))
	}
	for _, c := range categories {
		if cards := byCategory[c.ID]; len(cards) > 0 {
			page.Sections = append(page.Sections, Section{Category: c, Products: cards})
		}
	}

	f, err := s.store.Footer(ctx)
	if err != nil {
		return Page{}, notFound(err, "footer")
	}
	page.Footer = Footer{Footer: f, Phone: Phone(f.Whatsapp)}
	return page, nil
}

func (s *Shop) card(ctx context.Context, p catalog.Product) Card {
	return Card{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		FinalPrice:  Discounted(p.Price, p.Off),
		Off:         p.Off,
		Installment: p.Installment,
		ImageURL:    storage.SignedURL(ctx, s.objects, p.Image),
		OrderURL:    "/api/order/" + strconv.FormatInt(p.ID, 10),
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.NotFound(what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
