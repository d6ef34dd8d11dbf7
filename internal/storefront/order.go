package storefront

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/catalog"
)

// Placeholder in a product message that is replaced by the product name.
const Placeholder = "###"

// OrderLink builds the wa.me link that opens a chat with the product's
// number and its message prefilled.
func OrderLink(p catalog.Product) string {
	text := strings.ReplaceAll(p.Message, Placeholder, p.Name)
	return "https://wa.me/" + p.Whatsapp + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// Order records an access to the product's order link and returns the link.
func (s *Shop) Order(ctx context.Context, id int64) (string, error) {
	p, err := s.store.Product(ctx, id)
	if err != nil {
		return "", notFound(err, "product")
	}
	if err := s.store.RecordClick(ctx, p.ID, s.now().UTC()); err != nil {
		return "", fmt.Errorf("record click on product %d: %w", p.ID, err)
	}
	return OrderLink(p), nil
}
