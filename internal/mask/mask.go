// Package mask validates admin input before anything is written.
//
// Every editable catalog.Field has exactly one checker. A checker returns the
// normalized value to store, or a *catalog.Error with status 400 naming the field.
package mask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"storefront/internal/catalog"
)

// Lookup is the read access checkers need for foreign-key and uniqueness checks.
type Lookup interface {
	Category(ctx context.Context, id int64) (catalog.Category, error)
	CategoryByName(ctx context.Context, name string) (catalog.Category, error)
}

type checker func(ctx context.Context, l Lookup, f catalog.Field, row int64, v string) (string, error)

var (
	hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	digits13 = regexp.MustCompile(`^[0-9]{13}$`)
)

// maxPrice is the largest value a DECIMAL(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

var checkers = map[catalog.Field]checker{
	catalog.HeaderTitle:       length(1, 50),
	catalog.HeaderDescription: length(1, 300),
	catalog.HeaderColor:       pattern(hexColor, "must be a hex color like #1a2b3c"),

	catalog.FooterTitle:             length(1, 50),
	catalog.FooterText:              length(1, 500),
	catalog.FooterWhatsapp:          pattern(digits13, "must have exactly 13 digits"),
	catalog.FooterFacebook:          length(1, 50),
	catalog.FooterInstagram:         length(1, 50),
	catalog.FooterLocation:          length(1, 200),
	catalog.FooterStoreInfo:         length(1, 100),
	catalog.FooterCompleteStoreInfo: length(1, 300),

	catalog.CategoryName: all(length(1, 30), uniqueCategory),

	catalog.ProductCategory:    categoryExists,
	catalog.ProductName:        length(1, 50),
	catalog.ProductPrice:       price,
	catalog.ProductOff:         intRange(0, 100),
	catalog.ProductInstallment: length(0, 50),
	catalog.ProductWhatsapp:    pattern(digits13, "must have exactly 13 digits"),
	catalog.ProductMessage:     length(1, 500),
}

// Check validates a text value for f on a new row and returns the value to store.
func Check(ctx context.Context, l Lookup, f catalog.Field, value string) (string, error) {
	return CheckRow(ctx, l, f, 0, value)
}

// CheckRow validates a text value for f on the existing row id. Uniqueness
// checks ignore the row itself.
func CheckRow(ctx context.Context, l Lookup, f catalog.Field, id int64, value string) (string, error) {
	c, ok := checkers[f]
	if !ok {
		return "", catalog.Invalid("%s cannot be edited as text", f)
	}
	return c(ctx, l, f, id, value)
}

// String decodes a raw JSON body value that must be a string.
func String(f catalog.Field, raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", catalog.Invalid("%s is required", f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", catalog.Invalid("%s must be a string", f)
	}
	return s, nil
}

func length(min, max int) checker {
	return func(_ context.Context, _ Lookup, f catalog.Field, _ int64, v string) (string, error) {
		v = strings.TrimSpace(v)
		n := utf8.RuneCountInString(v)
		if n < min || n > max {
			if min == 0 {
				return "", catalog.Invalid("%s must have at most %d characters", f, max)
			}
			return "", catalog.Invalid("%s must have between %d and %d characters", f, min, max)
		}
		return v, nil
	}
}

func pattern(re *regexp.Regexp, msg string) checker {
	return func(_ context.Context, _ Lookup, f catalog.Field, _ int64, v string) (string, error) {
		v = strings.TrimSpace(v)
		if !re.MatchString(v) {
			return "", catalog.Invalid("%s %s", f, msg)
		}
		return v, nil
	}
}

func intRange(min, max int) checker {
	return func(_ context.Context, _ Lookup, f catalog.Field, _ int64, v string) (string, error) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return "", catalog.Invalid("%s must be an integer", f)
		}
		if n < min || n > max {
			return "", catalog.Invalid("%s must be between %d and %d", f, min, max)
		}
		return strconv.Itoa(n), nil
	}
}

func price(_ context.Context, _ Lookup, f catalog.Field, _ int64, v string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return "", catalog.Invalid("%s must be a number", f)
	}
	if d.IsNegative() {
		return "", catalog.Invalid("%s must not be negative", f)
	}
	if d.GreaterThan(maxPrice) {
		return "", catalog.Invalid("%s must be at most %s", f, maxPrice.StringFixed(2))
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return "", catalog.Invalid("%s must have at most 2 decimal places", f)
	}
	return d.StringFixed(2), nil
}

func categoryExists(ctx context.Context, l Lookup, f catalog.Field, _ int64, v string) (string, error) {
	id, err := catalog.ParseID(v)
	if err != nil {
		return "", catalog.Invalid("%s must be a category id", f)
	}
	if _, err := l.Category(ctx, int64(id)); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return "", catalog.Invalid("%s does not exist", f)
		}
		return "", fmt.Errorf("lookup category %d: %w", id, err)
	}
	return strconv.FormatInt(int64(id), 10), nil
}

func uniqueCategory(ctx context.Context, l Lookup, _ catalog.Field, row int64, v string) (string, error) {
	c, err := l.CategoryByName(ctx, v)
	switch {
	case err == nil && c.ID == row:
		return v, nil
	case err == nil:
		return "", catalog.Invalid("category already exists")
	case errors.Is(err, catalog.ErrNotFound):
		return v, nil
	default:
		return "", fmt.Errorf("lookup category %q: %w", v, err)
	}
}

func all(cs ...checker) checker {
	return func(ctx context.Context, l Lookup, f catalog.Field, row int64, v string) (string, error) {
		var err error
		for _, c := range cs {
			if v, err = c(ctx, l, f, row, v); err != nil {
				return "", err
			}
		}
		return v, nil
	}
}

// ImagesContext checks that a banner upload names exactly one big and one small image.
func ImagesContext(values []string) error {
	if len(values) != 2 {
		return catalog.Invalid("imagesContext must list bigImage and smallImage")
	}
	a, b := values[0], values[1]
	if (a == "bigImage" && b == "smallImage") || (a == "smallImage" && b == "bigImage") {
		return nil
	}
	return catalog.Invalid("imagesContext must list bigImage and smallImage")
}

// IDSet checks that submitted is a permutation of current.
func IDSet(t catalog.Table, current, submitted []int64) error {
	if len(current) != len(submitted) {
		return catalog.Invalid("%s ids do not match the existing %s", t, t)
	}
	a := sortedCopy(current)
	b := sortedCopy(submitted)
	for i := range a {
		if a[i] != b[i] {
			return catalog.Invalid("%s ids do not match the existing %s", t, t)
		}
	}
	return nil
}

func sortedCopy(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Username checks a new admin username.
func Username(v string) error {
	if n := utf8.RuneCountInString(v); n < 4 || n > 30 || strings.TrimSpace(v) != v {
		return catalog.Invalid("username must have between 4 and 30 characters and no surrounding spaces")
	}
	return nil
}

// Password checks a new admin password.
func Password(v string) error {
	if n := utf8.RuneCountInString(v); n < 8 || n > 64 {
		return catalog.Invalid("password must have between 8 and 64 characters")
	}
	return nil
}
