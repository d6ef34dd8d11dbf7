package storefront

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money formats a decimal price the Brazilian way: R$ 1.234,56.
// Unparseable input is returned unchanged.
func Money(price string) string {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return price
	}
	return formatBRL(d)
}

// Discounted applies an off percentage to price, rounded to cents.
func Discounted(price string, off int) string {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return price
	}
	if off <= 0 {
		return d.StringFixed(2)
	}
	keep := hundred.Sub(decimal.NewFromInt(int64(off)))
	return d.Mul(keep).Div(hundred).Round(2).StringFixed(2)
}

func formatBRL(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "R$ " + b.String() + "," + cents
}

// Phone formats 13 WhatsApp digits as +55 (11) 91234-5678. Anything else is
// returned unchanged.
func Phone(digits string) string {
	if len(digits) != 13 {
		return digits
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return digits
		}
	}
	return "+" + digits[:2] + " (" + digits[2:4] + ") " + digits[4:9] + "-" + digits[9:]
}
