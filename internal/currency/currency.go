// Package currency converts between the primary reporting currency and the
// single supported secondary currency, and parses loosely formatted amounts
// from bank exports.
package currency

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Supported currency codes.
const (
	GBP = "GBP"
	AED = "AED"
)

// DefaultRate is the number of AED per GBP used when none is configured.
var DefaultRate = decimal.RequireFromString("4.65")

// Normalizer converts amounts with one fixed rate, expressed as units of the
// secondary currency per unit of the primary currency. It is stateless and
// total over non-negative amounts.
type Normalizer struct {
	Primary   string
	Secondary string
	Rate      decimal.Decimal
}

// NewNormalizer returns a GBP/AED normalizer. A non-positive rate falls back
// to DefaultRate.
func NewNormalizer(rate decimal.Decimal) Normalizer {
	if !rate.IsPositive() {
		rate = DefaultRate
	}
	return Normalizer{Primary: GBP, Secondary: AED, Rate: rate}
}

// ToSecondary converts a primary-currency amount to the secondary currency.
func (n Normalizer) ToSecondary(primary decimal.Decimal) decimal.Decimal {
	return primary.Mul(n.rate())
}

// ToPrimary converts a secondary-currency amount to the primary currency.
func (n Normalizer) ToPrimary(secondary decimal.Decimal) decimal.Decimal {
	return secondary.Div(n.rate())
}

// Convert moves amount from currency `from` into the other supported currency.
// Amounts already in the target currency are returned unchanged.
func (n Normalizer) Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	switch {
	case from == to:
		return amount
	case from == n.Primary && to == n.Secondary:
		return n.ToSecondary(amount)
	case from == n.Secondary && to == n.Primary:
		return n.ToPrimary(amount)
	default:
		return amount
	}
}

func (n Normalizer) rate() decimal.Decimal {
	if !n.Rate.IsPositive() {
		return DefaultRate
	}
	return n.Rate
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseLooseAmount strips every character that is not a digit, minus sign or
// decimal point and parses the rest. Empty or unparsable input yields zero.
func ParseLooseAmount(s string) decimal.Decimal {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round2 rounds to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders an amount with two decimals and a symbol or code.
func Format(amount decimal.Decimal, code string) string {
	fixed := amount.StringFixed(2)
	switch strings.ToUpper(code) {
	case GBP:
		if amount.IsNegative() {
			return "-£" + amount.Abs().StringFixed(2)
		}
		return "£" + fixed
	case "":
		return fixed
	default:
		return fmt.Sprintf("%s %s", strings.ToUpper(code), fixed)
	}
}
