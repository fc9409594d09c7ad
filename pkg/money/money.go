// Package money provides helpers for fixed-point monetary amounts.
// All amounts carry two fraction digits and comparisons are exact decimal
// comparisons, never floating-point tolerance.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is the zero monetary amount.
var Zero = decimal.Zero

// Parse converts a decimal string into an amount rounded to two fraction
// digits. Returns an error for empty or non-numeric input.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("money: empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	return d.Round(2), nil
}

// FromFloat converts a float into an amount rounded to two fraction digits.
// Rounding happens once at the boundary; everything downstream stays decimal.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

// Format renders an amount with exactly two fraction digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// IsPositive reports whether the amount is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.Cmp(decimal.Zero) > 0
}

// LTE reports whether a <= b using exact decimal comparison.
func LTE(a, b decimal.Decimal) bool {
	return a.Cmp(b) <= 0
}
