// Package money converts between wire-format decimal strings and the
// integer cents used everywhere inside BillMap. Amounts never touch
// float64; parsing and rendering go through shopspring/decimal so
// "100.50" round-trips exactly.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for strings that are not decimal numbers
// or carry more than two fraction digits.
var ErrInvalidAmount = errors.New("invalid amount: expected a decimal number with at most two fraction digits")

// ToCents parses a decimal string like "100.50" into integer cents.
func ToCents(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidAmount
	}

	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, ErrInvalidAmount
	}

	big := cents.BigInt()
	if !big.IsInt64() {
		return 0, ErrInvalidAmount
	}

	return big.Int64(), nil
}

// FromCents renders integer cents as a decimal string with exactly two
// fraction digits, e.g. 10050 -> "100.50".
func FromCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
