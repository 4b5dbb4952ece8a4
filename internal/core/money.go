// Package core defines the domain model shared by every layer: months,
// money, categories and the ledger entities.
//
// Monetary amounts are exact decimals with two fraction digits. Positive
// amounts are deposits, negative amounts withdrawals. All aggregation is
// done on decimals in Go; amounts are stored as canonical strings and never
// pass through floating point.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a signed decimal amount and normalizes it to two
// fraction digits, rounding half away from zero on the third.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// FormatAmount renders an amount in its canonical two-decimal form, the
// representation used at rest and on the wire.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// SignedSplitAmount converts a split's stored unsigned magnitude into its
// signed ledger contribution: abs(split) carrying the parent's sign.
func SignedSplitAmount(split, parent decimal.Decimal) decimal.Decimal {
	if parent.Sign() < 0 {
		return split.Abs().Neg()
	}
	return split.Abs()
}

// SplitEven divides an amount in two to the cent. The odd cent, if any,
// goes to the second share.
func SplitEven(total decimal.Decimal) (first, second decimal.Decimal) {
	cents := total.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
	half := cents / 2
	first = decimal.New(half, -2)
	second = decimal.New(cents-half, -2)
	return first, second
}
