// Package money provides fixed-precision helpers for currency amounts.
//
// All amounts in the system are decimal values with minor-unit (cent)
// precision. Arithmetic is done with shopspring/decimal and re-rounded to
// two places whenever a result crosses a package boundary, so sub-cent
// residue can never register as a false nonzero balance.
package money

import "github.com/shopspring/decimal"

// Tolerance is the band within which a balance or sum mismatch is treated
// as exactly zero. It absorbs currency-rounding noise (one minor unit).
var Tolerance = decimal.New(1, -2) // 0.01

// Round rounds an amount to minor-unit precision (2 decimal places).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Cents returns the amount as an integer count of minor units.
// The amount is rounded to minor-unit precision first.
func Cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// FromCents builds an amount from an integer count of minor units.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// WithinTolerance reports whether the amount is within the +-0.01 band of zero.
func WithinTolerance(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Tolerance)
}

// Format renders an amount with exactly two decimal places, e.g. "90.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
