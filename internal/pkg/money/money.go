// Package money converts between integer cents and decimal amounts.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToDecimal converts cents to a currency amount
func ToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FromDecimal converts a currency amount to cents, rounding half away from zero
func FromDecimal(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// Percent returns pct percent of cents, rounded to the cent
func Percent(cents int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(pct).Div(hundred).Round(0).IntPart()
}

// Format renders cents with two decimals, e.g. 1999 -> "19.99"
func Format(cents int64) string {
	return ToDecimal(cents).StringFixed(2)
}
