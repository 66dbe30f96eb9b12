// Package money normalizes the product prices that arrive from forms and
// legacy order records, where the same value may be stored as a number or a
// numeric string.
package money

import "github.com/shopspring/decimal"

// AmountFromString parses a price stored as text. Unparseable input yields 0
// so that downstream guards treat the order as having an invalid price
// instead of erroring.
func AmountFromString(raw string) float64 {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// Cents converts a dollar amount to integer cents for Stripe unit_amount.
func Cents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Format renders an amount with exactly two decimals, the form PayPal's
// Orders API requires for currency values.
func Format(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
