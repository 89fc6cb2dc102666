// Package money holds the decimal helpers used for cart and order totals.
package money

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits carried by displayed and submitted amounts.
const Places int32 = 2

// LineTotal returns price multiplied by quantity without intermediate rounding.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Round rounds half away from zero to two places.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Places)
}

// Number renders an amount as a JSON number with exactly two fractional digits.
func Number(amount decimal.Decimal) json.Number {
	return json.Number(amount.StringFixed(Places))
}
