// Package core provides money parsing and handling utilities.
//
// Amounts are shopspring decimals end to end. They keep full precision
// through aggregation and are only fixed to two places when formatted for
// documents.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a positive monetary amount.
//
// A leading currency symbol and thousands separators are ignored:
//
//	ParseAmount("12.34")     -> 12.34
//	ParseAmount("$1,234.50") -> 1234.5
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, NewValidationError("amount", "Amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("amount", "Amount must be a decimal number")
	}
	if !d.IsPositive() {
		return decimal.Zero, NewValidationError("amount", "Amount must be greater than 0")
	}
	return d, nil
}

// Percentage returns part/whole*100 rounded to two places, half away from
// zero. A zero whole yields zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// Average returns total/count at full precision, or zero for no items.
func Average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}

// FormatMoney renders an amount with two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
