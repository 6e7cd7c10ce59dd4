package bridge

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Digits is the quote precision the broker accepts for symbol.
func Digits(symbol string) int32 {
	switch {
	case strings.HasPrefix(symbol, "XAU"):
		return 2
	case strings.Contains(symbol, "JPY"):
		return 3
	default:
		return 5
	}
}

// Quantize rounds price half away from zero to the symbol's digits.
func Quantize(symbol string, price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Round(Digits(symbol))
}
