package utils

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places every charge is rounded to.
const MoneyPlaces = 2

// Subtotal returns unitPrice x quantity rounded to two places.
func Subtotal(unitPrice decimal.Decimal, quantity int32) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt32(quantity)).Round(MoneyPlaces)
}

// FormatRupiah renders an amount the Indonesian way, e.g. "Rp 1.234.567,50".
func FormatRupiah(amount decimal.Decimal) string {
	amount = amount.Round(MoneyPlaces)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	whole := amount.Truncate(0)
	cents := amount.Sub(whole).Shift(MoneyPlaces).IntPart()
	grouped := strings.ReplaceAll(humanize.Comma(whole.IntPart()), ",", ".")
	return fmt.Sprintf("%sRp %s,%02d", sign, grouped, cents)
}
