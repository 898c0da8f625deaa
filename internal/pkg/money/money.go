package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseCurrency reads a currency string as an amount in cents: every non-digit is dropped and the
// remaining digits are divided by 100. Strings without digits parse to zero.
func ParseCurrency(value string) decimal.Decimal {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero
	}

	cents, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return cents.Div(hundred)
}

// FormatBRL renders an amount the way pt-BR displays reais, e.g. "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	return sign + "R$ " + grouped.String() + "," + fracPart
}

// FormatRate renders a periodic rate fraction as a percentage with two decimals. Absent rates render as "--%".
func FormatRate(rate *float64) string {
	if rate == nil {
		return "--%"
	}
	return decimal.NewFromFloat(*rate).Mul(hundred).StringFixed(2) + "%"
}
