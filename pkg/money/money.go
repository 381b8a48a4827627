package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Annual converts a monthly amount to its annual equivalent.
func Annual(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(decimal.NewFromInt(12))
}

// Min returns the smaller of two amounts.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two amounts.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// ClampZero floors an amount at zero.
func ClampZero(a decimal.Decimal) decimal.Decimal {
	if a.IsNegative() {
		return decimal.Zero
	}
	return a
}

// Format renders an amount with thousands separators and two decimals,
// e.g. 1234567.5 -> "1,234,567.50".
func Format(a decimal.Decimal) string {
	s := a.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// FormatPercent renders a fractional rate as a percentage with two decimals,
// e.g. 0.04 -> "4.00%".
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
