package statement

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatAmount renders amount in the conventions of an ISO 4217 currency,
// e.g. "$1,234.50" or "1.234,50 €". Unknown codes get two decimals and the
// code as suffix.
func FormatAmount(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		s := amount.StringFixed(2)
		if code != "" {
			s += " " + code
		}

		return s
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0)

	return cur.Formatter().Format(minor.IntPart())
}

// FormatMeasure renders a goods balance with its unit, trimming trailing
// zeros.
func FormatMeasure(value decimal.Decimal, unit string) string {
	if unit == "" {
		return value.String()
	}

	return value.String() + " " + unit
}
