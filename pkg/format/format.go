// Package format renders verified quantities in their natural units.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/finance-guard/pkg/constants"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount decimal.Decimal) string {
	formatted := groupThousands(amount)
	if amount.IsNegative() {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + groupThousands(amount)
}

// Percent renders a fractional rate as percent with the given precision (0.0566 -> "5.66%").
func Percent(rate float64, places int) string {
	return strconv.FormatFloat(rate*constants.PercentageMultiplier, 'f', places, 64) + "%"
}

// PercentagePoints renders a fractional rate difference as percentage points.
func PercentagePoints(delta float64) string {
	return strconv.FormatFloat(math.Abs(delta)*constants.PercentageMultiplier, 'f', 4, 64) + " pp"
}

// Pips renders a pip count to one decimal place.
func Pips(pips float64) string {
	return strconv.FormatFloat(pips, 'f', 1, 64) + " pips"
}

// Years renders a duration in years.
func Years(years float64) string {
	return strconv.FormatFloat(years, 'f', 4, 64) + " years"
}

// Number renders a plain float without trailing zeros.
func Number(value float64) string {
	switch {
	case math.IsInf(value, 1):
		return "inf"
	case math.IsInf(value, -1):
		return "-inf"
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Fixed renders a float with a fixed number of decimal places.
func Fixed(value float64, places int) string {
	return strconv.FormatFloat(value, 'f', places, 64)
}

// groupThousands renders |amount| to cents with locale digit grouping.
func groupThousands(amount decimal.Decimal) string {
	whole, frac, _ := strings.Cut(amount.Abs().StringFixed(constants.CurrencyPlaces), ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = message.NewPrinter(language.English).Sprintf("%d", n)
	}
	return whole + "." + frac
}
