// Package quantity canonicalizes claimed values into typed quantities.
package quantity

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/format"
)

// Kind tags the unit family of a Quantity.
type Kind int

const (
	// Money is a currency amount held as an arbitrary-precision decimal.
	Money Kind = iota + 1
	// Rate is a fractional rate, 0.05 meaning 5%.
	Rate
	// Ratio is a unitless or unit-suffixed number such as a Sharpe ratio or a duration in years.
	Ratio
	// Pips is a count of FX pips.
	Pips
	// Boolean is a yes/no assertion.
	Boolean
)

var kindNames = map[Kind]string{
	Money:   "money",
	Rate:    "rate",
	Ratio:   "ratio",
	Pips:    "pips",
	Boolean: "boolean",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Quantity is an immutable typed value.
type Quantity struct {
	kind  Kind
	money decimal.Decimal
	value float64
	flag  bool
	unit  string
}

// NewMoney wraps a decimal amount.
func NewMoney(amount decimal.Decimal) Quantity {
	return Quantity{kind: Money, money: amount}
}

// NewRate wraps a fractional rate.
func NewRate(rate float64) Quantity {
	return Quantity{kind: Rate, value: rate}
}

// NewRatio wraps a unitless ratio.
func NewRatio(value float64) Quantity {
	return Quantity{kind: Ratio, value: value}
}

// NewRatioUnit wraps a ratio carrying a display unit such as "years".
func NewRatioUnit(value float64, unit string) Quantity {
	return Quantity{kind: Ratio, value: value, unit: unit}
}

// NewPips wraps a pip count.
func NewPips(pips float64) Quantity {
	return Quantity{kind: Pips, value: pips}
}

// NewBool wraps a boolean assertion.
func NewBool(flag bool) Quantity {
	return Quantity{kind: Boolean, flag: flag}
}

// Kind returns the quantity's kind.
func (q Quantity) Kind() Kind { return q.kind }

// Unit returns the display unit of a ratio, or the empty string.
func (q Quantity) Unit() string { return q.unit }

// Decimal returns the exact amount of a money quantity. Other kinds are
// converted from their float value.
func (q Quantity) Decimal() decimal.Decimal {
	if q.kind == Money {
		return q.money
	}
	return decimal.NewFromFloat(q.value)
}

// Float returns the numeric value. Money is converted inexactly and booleans map to 0 or 1.
func (q Quantity) Float() float64 {
	switch q.kind {
	case Money:
		return q.money.InexactFloat64()
	case Boolean:
		if q.flag {
			return 1
		}
		return 0
	}
	return q.value
}

// Bool returns the value of a boolean quantity.
func (q Quantity) Bool() bool { return q.flag }

// IsUnbounded reports whether the quantity is a positive infinite ratio.
func (q Quantity) IsUnbounded() bool {
	return q.kind == Ratio && math.IsInf(q.value, 1)
}

// Format renders the quantity as text that Parse accepts for the same kind.
func (q Quantity) Format() string {
	switch q.kind {
	case Money:
		return format.Currency(q.money)
	case Rate:
		return format.Percent(q.value, 6)
	case Ratio:
		if q.IsUnbounded() {
			return "unbounded"
		}
		if q.unit != "" {
			return format.Number(q.value) + " " + q.unit
		}
		return format.Number(q.value)
	case Pips:
		return format.Number(q.value) + " pips"
	case Boolean:
		if q.flag {
			return "true"
		}
		return "false"
	}
	return ""
}

// String implements fmt.Stringer.
func (q Quantity) String() string { return q.Format() }

// Round returns a money quantity quantized to cents; other kinds are returned unchanged.
func (q Quantity) Round() Quantity {
	if q.kind != Money {
		return q
	}
	return NewMoney(q.money.Round(constants.CurrencyPlaces))
}
