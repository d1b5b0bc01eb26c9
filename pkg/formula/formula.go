// Package formula computes authoritative values for financial metrics.
//
// Every function is pure: inputs are plain values, the output is a Result
// carrying the computed Quantity, a citation of the formula applied, and the
// intermediate values used to get there, in evaluation order.
package formula

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/mathutil"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// ErrInvalidInput marks domain inputs outside a formula's domain.
var ErrInvalidInput = errors.New("invalid formula input")

// Result is the authoritative outcome of a formula.
type Result struct {
	Value         quantity.Quantity
	Formula       string
	Intermediates *orderedmap.OrderedMap[string, any]
}

// newResult builds a Result from alternating key/value intermediate pairs.
func newResult(value quantity.Quantity, citation string, kv ...any) Result {
	intermediates := orderedmap.New[string, any]()
	for i := 0; i+1 < len(kv); i += 2 {
		intermediates.Set(kv[i].(string), kv[i+1])
	}
	return Result{Value: value, Formula: citation, Intermediates: intermediates}
}

func invalid(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidInput)
}

func requireFinite(name string, values ...float64) error {
	for _, v := range values {
		if !mathutil.IsFinite(v) {
			return invalid("%s must be finite, got %v", name, v)
		}
	}
	return nil
}

func requirePositive(name string, v float64) error {
	if err := requireFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return invalid("%s must be positive, got %v", name, v)
	}
	return nil
}

func requireNonNegative(name string, v float64) error {
	if err := requireFinite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return invalid("%s must not be negative, got %v", name, v)
	}
	return nil
}

// cents converts a float to a decimal rounded half away from zero to cents.
func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(constants.CurrencyPlaces)
}

func money(v decimal.Decimal) quantity.Quantity {
	return quantity.NewMoney(v.Round(constants.CurrencyPlaces))
}
