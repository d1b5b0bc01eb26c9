// Package tolerance decides whether a claimed quantity agrees with an
// authoritative one under a per-operation rule.
package tolerance

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/format"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// Kind names an agreement rule.
type Kind string

const (
	// RelativePct compares |a - c| / |a| × 100 against the threshold.
	RelativePct Kind = "relative_pct"
	// Absolute compares |a - c| in natural units: currency units for money,
	// percentage points for rates, raw units otherwise.
	Absolute Kind = "absolute"
	// Pip compares the distance in pips.
	Pip Kind = "pip"
	// UnitDistance compares |a - c| in the quantity's display unit, e.g. years.
	UnitDistance Kind = "unit_distance"
	// ExactBool requires boolean equality.
	ExactBool Kind = "exact_bool"
)

// ErrKindMismatch is returned when the quantities or the rule do not fit together.
var ErrKindMismatch = errors.New("quantity kind mismatch")

// Spec is an agreement rule and its threshold. RelativeFloor widens an
// Absolute threshold to RelativeFloor × |authoritative| when that is larger.
type Spec struct {
	Kind          Kind    `json:"kind" yaml:"kind" mapstructure:"kind"`
	Threshold     float64 `json:"threshold" yaml:"threshold" mapstructure:"threshold"`
	RelativeFloor float64 `json:"relative_floor,omitempty" yaml:"relative_floor,omitempty" mapstructure:"relative_floor"`
}

// Validate checks the rule kind and that thresholds are finite and non-negative.
func (s Spec) Validate() error {
	switch s.Kind {
	case RelativePct, Absolute, Pip, UnitDistance, ExactBool:
	default:
		return errors.Newf("unknown tolerance kind %q", s.Kind)
	}
	for _, v := range []float64{s.Threshold, s.RelativeFloor} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return errors.Newf("tolerance thresholds must be finite and non-negative, got %v", v)
		}
	}
	return nil
}

// WithThreshold returns a copy of s with a new threshold.
func (s Spec) WithThreshold(threshold float64) Spec {
	s.Threshold = threshold
	return s
}

// String renders the rule for result details.
func (s Spec) String() string {
	switch s.Kind {
	case RelativePct:
		return fmt.Sprintf("%s ≤ %s%%", s.Kind, format.Number(s.Threshold))
	case ExactBool:
		return string(s.Kind)
	}
	if s.RelativeFloor > 0 {
		return fmt.Sprintf("%s ≤ max(%s, %s × value)", s.Kind, format.Number(s.Threshold), format.Number(s.RelativeFloor))
	}
	return fmt.Sprintf("%s ≤ %s", s.Kind, format.Number(s.Threshold))
}

// Outcome is the verdict of one comparison. Difference is empty when verified.
type Outcome struct {
	Verified   bool
	Difference string
}

var (
	hundred      = decimal.NewFromInt(100)
	standardPip  = decimal.NewFromFloat(constants.StandardPipSize)
	largePip     = decimal.NewFromFloat(constants.LargeQuotePipSize)
	largeQuote   = decimal.NewFromFloat(constants.LargeQuoteThreshold)
	unboundedMin = constants.UnboundedRatioFloor
)

// Evaluate compares a claimed quantity to the authoritative one under spec.
// Lowering a threshold never turns an unverified outcome into a verified one.
func Evaluate(authoritative, claimed quantity.Quantity, spec Spec) (Outcome, error) {
	if err := spec.Validate(); err != nil {
		return Outcome{}, err
	}
	if authoritative.Kind() != claimed.Kind() {
		return Outcome{}, errors.Mark(
			errors.Newf("cannot compare %s claim with %s value", claimed.Kind(), authoritative.Kind()),
			ErrKindMismatch)
	}
	if (spec.Kind == ExactBool) != (authoritative.Kind() == quantity.Boolean) {
		return Outcome{}, errors.Mark(
			errors.Newf("tolerance %s does not apply to %s values", spec.Kind, authoritative.Kind()),
			ErrKindMismatch)
	}
	if spec.Kind == Pip && authoritative.Kind() != quantity.Ratio && authoritative.Kind() != quantity.Pips {
		return Outcome{}, errors.Mark(
			errors.Newf("pip tolerance does not apply to %s values", authoritative.Kind()),
			ErrKindMismatch)
	}

	if spec.Kind == ExactBool {
		if authoritative.Bool() == claimed.Bool() {
			return Outcome{Verified: true}, nil
		}
		return Outcome{Difference: fmt.Sprintf("incorrect assessment: claimed %s, computed %s",
			claimed.Format(), authoritative.Format())}, nil
	}

	if authoritative.IsUnbounded() {
		if claimed.IsUnbounded() || claimed.Float() >= unboundedMin {
			return Outcome{Verified: true}, nil
		}
		return Outcome{Difference: fmt.Sprintf("claim %s is below %s for an unbounded ratio",
			claimed.Format(), format.Number(unboundedMin))}, nil
	}
	if claimed.IsUnbounded() {
		return Outcome{Difference: "claimed unbounded, computed " + authoritative.Format()}, nil
	}

	a := authoritative.Decimal()
	diff := a.Sub(claimed.Decimal()).Abs()
	threshold := decimal.NewFromFloat(spec.Threshold)

	switch spec.Kind {
	case RelativePct:
		if a.IsZero() {
			if diff.IsZero() {
				return Outcome{Verified: true}, nil
			}
			return Outcome{Difference: naturalDifference(authoritative, diff) + " from zero"}, nil
		}
		pct := diff.Div(a.Abs()).Mul(hundred)
		if pct.LessThanOrEqual(threshold) {
			return Outcome{Verified: true}, nil
		}
		return Outcome{Difference: fmt.Sprintf("%s (%s%%)", naturalDifference(authoritative, diff), pct.StringFixed(2))}, nil

	case Absolute:
		limit := decimal.Max(threshold, decimal.NewFromFloat(spec.RelativeFloor).Mul(a.Abs()))
		measured := diff
		if authoritative.Kind() == quantity.Rate {
			measured = diff.Mul(hundred)
		}
		if measured.LessThanOrEqual(limit) {
			return Outcome{Verified: true}, nil
		}
		return Outcome{Difference: naturalDifference(authoritative, diff)}, nil

	case Pip:
		pips := diff
		if authoritative.Kind() == quantity.Ratio {
			pips = diff.Div(PipSize(a))
		}
		if pips.LessThanOrEqual(threshold) {
			return Outcome{Verified: true}, nil
		}
		return Outcome{Difference: format.Pips(pips.InexactFloat64())}, nil

	case UnitDistance:
		if diff.LessThanOrEqual(threshold) {
			return Outcome{Verified: true}, nil
		}
		return Outcome{Difference: naturalDifference(authoritative, diff)}, nil
	}
	return Outcome{}, errors.Newf("unknown tolerance kind %q", spec.Kind)
}

// PipSize returns the pip for a quote: 0.01 for JPY-style quotes of ten or
// more, 0.0001 otherwise.
func PipSize(quote decimal.Decimal) decimal.Decimal {
	if quote.Abs().GreaterThanOrEqual(largeQuote) {
		return largePip
	}
	return standardPip
}

func naturalDifference(q quantity.Quantity, diff decimal.Decimal) string {
	switch q.Kind() {
	case quantity.Money:
		return format.Currency(diff)
	case quantity.Rate:
		return format.PercentagePoints(diff.InexactFloat64())
	case quantity.Pips:
		return format.Pips(diff.InexactFloat64())
	}
	if q.Unit() != "" {
		return format.Fixed(diff.InexactFloat64(), 4) + " " + q.Unit()
	}
	return format.Fixed(diff.InexactFloat64(), 4)
}
