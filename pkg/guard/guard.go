package guard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/format"
	"github.com/iwvelando/finance-guard/pkg/formula"
	"github.com/iwvelando/finance-guard/pkg/mathutil"
	"github.com/iwvelando/finance-guard/pkg/quantity"
	"github.com/iwvelando/finance-guard/pkg/tolerance"
)

const displayPlaces = 6

// base carries what every domain guard shares: a logger and an immutable policy.
type base struct {
	logger *zap.Logger
	policy Policy
}

func newBase(logger *zap.Logger, policy Policy) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{logger: logger, policy: policy}
}

// check describes one verification for base.verify.
type check struct {
	op      Operation
	claim   string
	kind    quantity.Kind
	compute func() (formula.Result, error)
	// normalize adjusts the parsed claim before comparison, e.g. to drop a sign.
	normalize func(quantity.Quantity) quantity.Quantity
	// mismatch names the assessment in the difference text when a boolean
	// claim disagrees.
	mismatch string
}

// verify runs parse, compute, compare and assemble for one operation.
func (b base) verify(c check) (Result, error) {
	claimed, err := quantity.Parse(c.kind, c.claim)
	if err != nil {
		b.logger.Debug("malformed claim",
			zap.String("op", "guard.verify"),
			zap.String("operation", string(c.op)),
			zap.String("claim", c.claim),
			zap.Error(err),
		)
		return Result{}, errors.Wrapf(err, "%s", c.op)
	}
	if c.normalize != nil {
		claimed = c.normalize(claimed)
	}

	computed, err := c.compute()
	if err != nil {
		return Result{}, errors.Wrapf(err, "%s", c.op)
	}
	authoritative := computed.Value
	if claimed.Kind() == quantity.Ratio && claimed.Unit() == "" && authoritative.Unit() != "" {
		claimed = quantity.NewRatioUnit(claimed.Float(), authoritative.Unit())
	}

	spec := b.policy.Spec(c.op)
	outcome, err := tolerance.Evaluate(authoritative, claimed, spec)
	if err != nil {
		return Result{}, errors.Wrapf(err, "%s", c.op)
	}
	if !outcome.Verified && c.mismatch != "" {
		outcome.Difference = c.mismatch + ": " + strings.TrimPrefix(outcome.Difference, "incorrect assessment: ")
	}

	details := orderedmap.New[string, string]()
	if computed.Intermediates != nil {
		for pair := computed.Intermediates.Oldest(); pair != nil; pair = pair.Next() {
			details.Set(pair.Key, detailString(pair.Value))
		}
	}
	details.Set("tolerance", spec.String())

	result := Result{
		Operation:          c.op,
		Verified:           outcome.Verified,
		ClaimedValue:       display(claimed),
		AuthoritativeValue: display(authoritative),
		Difference:         outcome.Difference,
		FormulaUsed:        computed.Formula,
		Confidence:         constants.Confidence,
		Details:            details,
	}

	if !result.Verified {
		b.logger.Debug("claim disagrees with computed value",
			zap.String("op", "guard.verify"),
			zap.String("operation", string(c.op)),
			zap.String("claimed", result.ClaimedValue),
			zap.String("authoritative", result.AuthoritativeValue),
			zap.String("difference", result.Difference),
		)
	}
	return result, nil
}

// display renders a quantity for a Result in its natural unit.
func display(q quantity.Quantity) string {
	switch q.Kind() {
	case quantity.Money:
		return format.Currency(q.Decimal())
	case quantity.Rate:
		return format.Percent(q.Float(), 4)
	case quantity.Ratio:
		if q.IsUnbounded() {
			return "unbounded"
		}
		s := format.Number(mathutil.RoundTo(q.Float(), displayPlaces))
		if q.Unit() != "" {
			s += " " + q.Unit()
		}
		return s
	case quantity.Pips:
		return format.Pips(q.Float())
	}
	return q.Format()
}

func detailString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return format.Number(x)
		}
		return format.Number(mathutil.RoundTo(x, displayPlaces))
	}
	return fmt.Sprint(v)
}

// withDefault returns v, or fallback when v is zero.
func withDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
