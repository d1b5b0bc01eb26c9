package guard

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/tolerance"
)

// Operation identifies one guard operation as domain.metric.
type Operation string

// Bond operations.
const (
	BondYTM             Operation = "bond.ytm"
	BondDuration        Operation = "bond.duration"
	BondConvexity       Operation = "bond.convexity"
	BondAccruedInterest Operation = "bond.accrued_interest"
	BondDirtyPrice      Operation = "bond.dirty_price"
)

// FX operations.
const (
	FXForwardRate         Operation = "fx.forward_rate"
	FXCrossRate           Operation = "fx.cross_rate"
	FXSwapPoints          Operation = "fx.swap_points"
	FXNDFSettlement       Operation = "fx.ndf_settlement"
	FXCurrencyConversion  Operation = "fx.currency_conversion"
	FXTriangularArbitrage Operation = "fx.triangular_arbitrage"
)

// Risk operations.
const (
	RiskVaR               Operation = "risk.var"
	RiskBeta              Operation = "risk.beta"
	RiskSharpeRatio       Operation = "risk.sharpe_ratio"
	RiskSortinoRatio      Operation = "risk.sortino_ratio"
	RiskMaxDrawdown       Operation = "risk.max_drawdown"
	RiskExpectedShortfall Operation = "risk.expected_shortfall"
	RiskInformationRatio  Operation = "risk.information_ratio"
)

// Compliance, calendar, derivatives and lending operations.
const (
	ComplianceAMLFlag         Operation = "compliance.aml_flag"
	ComplianceRemittanceLimit Operation = "compliance.remittance_limit"
	ComplianceLoanEligibility Operation = "compliance.loan_eligibility"

	CalendarDayCountFraction Operation = "calendar.day_count_fraction"
	CalendarAccrualDays      Operation = "calendar.accrual_days"

	DerivativesOptionPrice   Operation = "derivatives.option_price"
	DerivativesOptionDelta   Operation = "derivatives.option_delta"
	DerivativesPutCallParity Operation = "derivatives.put_call_parity"

	LendingLoanPayment Operation = "lending.loan_payment"
	LendingNPV         Operation = "lending.npv"
)

var (
	moneyCents     = tolerance.Spec{Kind: tolerance.Absolute, Threshold: constants.CurrencyTolerance}
	moneyWithFloor = tolerance.Spec{Kind: tolerance.Absolute, Threshold: constants.CurrencyTolerance, RelativeFloor: constants.CurrencyRelativeFloor}
	exactBool      = tolerance.Spec{Kind: tolerance.ExactBool}
)

var defaultSpecs = map[Operation]tolerance.Spec{
	BondYTM:             {Kind: tolerance.Absolute, Threshold: 0.5},
	BondDuration:        {Kind: tolerance.UnitDistance, Threshold: 0.05},
	BondConvexity:       {Kind: tolerance.RelativePct, Threshold: 0.5},
	BondAccruedInterest: moneyCents,
	BondDirtyPrice:      moneyCents,

	FXForwardRate:         {Kind: tolerance.Pip, Threshold: 5},
	FXCrossRate:           {Kind: tolerance.Pip, Threshold: 5},
	FXSwapPoints:          {Kind: tolerance.Pip, Threshold: 1},
	FXNDFSettlement:       moneyCents,
	FXCurrencyConversion:  moneyWithFloor,
	FXTriangularArbitrage: exactBool,

	RiskVaR:               {Kind: tolerance.RelativePct, Threshold: 1},
	RiskBeta:              {Kind: tolerance.Absolute, Threshold: 0.05},
	RiskSharpeRatio:       {Kind: tolerance.Absolute, Threshold: 0.05},
	RiskSortinoRatio:      {Kind: tolerance.Absolute, Threshold: 0.1},
	RiskMaxDrawdown:       {Kind: tolerance.Absolute, Threshold: 0.5},
	RiskExpectedShortfall: {Kind: tolerance.RelativePct, Threshold: 1},
	RiskInformationRatio:  {Kind: tolerance.Absolute, Threshold: 0.05},

	ComplianceAMLFlag:         exactBool,
	ComplianceRemittanceLimit: exactBool,
	ComplianceLoanEligibility: exactBool,

	CalendarDayCountFraction: {Kind: tolerance.Absolute, Threshold: 0.0001},
	CalendarAccrualDays:      {Kind: tolerance.UnitDistance, Threshold: 0},

	DerivativesOptionPrice:   {Kind: tolerance.RelativePct, Threshold: 1},
	DerivativesOptionDelta:   {Kind: tolerance.Absolute, Threshold: 0.01},
	DerivativesPutCallParity: {Kind: tolerance.RelativePct, Threshold: 1},

	LendingLoanPayment: moneyWithFloor,
	LendingNPV:         moneyWithFloor,
}

// Operations lists every supported operation in sorted order.
func Operations() []Operation {
	ops := make([]Operation, 0, len(defaultSpecs))
	for op := range defaultSpecs {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// IsOperation reports whether op names a supported operation.
func IsOperation(op string) bool {
	_, ok := defaultSpecs[Operation(op)]
	return ok
}

// Policy maps each operation to its tolerance. A Policy is immutable once
// built; guards take it at construction and never change it per call.
type Policy struct {
	specs map[Operation]tolerance.Spec
}

// DefaultPolicy returns the built-in tolerance table.
func DefaultPolicy() Policy {
	specs := make(map[Operation]tolerance.Spec, len(defaultSpecs))
	for op, spec := range defaultSpecs {
		specs[op] = spec
	}
	return Policy{specs: specs}
}

// NewPolicy returns the default policy with thresholds replaced for the
// given operations.
func NewPolicy(thresholds map[Operation]float64) (Policy, error) {
	p := DefaultPolicy()
	for op, threshold := range thresholds {
		spec, ok := p.specs[op]
		if !ok {
			return Policy{}, errors.Newf("unknown operation %q", op)
		}
		spec = spec.WithThreshold(threshold)
		if err := spec.Validate(); err != nil {
			return Policy{}, errors.Wrapf(err, "tolerance for %s", op)
		}
		p.specs[op] = spec
	}
	return p, nil
}

// Spec returns the tolerance for op. An unset Policy falls back to the defaults.
func (p Policy) Spec(op Operation) tolerance.Spec {
	if p.specs == nil {
		return defaultSpecs[op]
	}
	return p.specs[op]
}
