package guard

import (
	"strings"

	"github.com/cockroachdb/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/formula"
	"github.com/iwvelando/finance-guard/pkg/loans"
	"github.com/iwvelando/finance-guard/pkg/quantity"
	"github.com/iwvelando/finance-guard/pkg/rules"
)

// AMLInput describes a single transaction screened for reporting.
type AMLInput struct {
	Amount      float64 `mapstructure:"amount"`
	CountryCode string  `mapstructure:"country_code"`
}

// RemittanceInput describes an outward remittance against the annual cap.
type RemittanceInput struct {
	Amount     float64 `mapstructure:"amount"`
	YearToDate float64 `mapstructure:"year_to_date"`
}

// LoanEligibilityInput describes a loan application.
type LoanEligibilityInput struct {
	Principal           float64 `mapstructure:"principal"`
	AnnualRate          float64 `mapstructure:"annual_rate"`
	TermMonths          int     `mapstructure:"term_months"`
	MonthlyIncome       float64 `mapstructure:"monthly_income"`
	ExistingObligations float64 `mapstructure:"existing_obligations"`
}

// ComplianceGuard verifies regulatory assessments against a Rulebook.
type ComplianceGuard struct {
	base
	rulebook *rules.Rulebook
}

// NewComplianceGuard creates a compliance guard. A nil rulebook is replaced by
// one built from the default limits.
func NewComplianceGuard(logger *zap.Logger, policy Policy, rulebook *rules.Rulebook) (*ComplianceGuard, error) {
	if rulebook == nil {
		rb, err := rules.New(logger, rules.DefaultLimits(), nil)
		if err != nil {
			return nil, err
		}
		rulebook = rb
	}
	return &ComplianceGuard{base: newBase(logger, policy), rulebook: rulebook}, nil
}

// VerifyAMLFlag checks a claim that a transaction must be reported.
func (g *ComplianceGuard) VerifyAMLFlag(in AMLInput, claim string) (Result, error) {
	country := strings.ToUpper(strings.TrimSpace(in.CountryCode))
	return g.verify(check{
		op:    ComplianceAMLFlag,
		claim: claim,
		kind:  quantity.Boolean,
		compute: func() (formula.Result, error) {
			if in.Amount < 0 {
				return formula.Result{}, errors.Mark(errors.Newf("amount must be non-negative, got %v", in.Amount), formula.ErrInvalidInput)
			}
			return g.evaluate(rules.AMLFlag, map[string]any{
				"amount":       in.Amount,
				"country_code": country,
			}, "amount", in.Amount, "country_code", country, "ctr_threshold", g.rulebook.Limits().CTRThreshold)
		},
		mismatch: "incorrect compliance assessment",
	})
}

// VerifyRemittanceLimit checks a claim that a remittance stays within the
// annual cap.
func (g *ComplianceGuard) VerifyRemittanceLimit(in RemittanceInput, claim string) (Result, error) {
	return g.verify(check{
		op:    ComplianceRemittanceLimit,
		claim: claim,
		kind:  quantity.Boolean,
		compute: func() (formula.Result, error) {
			if in.Amount < 0 || in.YearToDate < 0 {
				return formula.Result{}, errors.Mark(errors.New("remittance amounts must be non-negative"), formula.ErrInvalidInput)
			}
			limit := g.rulebook.Limits().RemittanceLimit
			return g.evaluate(rules.RemittanceLimit, map[string]any{
				"amount":       in.Amount,
				"year_to_date": in.YearToDate,
			}, "annual_total", in.YearToDate+in.Amount, "remittance_limit", limit, "headroom", limit-in.YearToDate)
		},
		mismatch: "incorrect compliance assessment",
	})
}

// VerifyLoanEligibility checks a claim that a loan application passes the
// pricing floor and affordability limit.
func (g *ComplianceGuard) VerifyLoanEligibility(in LoanEligibilityInput, claim string) (Result, error) {
	return g.verify(check{
		op:    ComplianceLoanEligibility,
		claim: claim,
		kind:  quantity.Boolean,
		compute: func() (formula.Result, error) {
			if in.Principal <= 0 || in.TermMonths <= 0 || in.MonthlyIncome <= 0 {
				return formula.Result{}, errors.Mark(
					errors.New("principal, term_months and monthly_income must be positive"), formula.ErrInvalidInput)
			}
			payment := loans.CalculateMonthlyPayment(in.Principal, 0, in.AnnualRate, in.TermMonths)
			foir := (in.ExistingObligations + payment) / in.MonthlyIncome
			return g.evaluate(rules.LoanEligibility, map[string]any{
				"annual_rate":          in.AnnualRate,
				"monthly_payment":      payment,
				"monthly_income":       in.MonthlyIncome,
				"existing_obligations": in.ExistingObligations,
			}, "monthly_payment", payment, "foir", foir, "max_foir", g.rulebook.Limits().MaxFOIR,
				"rate_floor", g.rulebook.Limits().RateFloor)
		},
		mismatch: "incorrect compliance assessment",
	})
}

// evaluate runs a rule and wraps its verdict as a formula result citing the
// rule's expression.
func (g *ComplianceGuard) evaluate(rule string, input map[string]any, kv ...any) (formula.Result, error) {
	verdict, err := g.rulebook.Evaluate(rule, input)
	if err != nil {
		return formula.Result{}, err
	}
	intermediates := orderedmap.New[string, any]()
	for i := 0; i+1 < len(kv); i += 2 {
		intermediates.Set(kv[i].(string), kv[i+1])
	}
	intermediates.Set("rule", rule)
	return formula.Result{
		Value:         quantity.NewBool(verdict),
		Formula:       g.rulebook.Expression(rule),
		Intermediates: intermediates,
	}, nil
}
