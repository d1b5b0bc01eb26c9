package guard

import (
	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/formula"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// LoanPaymentInput describes an amortizing loan.
type LoanPaymentInput struct {
	Principal      float64 `mapstructure:"principal"`
	AnnualRate     float64 `mapstructure:"annual_rate"`
	PeriodsPerYear int     `mapstructure:"periods_per_year"`
	Periods        int     `mapstructure:"periods"`
}

// NPVInput holds a discount rate and cash flows starting at t=0.
type NPVInput struct {
	Rate      float64   `mapstructure:"rate"`
	CashFlows []float64 `mapstructure:"cash_flows"`
}

// LendingGuard verifies loan and cash flow claims.
type LendingGuard struct {
	base
}

// NewLendingGuard creates a lending guard.
func NewLendingGuard(logger *zap.Logger, policy Policy) *LendingGuard {
	return &LendingGuard{base: newBase(logger, policy)}
}

// VerifyLoanPayment checks a periodic payment claim. Payments default to monthly.
func (g *LendingGuard) VerifyLoanPayment(in LoanPaymentInput, claim string) (Result, error) {
	return g.verify(check{
		op:    LendingLoanPayment,
		claim: claim,
		kind:  quantity.Money,
		compute: func() (formula.Result, error) {
			return formula.LoanPayment(in.Principal, in.AnnualRate,
				withDefault(in.PeriodsPerYear, constants.MonthsPerYear), in.Periods)
		},
	})
}

// VerifyNPV checks a net present value claim.
func (g *LendingGuard) VerifyNPV(in NPVInput, claim string) (Result, error) {
	return g.verify(check{
		op:    LendingNPV,
		claim: claim,
		kind:  quantity.Money,
		compute: func() (formula.Result, error) {
			return formula.NetPresentValue(in.Rate, in.CashFlows)
		},
	})
}
