package formula

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/loans"
)

// LoanPayment returns the level amortizing payment per period.
func LoanPayment(principal, annualRate float64, periodsPerYear, periods int) (Result, error) {
	if err := requirePositive("principal", principal); err != nil {
		return Result{}, err
	}
	if err := requireNonNegative("annual rate", annualRate); err != nil {
		return Result{}, err
	}
	if periodsPerYear <= 0 || periods <= 0 {
		return Result{}, invalid("payment periods must be positive, got %d per year and %d total", periodsPerYear, periods)
	}
	if periods > constants.MaxPeriods {
		return Result{}, invalid("payment periods must not exceed %d, got %d", constants.MaxPeriods, periods)
	}

	schedule, err := loans.NewScheduleGenerator(nil).GenerateSchedule(principal, annualRate, periodsPerYear, periods)
	if err != nil {
		return Result{}, errors.Mark(err, ErrInvalidInput)
	}
	payment := loans.CalculatePayment(principal, 0, annualRate, periodsPerYear, periods)
	return newResult(
		money(decimal.NewFromFloat(payment)),
		"PMT = P × r / (1 - (1+r)^-n)",
		"periodic_rate", annualRate/float64(periodsPerYear),
		"periods", periods,
		"total_interest", cents(loans.TotalInterest(schedule)).String(),
	), nil
}

// NetPresentValue discounts cash flows at a per-period rate, the first at t=0.
func NetPresentValue(rate float64, cashFlows []float64) (Result, error) {
	if len(cashFlows) == 0 {
		return Result{}, invalid("net present value needs at least one cash flow")
	}
	if err := requireFinite("cash flow", cashFlows...); err != nil {
		return Result{}, err
	}
	if err := requireFinite("discount rate", rate); err != nil {
		return Result{}, err
	}
	if rate <= -1 {
		return Result{}, invalid("discount rate must exceed -100%%, got %v", rate)
	}
	return newResult(
		money(decimal.NewFromFloat(loans.NetPresentValue(rate, cashFlows))),
		"NPV = Σ CF_t / (1+r)^t",
		"periods", len(cashFlows),
		"discount_rate", rate,
	), nil
}
