// Package loans provides amortizing loan and discounting calculations.
package loans

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/constants"
)

// Payment holds the values for a given payment.
type Payment struct {
	Period             int
	Payment            float64
	Principal          float64
	Interest           float64
	RemainingPrincipal float64
}

// CalculatePayment calculates the level payment for a loan using the standard
// amortization formula. annualRate is fractional (0.045 for 4.5%).
func CalculatePayment(principal, downPayment, annualRate float64, periodsPerYear, periods int) float64 {
	if periods <= 0 {
		return 0
	}
	if annualRate == 0 {
		// For zero interest, simply divide the principal by term
		return (principal - downPayment) / float64(periods)
	}

	periodicRate := annualRate / float64(periodsPerYear)
	power := math.Pow(1.00+periodicRate, float64(periods))
	discountFactor := (power - 1.00) / power
	return (principal - downPayment) * periodicRate / discountFactor
}

// CalculateMonthlyPayment is CalculatePayment with monthly periods.
func CalculateMonthlyPayment(principal, downPayment, annualRate float64, termMonths int) float64 {
	return CalculatePayment(principal, downPayment, annualRate, constants.MonthsPerYear, termMonths)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualRate float64, periodsPerYear int) float64 {
	return remainingPrincipal * annualRate / float64(periodsPerYear)
}

// ScheduleGenerator builds amortization schedules.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new schedule generator.
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// GenerateSchedule produces one Payment per period. The final period absorbs
// any residual principal left by floating point drift.
func (g *ScheduleGenerator) GenerateSchedule(principal, annualRate float64, periodsPerYear, periods int) ([]Payment, error) {
	if principal < 0 {
		return nil, fmt.Errorf("principal must be non-negative, got %f", principal)
	}
	if periodsPerYear <= 0 || periods <= 0 {
		return nil, fmt.Errorf("periods must be positive, got %d per year and %d total", periodsPerYear, periods)
	}
	if periods > constants.MaxPeriods {
		return nil, fmt.Errorf("periods must not exceed %d, got %d", constants.MaxPeriods, periods)
	}

	payment := CalculatePayment(principal, 0, annualRate, periodsPerYear, periods)
	balance := principal
	schedule := make([]Payment, 0, periods)

	for period := 1; period <= periods; period++ {
		interest := CalculateInterestPayment(balance, annualRate, periodsPerYear)
		principalPaid := payment - interest
		if period == periods {
			principalPaid = balance
		}
		balance -= principalPaid
		if math.Abs(balance) < constants.CurrencyTolerance/2 {
			balance = 0
		}
		schedule = append(schedule, Payment{
			Period:             period,
			Payment:            principalPaid + interest,
			Principal:          principalPaid,
			Interest:           interest,
			RemainingPrincipal: balance,
		})
	}

	g.logger.Debug("generated amortization schedule",
		zap.String("op", "loans.GenerateSchedule"),
		zap.Float64("principal", principal),
		zap.Float64("payment", payment),
		zap.Int("periods", periods),
	)
	return schedule, nil
}

// TotalInterest sums the interest paid over a schedule.
func TotalInterest(schedule []Payment) float64 {
	total := 0.0
	for _, p := range schedule {
		total += p.Interest
	}
	return total
}

// NetPresentValue discounts cash flows at a per-period rate, the first flow at t=0.
func NetPresentValue(rate float64, cashFlows []float64) float64 {
	npv := 0.0
	for t, cf := range cashFlows {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}
