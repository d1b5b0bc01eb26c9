package guard

import (
	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/datetime"
	"github.com/iwvelando/finance-guard/pkg/formula"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// DayCountInput names a period and the convention it is measured under.
// Dates are YYYY-MM-DD.
type DayCountInput struct {
	StartDate  string `mapstructure:"start_date"`
	EndDate    string `mapstructure:"end_date"`
	Convention string `mapstructure:"convention"`
}

// CalendarGuard verifies day count claims.
type CalendarGuard struct {
	base
}

// NewCalendarGuard creates a calendar guard.
func NewCalendarGuard(logger *zap.Logger, policy Policy) *CalendarGuard {
	return &CalendarGuard{base: newBase(logger, policy)}
}

// VerifyDayCountFraction checks a year fraction claim.
func (g *CalendarGuard) VerifyDayCountFraction(in DayCountInput, claim string) (Result, error) {
	return g.verify(check{
		op:    CalendarDayCountFraction,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			start, end, err := in.dates()
			if err != nil {
				return formula.Result{}, err
			}
			return formula.DayCountFraction(start, end, in.Convention)
		},
	})
}

// VerifyAccrualDays checks a day count claim. Counts must match exactly.
func (g *CalendarGuard) VerifyAccrualDays(in DayCountInput, claim string) (Result, error) {
	return g.verify(check{
		op:    CalendarAccrualDays,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			start, end, err := in.dates()
			if err != nil {
				return formula.Result{}, err
			}
			return formula.AccrualDays(start, end, in.Convention)
		},
	})
}

func (in DayCountInput) dates() (start, end civil.Date, err error) {
	start, err = datetime.ParseDate(in.StartDate)
	if err != nil {
		return start, end, errors.Mark(errors.Wrap(err, "start_date"), formula.ErrInvalidInput)
	}
	end, err = datetime.ParseDate(in.EndDate)
	if err != nil {
		return start, end, errors.Mark(errors.Wrap(err, "end_date"), formula.ErrInvalidInput)
	}
	return start, end, nil
}
