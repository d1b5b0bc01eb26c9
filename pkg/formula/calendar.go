package formula

import (
	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"

	"github.com/iwvelando/finance-guard/pkg/datetime"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// DayCountFraction returns the year fraction between two dates under a day count convention.
func DayCountFraction(start, end civil.Date, convention string) (Result, error) {
	c, days, err := dayCount(start, end, convention)
	if err != nil {
		return Result{}, err
	}
	fraction, err := datetime.YearFraction(c, start, end)
	if err != nil {
		return Result{}, errors.Mark(err, ErrInvalidInput)
	}
	return newResult(
		quantity.NewRatio(fraction),
		"Year fraction = day count / year basis ("+string(c)+")",
		"convention", string(c),
		"day_count", days,
	), nil
}

// AccrualDays returns the number of accrual days between two dates under a convention.
func AccrualDays(start, end civil.Date, convention string) (Result, error) {
	c, days, err := dayCount(start, end, convention)
	if err != nil {
		return Result{}, err
	}
	return newResult(
		quantity.NewRatioUnit(float64(days), "days"),
		"Accrual days per "+string(c),
		"convention", string(c),
		"start", start.String(),
		"end", end.String(),
	), nil
}

func dayCount(start, end civil.Date, convention string) (datetime.Convention, int, error) {
	if !start.IsValid() || !end.IsValid() {
		return "", 0, invalid("invalid accrual dates %s to %s", start, end)
	}
	if end.Before(start) {
		return "", 0, invalid("accrual end %s precedes start %s", end, start)
	}
	c, err := datetime.ParseConvention(convention)
	if err != nil {
		return "", 0, errors.Mark(err, ErrInvalidInput)
	}
	days, err := datetime.DayCount(c, start, end)
	if err != nil {
		return "", 0, errors.Mark(err, ErrInvalidInput)
	}
	return c, days, nil
}
