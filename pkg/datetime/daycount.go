// Package datetime provides calendar date utilities for day count conventions.
package datetime

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
)

// ErrUnknownConvention marks day count convention names that are not recognized.
var ErrUnknownConvention = errors.New("unknown day count convention")

// Convention names a day count convention.
type Convention string

const (
	// Thirty360 is the US 30/360 bond basis.
	Thirty360 Convention = "30/360"
	// Actual360 counts actual days over a 360-day year.
	Actual360 Convention = "ACT/360"
	// Actual365 counts actual days over a 365-day year.
	Actual365 Convention = "ACT/365"
	// ActualActual is the ISDA actual/actual convention, splitting periods at year boundaries.
	ActualActual Convention = "ACT/ACT"
)

var conventionAliases = map[string]Convention{
	"30/360":        Thirty360,
	"30U/360":       Thirty360,
	"BOND":          Thirty360,
	"ACT/360":       Actual360,
	"ACTUAL/360":    Actual360,
	"ACT/365":       Actual365,
	"ACT/365F":      Actual365,
	"ACTUAL/365":    Actual365,
	"ACT/ACT":       ActualActual,
	"ACTUAL/ACTUAL": ActualActual,
	"ACT/ACT ISDA":  ActualActual,
}

// ParseConvention resolves a convention name, case-insensitively.
func ParseConvention(name string) (Convention, error) {
	c, ok := conventionAliases[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return "", errors.Mark(errors.Newf("unknown day count convention %q", name), ErrUnknownConvention)
	}
	return c, nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, errors.Wrapf(err, "invalid date %q", s)
	}
	return d, nil
}

// MustParseDate parses a date string and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(s string) civil.Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DayCount returns the number of days from start to end under the convention.
// The count is negative when end precedes start.
func DayCount(c Convention, start, end civil.Date) (int, error) {
	switch c {
	case Thirty360:
		return thirty360Days(start, end), nil
	case Actual360, Actual365, ActualActual:
		return end.DaysSince(start), nil
	}
	return 0, errors.Mark(errors.Newf("unknown day count convention %q", c), ErrUnknownConvention)
}

// YearFraction returns the accrual fraction of a year between start and end.
func YearFraction(c Convention, start, end civil.Date) (float64, error) {
	switch c {
	case Thirty360:
		return float64(thirty360Days(start, end)) / 360, nil
	case Actual360:
		return float64(end.DaysSince(start)) / 360, nil
	case Actual365:
		return float64(end.DaysSince(start)) / 365, nil
	case ActualActual:
		if end.Before(start) {
			f, err := YearFraction(c, end, start)
			return -f, err
		}
		return actualActual(start, end), nil
	}
	return 0, errors.Mark(errors.Newf("unknown day count convention %q", c), ErrUnknownConvention)
}

// IsLeapYear reports whether year has 366 days.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// thirty360Days applies the US 30/360 rule including the February month-end adjustments.
func thirty360Days(start, end civil.Date) int {
	d1, d2 := start.Day, end.Day
	if isLastDayOfFebruary(start) {
		if isLastDayOfFebruary(end) {
			d2 = 30
		}
		d1 = 30
	}
	if d2 == 31 && d1 >= 30 {
		d2 = 30
	}
	if d1 == 31 {
		d1 = 30
	}
	return 360*(end.Year-start.Year) + 30*(int(end.Month)-int(start.Month)) + (d2 - d1)
}

func isLastDayOfFebruary(d civil.Date) bool {
	return d.Month == time.February && d.AddDays(1).Month == time.March
}

func actualActual(start, end civil.Date) float64 {
	fraction := 0.0
	for year := start.Year; year <= end.Year; year++ {
		segStart := civil.Date{Year: year, Month: time.January, Day: 1}
		if segStart.Before(start) {
			segStart = start
		}
		segEnd := civil.Date{Year: year + 1, Month: time.January, Day: 1}
		if end.Before(segEnd) {
			segEnd = end
		}
		daysInYear := 365.0
		if IsLeapYear(year) {
			daysInYear = 366
		}
		fraction += float64(segEnd.DaysSince(segStart)) / daysInYear
	}
	return fraction
}
