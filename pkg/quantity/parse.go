package quantity

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// ErrMalformedClaim marks claim text that cannot be read as the expected kind.
var ErrMalformedClaim = errors.New("malformed claim")

var (
	currencySymbols = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "₹", "")
	groupSeparators = strings.NewReplacer(",", "", "_", "", " ", "", " ", "")
	isoPrefix       = regexp.MustCompile(`^[A-Z]{3}\s*`)
	isoSuffix       = regexp.MustCompile(`\s*[A-Z]{3}$`)
	decimalNumber   = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// ratio suffixes, longest first so "years" is not cut to "s".
var ratioSuffixes = []string{"years²", "years^2", "years", "year", "yrs", "yr", "days", "day", "pips", "pip", "pts", "x"}

var pipSuffixes = []string{"pips", "pip", "pts"}

var unboundedTokens = map[string]bool{
	"inf":       true,
	"+inf":      true,
	"infinity":  true,
	"∞":         true,
	"unbounded": true,
}

var truthTokens = map[string]bool{
	"true": true, "yes": true, "y": true, "1": true,
	"exists": true, "flagged": true, "compliant": true, "approved": true,
	"false": false, "no": false, "n": false, "0": false,
	"none": false, "not flagged": false, "non-compliant": false, "rejected": false,
}

// Parse reads text as a quantity of the given kind.
func Parse(kind Kind, text string) (Quantity, error) {
	switch kind {
	case Money:
		return ParseMoney(text)
	case Rate:
		return ParseRate(text)
	case Ratio:
		return ParseRatio(text)
	case Pips:
		return ParsePips(text)
	case Boolean:
		return ParseBool(text)
	}
	return Quantity{}, malformed(kind, text, "unknown quantity kind")
}

// ParseMoney reads a currency amount such as "$1,234.56", "USD 12" or "12.00 EUR".
func ParseMoney(text string) (Quantity, error) {
	s := strings.TrimSpace(text)
	s = isoPrefix.ReplaceAllString(s, "")
	s = isoSuffix.ReplaceAllString(s, "")
	s = currencySymbols.Replace(s)
	s = groupSeparators.Replace(s)
	if s == "" {
		return Quantity{}, malformed(Money, text, "no digits")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, errors.Mark(errors.Wrapf(err, "cannot parse %q as money", text), ErrMalformedClaim)
	}
	return NewMoney(amount), nil
}

// ParseRate reads a rate. "5.6%" and a bare "5.6" both mean 0.056; a bare
// number below one in magnitude is already fractional.
func ParseRate(text string) (Quantity, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	percent := false
	for _, suffix := range []string{"%", "percent", "pct"} {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			percent = true
			break
		}
	}
	v, err := parseFinite(Rate, text, s)
	if err != nil {
		return Quantity{}, err
	}
	if percent || math.Abs(v) >= 1 {
		v /= 100
	}
	return NewRate(v), nil
}

// ParseRatio reads a unitless or unit-suffixed number. Infinity tokens such
// as "unbounded" parse to +Inf.
func ParseRatio(text string) (Quantity, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if unboundedTokens[s] {
		return NewRatio(math.Inf(1)), nil
	}
	unit := ""
	for _, suffix := range ratioSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			switch {
			case strings.HasPrefix(suffix, "years²"), strings.HasPrefix(suffix, "years^"):
				unit = "years²"
			case strings.HasPrefix(suffix, "y"):
				unit = "years"
			case strings.HasPrefix(suffix, "d"):
				unit = "days"
			}
			break
		}
	}
	v, err := parseFinite(Ratio, text, s)
	if err != nil {
		return Quantity{}, err
	}
	return NewRatioUnit(v, unit), nil
}

// ParsePips reads a pip count such as "3.5 pips".
func ParsePips(text string) (Quantity, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	for _, suffix := range pipSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	v, err := parseFinite(Pips, text, s)
	if err != nil {
		return Quantity{}, err
	}
	return NewPips(v), nil
}

// ParseBool matches text exactly against the enumerated truth tokens.
func ParseBool(text string) (Quantity, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	flag, ok := truthTokens[s]
	if !ok {
		return Quantity{}, malformed(Boolean, text, "not a recognised truth token")
	}
	return NewBool(flag), nil
}

// parseFinite accepts plain decimal notation only; strconv's hex, NaN and
// Inf spellings are rejected.
func parseFinite(kind Kind, original, s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, malformed(kind, original, "no digits")
	}
	if !decimalNumber.MatchString(s) {
		return 0, malformed(kind, original, "not a decimal number")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "cannot parse %q as %s", original, kind), ErrMalformedClaim)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, malformed(kind, original, "not a finite number")
	}
	return v, nil
}

func malformed(kind Kind, text, reason string) error {
	return errors.Mark(errors.Newf("cannot parse %q as %s: %s", text, kind, reason), ErrMalformedClaim)
}
