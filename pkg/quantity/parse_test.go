package quantity

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Dollar sign", "$7.50", "7.5"},
		{"Thousands separators", "$1,234,567.89", "1234567.89"},
		{"Euro symbol", "€12", "12"},
		{"ISO prefix", "USD 12.00", "12"},
		{"ISO suffix", "12.00 EUR", "12"},
		{"Negative", "-$2,500.10", "-2500.1"},
		{"Underscore grouping", "1_000", "1000"},
		{"Rupee", "₹ 2,50,000", "250000"},
		{"Surrounding whitespace", "  42.1 ", "42.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseMoney(tt.input)
			require.NoError(t, err)
			assert.Equal(t, Money, q.Kind())
			assert.True(t, q.Decimal().Equal(decimal.RequireFromString(tt.expected)),
				"got %s, expected %s", q.Decimal(), tt.expected)
		})
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"Percent sign", "5.6%", 0.056},
		{"Percent with space", "5.6 %", 0.056},
		{"Bare percent", "5.6", 0.056},
		{"Bare fraction", "0.056", 0.056},
		{"Negative percent", "-25%", -0.25},
		{"Negative bare percent", "-25", -0.25},
		{"Small percent sign", "0.5%", 0.005},
		{"Word suffix", "7 percent", 0.07},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseRate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, Rate, q.Kind())
			assert.InDelta(t, tt.expected, q.Float(), 1e-12)
		})
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		unit     string
	}{
		{"Plain", "1.25", 1.25, ""},
		{"Years", "7.8 years", 7.8, "years"},
		{"Short years", "7.8yrs", 7.8, "years"},
		{"Squared years", "64.2 years²", 64.2, "years²"},
		{"Points", "12 pts", 12, ""},
		{"Days", "182 days", 182, "days"},
		{"Multiple", "1.1x", 1.1, ""},
		{"Negative", "-0.4", -0.4, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseRatio(tt.input)
			require.NoError(t, err)
			assert.Equal(t, Ratio, q.Kind())
			assert.InDelta(t, tt.expected, q.Float(), 1e-12)
			assert.Equal(t, tt.unit, q.Unit())
		})
	}
}

func TestParseRatioUnbounded(t *testing.T) {
	for _, token := range []string{"inf", "Infinity", "∞", "unbounded", " UNBOUNDED "} {
		t.Run(token, func(t *testing.T) {
			q, err := ParseRatio(token)
			require.NoError(t, err)
			assert.True(t, q.IsUnbounded())
			assert.True(t, math.IsInf(q.Float(), 1))
		})
	}
}

func TestParsePips(t *testing.T) {
	q, err := ParsePips("3.5 pips")
	require.NoError(t, err)
	assert.Equal(t, Pips, q.Kind())
	assert.InDelta(t, 3.5, q.Float(), 1e-12)

	q, err = ParsePips("-108.4")
	require.NoError(t, err)
	assert.InDelta(t, -108.4, q.Float(), 1e-12)
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"Yes", true},
		{"exists", true},
		{"FLAGGED", true},
		{"compliant", true},
		{"false", false},
		{" no ", false},
		{"none", false},
		{"not flagged", false},
		{"non-compliant", false},
		{"rejected", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := ParseBool(tt.input)
			require.NoError(t, err)
			assert.Equal(t, Boolean, q.Kind())
			assert.Equal(t, tt.expected, q.Bool())
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		input string
	}{
		{"Empty money", Money, ""},
		{"Only symbol", Money, "$"},
		{"Words as money", Money, "about twelve dollars"},
		{"Empty rate", Rate, "%"},
		{"Words as rate", Rate, "roughly five"},
		{"NaN rate", Rate, "NaN"},
		{"Infinite rate", Rate, "Inf%"},
		{"NaN ratio", Ratio, "nan"},
		{"Words as ratio", Ratio, "high"},
		{"Words as pips", Pips, "a few pips"},
		{"Maybe bool", Boolean, "maybe"},
		{"Partial bool", Boolean, "yes, flagged"},
		{"Hex float ratio", Ratio, "0x1p-2"},
		{"Hex float multiple", Ratio, "0x1p-2x"},
		{"Hex rate", Rate, "0x10%"},
		{"Hex pips", Pips, "0x1A pips"},
		{"Underscored hex", Ratio, "0x_1p2"},
		{"Unknown kind", Kind(99), "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.kind, tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedClaim), "error %v should be marked malformed", err)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "money", Money.String())
	assert.Equal(t, "pips", Pips.String())
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,234.50", NewMoney(decimal.RequireFromString("1234.5")).Format())
	assert.Equal(t, "5.661700%", NewRate(0.056617).Format())
	assert.Equal(t, "7.8 years", NewRatioUnit(7.8, "years").Format())
	assert.Equal(t, "unbounded", NewRatio(math.Inf(1)).Format())
	assert.Equal(t, "3.5 pips", NewPips(3.5).Format())
	assert.Equal(t, "false", NewBool(false).Format())
}

func TestFormatParseRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("money round-trips within half a cent", prop.ForAll(
		func(v float64) bool {
			q := NewMoney(decimal.NewFromFloat(v))
			back, err := Parse(Money, q.Format())
			if err != nil {
				return false
			}
			return back.Decimal().Sub(q.Decimal()).Abs().LessThanOrEqual(decimal.RequireFromString("0.005"))
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("rates round-trip within 5e-7", prop.ForAll(
		func(v float64) bool {
			back, err := Parse(Rate, NewRate(v).Format())
			return err == nil && math.Abs(back.Float()-v) <= 5e-7
		},
		gen.Float64Range(-5, 5),
	))

	properties.Property("ratios round-trip within 5e-5", prop.ForAll(
		func(v float64, years bool) bool {
			q := NewRatio(v)
			if years {
				q = NewRatioUnit(v, "years")
			}
			back, err := Parse(Ratio, q.Format())
			return err == nil && math.Abs(back.Float()-v) <= 5e-5 && back.Unit() == q.Unit()
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Bool(),
	))

	properties.Property("pips round-trip within 5e-5", prop.ForAll(
		func(v float64) bool {
			back, err := Parse(Pips, NewPips(v).Format())
			return err == nil && math.Abs(back.Float()-v) <= 5e-5
		},
		gen.Float64Range(-1e5, 1e5),
	))

	properties.Property("booleans round-trip exactly", prop.ForAll(
		func(b bool) bool {
			back, err := Parse(Boolean, NewBool(b).Format())
			return err == nil && back.Bool() == b
		},
		gen.Bool(),
	))

	properties.TestingRun(t)
}
