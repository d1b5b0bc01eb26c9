package formula

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// OptionType is "call" or "put".
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType reads a case-insensitive option type.
func ParseOptionType(s string) (OptionType, error) {
	switch OptionType(strings.ToLower(strings.TrimSpace(s))) {
	case Call:
		return Call, nil
	case Put:
		return Put, nil
	}
	return "", invalid("option type must be call or put, got %q", s)
}

// Option holds the Black-Scholes inputs of a European option.
type Option struct {
	Type         OptionType
	Spot         float64
	Strike       float64
	RiskFreeRate float64
	Volatility   float64
	Years        float64
}

func (o Option) validate() error {
	if o.Type != Call && o.Type != Put {
		return invalid("option type must be call or put, got %q", o.Type)
	}
	if err := requirePositive("spot", o.Spot); err != nil {
		return err
	}
	if err := requirePositive("strike", o.Strike); err != nil {
		return err
	}
	if err := requireFinite("risk-free rate", o.RiskFreeRate); err != nil {
		return err
	}
	if err := requirePositive("volatility", o.Volatility); err != nil {
		return err
	}
	return requirePositive("time to expiry", o.Years)
}

func (o Option) d1d2() (float64, float64) {
	sqrtT := math.Sqrt(o.Years)
	d1 := (math.Log(o.Spot/o.Strike) + (o.RiskFreeRate+o.Volatility*o.Volatility/2)*o.Years) / (o.Volatility * sqrtT)
	return d1, d1 - o.Volatility*sqrtT
}

// NormalCDF is the standard normal cumulative distribution function.
func NormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// BlackScholes prices a European option.
func BlackScholes(o Option) (Result, error) {
	if err := o.validate(); err != nil {
		return Result{}, err
	}
	d1, d2 := o.d1d2()
	discounted := o.Strike * math.Exp(-o.RiskFreeRate*o.Years)
	var price float64
	citation := "C = S·N(d1) - K·e^(-rT)·N(d2)"
	if o.Type == Call {
		price = o.Spot*NormalCDF(d1) - discounted*NormalCDF(d2)
	} else {
		price = discounted*NormalCDF(-d2) - o.Spot*NormalCDF(-d1)
		citation = "P = K·e^(-rT)·N(-d2) - S·N(-d1)"
	}
	return newResult(
		money(decimal.NewFromFloat(price)),
		citation,
		"d1", d1,
		"d2", d2,
		"discounted_strike", discounted,
	), nil
}

// OptionDelta returns ∂V/∂S: N(d1) for a call, N(d1) - 1 for a put.
func OptionDelta(o Option) (Result, error) {
	if err := o.validate(); err != nil {
		return Result{}, err
	}
	d1, _ := o.d1d2()
	delta := NormalCDF(d1)
	citation := "Δ_call = N(d1)"
	if o.Type == Put {
		delta--
		citation = "Δ_put = N(d1) - 1"
	}
	return newResult(
		quantity.NewRatio(delta),
		citation,
		"d1", d1,
	), nil
}

// PutFromCallParity derives the European put price from a call price: P = C - S + K·e^(-rT).
func PutFromCallParity(callPrice, spot, strike, riskFreeRate, years float64) (Result, error) {
	if err := requireNonNegative("call price", callPrice); err != nil {
		return Result{}, err
	}
	if err := requirePositive("spot", spot); err != nil {
		return Result{}, err
	}
	if err := requirePositive("strike", strike); err != nil {
		return Result{}, err
	}
	if err := requireFinite("risk-free rate", riskFreeRate); err != nil {
		return Result{}, err
	}
	if err := requireNonNegative("time to expiry", years); err != nil {
		return Result{}, err
	}
	discounted := strike * math.Exp(-riskFreeRate*years)
	put := callPrice - spot + discounted
	return newResult(
		money(decimal.NewFromFloat(put)),
		"P = C - S + K·e^(-rT)",
		"discounted_strike", discounted,
	), nil
}
