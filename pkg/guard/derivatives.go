package guard

import (
	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/formula"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// OptionInput describes a European option.
type OptionInput struct {
	Type         string  `mapstructure:"option_type"`
	Spot         float64 `mapstructure:"spot"`
	Strike       float64 `mapstructure:"strike"`
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
	Volatility   float64 `mapstructure:"volatility"`
	Years        float64 `mapstructure:"time_to_expiry"`
}

func (in OptionInput) option() (formula.Option, error) {
	typ, err := formula.ParseOptionType(in.Type)
	if err != nil {
		return formula.Option{}, err
	}
	return formula.Option{
		Type:         typ,
		Spot:         in.Spot,
		Strike:       in.Strike,
		RiskFreeRate: in.RiskFreeRate,
		Volatility:   in.Volatility,
		Years:        in.Years,
	}, nil
}

// ParityInput holds the call price and terms a put is derived from.
type ParityInput struct {
	CallPrice    float64 `mapstructure:"call_price"`
	Spot         float64 `mapstructure:"spot"`
	Strike       float64 `mapstructure:"strike"`
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
	Years        float64 `mapstructure:"time_to_expiry"`
}

// DerivativesGuard verifies option pricing claims.
type DerivativesGuard struct {
	base
}

// NewDerivativesGuard creates a derivatives guard.
func NewDerivativesGuard(logger *zap.Logger, policy Policy) *DerivativesGuard {
	return &DerivativesGuard{base: newBase(logger, policy)}
}

// VerifyOptionPrice checks a Black-Scholes premium claim.
func (g *DerivativesGuard) VerifyOptionPrice(in OptionInput, claim string) (Result, error) {
	return g.verify(check{
		op:    DerivativesOptionPrice,
		claim: claim,
		kind:  quantity.Money,
		compute: func() (formula.Result, error) {
			o, err := in.option()
			if err != nil {
				return formula.Result{}, err
			}
			return formula.BlackScholes(o)
		},
	})
}

// VerifyOptionDelta checks a delta claim.
func (g *DerivativesGuard) VerifyOptionDelta(in OptionInput, claim string) (Result, error) {
	return g.verify(check{
		op:    DerivativesOptionDelta,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			o, err := in.option()
			if err != nil {
				return formula.Result{}, err
			}
			return formula.OptionDelta(o)
		},
	})
}

// VerifyPutCallParity checks a put premium claimed from a call premium.
func (g *DerivativesGuard) VerifyPutCallParity(in ParityInput, claim string) (Result, error) {
	return g.verify(check{
		op:    DerivativesPutCallParity,
		claim: claim,
		kind:  quantity.Money,
		compute: func() (formula.Result, error) {
			return formula.PutFromCallParity(in.CallPrice, in.Spot, in.Strike, in.RiskFreeRate, in.Years)
		},
	})
}
