package guard

import (
	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/formula"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// ForwardRateInput holds covered interest parity inputs.
type ForwardRateInput struct {
	Spot          float64 `mapstructure:"spot_rate"`
	DomesticRate  float64 `mapstructure:"domestic_rate"`
	ForeignRate   float64 `mapstructure:"foreign_rate"`
	Days          int     `mapstructure:"days"`
	DayCountBasis int     `mapstructure:"day_count"`
}

// CrossRateInput holds the two legs of a cross. Pair codes only label the formula.
type CrossRateInput struct {
	RateAB float64 `mapstructure:"rate_a_b"`
	RateBC float64 `mapstructure:"rate_b_c"`
	PairA  string  `mapstructure:"pair_a"`
	PairB  string  `mapstructure:"pair_b"`
	PairC  string  `mapstructure:"pair_c"`
}

// SwapPointsInput holds a spot and forward quote.
type SwapPointsInput struct {
	Spot    float64 `mapstructure:"spot_rate"`
	Forward float64 `mapstructure:"forward_rate"`
}

// NDFInput describes a non-deliverable forward at fixing.
type NDFInput struct {
	Notional     float64 `mapstructure:"notional"`
	ContractRate float64 `mapstructure:"contract_rate"`
	FixingRate   float64 `mapstructure:"fixing_rate"`
}

// ConversionInput converts an amount at a direct quote.
type ConversionInput struct {
	Amount float64 `mapstructure:"amount"`
	Rate   float64 `mapstructure:"rate"`
	From   string  `mapstructure:"from_currency"`
	To     string  `mapstructure:"to_currency"`
}

// TriangularInput holds the three legs of a currency loop.
type TriangularInput struct {
	RateAB float64 `mapstructure:"rate_ab"`
	RateBC float64 `mapstructure:"rate_bc"`
	RateCA float64 `mapstructure:"rate_ca"`
}

// FXGuard verifies foreign exchange claims. Rates are compared in pips.
type FXGuard struct {
	base
}

// NewFXGuard creates an FX guard.
func NewFXGuard(logger *zap.Logger, policy Policy) *FXGuard {
	return &FXGuard{base: newBase(logger, policy)}
}

// VerifyForwardRate checks a forward outright claim.
func (g *FXGuard) VerifyForwardRate(in ForwardRateInput, claim string) (Result, error) {
	return g.verify(check{
		op:    FXForwardRate,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			return formula.ForwardRate(in.Spot, in.DomesticRate, in.ForeignRate, in.Days,
				withDefault(in.DayCountBasis, constants.DefaultDayCountBasis))
		},
	})
}

// VerifyCrossRate checks a triangulated cross rate claim.
func (g *FXGuard) VerifyCrossRate(in CrossRateInput, claim string) (Result, error) {
	a, b, c := orLabel(in.PairA, "A"), orLabel(in.PairB, "B"), orLabel(in.PairC, "C")
	return g.verify(check{
		op:    FXCrossRate,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			r, err := formula.CrossRate(in.RateAB, in.RateBC)
			if err != nil {
				return r, err
			}
			r.Formula = a + "/" + c + " = (" + a + "/" + b + ") × (" + b + "/" + c + ")"
			return r, nil
		},
	})
}

// VerifySwapPoints checks a swap points claim in pips.
func (g *FXGuard) VerifySwapPoints(in SwapPointsInput, claim string) (Result, error) {
	return g.verify(check{
		op:    FXSwapPoints,
		claim: claim,
		kind:  quantity.Pips,
		compute: func() (formula.Result, error) {
			return formula.SwapPoints(in.Spot, in.Forward)
		},
	})
}

// VerifyNDFSettlement checks an NDF settlement amount.
func (g *FXGuard) VerifyNDFSettlement(in NDFInput, claim string) (Result, error) {
	return g.verify(check{
		op:    FXNDFSettlement,
		claim: claim,
		kind:  quantity.Money,
		compute: func() (formula.Result, error) {
			return formula.NDFSettlement(in.Notional, in.ContractRate, in.FixingRate)
		},
	})
}

// VerifyCurrencyConversion checks a converted amount.
func (g *FXGuard) VerifyCurrencyConversion(in ConversionInput, claim string) (Result, error) {
	from, to := orLabel(in.From, "USD"), orLabel(in.To, "EUR")
	return g.verify(check{
		op:    FXCurrencyConversion,
		claim: claim,
		kind:  quantity.Money,
		compute: func() (formula.Result, error) {
			r, err := formula.CurrencyConversion(in.Amount, in.Rate)
			if err != nil {
				return r, err
			}
			r.Formula = to + " = " + from + " Amount × Rate"
			return r, nil
		},
	})
}

// VerifyTriangularArbitrage checks a claim that an arbitrage loop exists.
func (g *FXGuard) VerifyTriangularArbitrage(in TriangularInput, claim string) (Result, error) {
	return g.verify(check{
		op:    FXTriangularArbitrage,
		claim: claim,
		kind:  quantity.Boolean,
		compute: func() (formula.Result, error) {
			return formula.TriangularArbitrage(in.RateAB, in.RateBC, in.RateCA)
		},
		mismatch: "incorrect arbitrage assessment",
	})
}

func orLabel(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
