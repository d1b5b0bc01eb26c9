package guard

import (
	"math"

	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/formula"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// VaRInput describes a parametric value-at-risk estimate.
type VaRInput struct {
	PortfolioValue  float64 `mapstructure:"portfolio_value"`
	DailyVolatility float64 `mapstructure:"volatility"`
	Confidence      float64 `mapstructure:"confidence"`
	HoldingDays     int     `mapstructure:"holding_period_days"`
}

// BetaInput holds paired asset and market return series.
type BetaInput struct {
	AssetReturns  []float64 `mapstructure:"asset_returns"`
	MarketReturns []float64 `mapstructure:"market_returns"`
}

// SharpeInput holds annualized return, risk-free rate and volatility.
type SharpeInput struct {
	PortfolioReturn float64 `mapstructure:"portfolio_return"`
	RiskFreeRate    float64 `mapstructure:"risk_free_rate"`
	Volatility      float64 `mapstructure:"volatility"`
}

// SortinoInput holds a return, a target and the periodic returns measured
// against it.
type SortinoInput struct {
	PortfolioReturn float64   `mapstructure:"portfolio_return"`
	TargetReturn    float64   `mapstructure:"target_return"`
	Returns         []float64 `mapstructure:"returns"`
}

// DrawdownInput is a series of portfolio values in time order.
type DrawdownInput struct {
	Values []float64 `mapstructure:"values"`
}

// ExpectedShortfallInput holds a VaR figure and the mean loss beyond it.
type ExpectedShortfallInput struct {
	VaR             float64 `mapstructure:"var_amount"`
	TailLossAverage float64 `mapstructure:"tail_loss_average"`
}

// InformationRatioInput holds active return inputs.
type InformationRatioInput struct {
	PortfolioReturn float64 `mapstructure:"portfolio_return"`
	BenchmarkReturn float64 `mapstructure:"benchmark_return"`
	TrackingError   float64 `mapstructure:"tracking_error"`
}

// RiskGuard verifies portfolio risk metrics.
type RiskGuard struct {
	base
}

// NewRiskGuard creates a risk guard.
func NewRiskGuard(logger *zap.Logger, policy Policy) *RiskGuard {
	return &RiskGuard{base: newBase(logger, policy)}
}

// VerifyVaR checks a value-at-risk amount.
func (g *RiskGuard) VerifyVaR(in VaRInput, claim string) (Result, error) {
	return g.verify(check{
		op:    RiskVaR,
		claim: claim,
		kind:  quantity.Money,
		compute: func() (formula.Result, error) {
			return formula.ParametricVaR(in.PortfolioValue, in.DailyVolatility, in.Confidence, withDefault(in.HoldingDays, 1))
		},
	})
}

// VerifyBeta checks a beta claim.
func (g *RiskGuard) VerifyBeta(in BetaInput, claim string) (Result, error) {
	return g.verify(check{
		op:    RiskBeta,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			return formula.Beta(in.AssetReturns, in.MarketReturns)
		},
	})
}

// VerifySharpeRatio checks a Sharpe ratio claim.
func (g *RiskGuard) VerifySharpeRatio(in SharpeInput, claim string) (Result, error) {
	return g.verify(check{
		op:    RiskSharpeRatio,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			return formula.SharpeRatio(in.PortfolioReturn, in.RiskFreeRate, in.Volatility)
		},
	})
}

// VerifySortinoRatio checks a Sortino ratio claim. With no returns below
// target the ratio is unbounded and any claim of at least 10 is accepted.
func (g *RiskGuard) VerifySortinoRatio(in SortinoInput, claim string) (Result, error) {
	return g.verify(check{
		op:    RiskSortinoRatio,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			return formula.SortinoRatio(in.PortfolioReturn, in.TargetReturn, in.Returns)
		},
	})
}

// VerifyMaxDrawdown checks a maximum drawdown claim. Drawdowns are quoted
// both as -25% and 25%, so the claim's sign is dropped.
func (g *RiskGuard) VerifyMaxDrawdown(in DrawdownInput, claim string) (Result, error) {
	return g.verify(check{
		op:    RiskMaxDrawdown,
		claim: claim,
		kind:  quantity.Rate,
		compute: func() (formula.Result, error) {
			return formula.MaxDrawdown(in.Values)
		},
		normalize: func(q quantity.Quantity) quantity.Quantity {
			return quantity.NewRate(math.Abs(q.Float()))
		},
	})
}

// VerifyExpectedShortfall checks an expected shortfall amount.
func (g *RiskGuard) VerifyExpectedShortfall(in ExpectedShortfallInput, claim string) (Result, error) {
	return g.verify(check{
		op:    RiskExpectedShortfall,
		claim: claim,
		kind:  quantity.Money,
		compute: func() (formula.Result, error) {
			return formula.ExpectedShortfall(in.VaR, in.TailLossAverage)
		},
	})
}

// VerifyInformationRatio checks an information ratio claim.
func (g *RiskGuard) VerifyInformationRatio(in InformationRatioInput, claim string) (Result, error) {
	return g.verify(check{
		op:    RiskInformationRatio,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			return formula.InformationRatio(in.PortfolioReturn, in.BenchmarkReturn, in.TrackingError)
		},
	})
}
