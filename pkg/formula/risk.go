package formula

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/finance-guard/pkg/mathutil"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// zTable maps one-sided confidence levels to standard normal quantiles.
var zTable = []struct {
	confidence float64
	z          float64
}{
	{0.90, 1.282},
	{0.95, 1.645},
	{0.99, 2.326},
}

// ZScore returns the tabulated z-score for a confidence level, linearly
// interpolated between table points and clamped outside them.
func ZScore(confidence float64) float64 {
	first, last := zTable[0], zTable[len(zTable)-1]
	if confidence <= first.confidence {
		return first.z
	}
	if confidence >= last.confidence {
		return last.z
	}
	for i := 1; i < len(zTable); i++ {
		lo, hi := zTable[i-1], zTable[i]
		if confidence <= hi.confidence {
			return lo.z + (confidence-lo.confidence)/(hi.confidence-lo.confidence)*(hi.z-lo.z)
		}
	}
	return last.z
}

// ParametricVaR returns variance-covariance value at risk: P × σ × z × √days.
func ParametricVaR(portfolioValue, dailyVolatility, confidence float64, holdingDays int) (Result, error) {
	if err := requireNonNegative("portfolio value", portfolioValue); err != nil {
		return Result{}, err
	}
	if err := requireNonNegative("daily volatility", dailyVolatility); err != nil {
		return Result{}, err
	}
	if err := requireFinite("confidence", confidence); err != nil {
		return Result{}, err
	}
	if confidence <= 0 || confidence >= 1 {
		return Result{}, invalid("confidence must be within (0, 1), got %v", confidence)
	}
	if holdingDays <= 0 {
		return Result{}, invalid("holding period must be positive, got %d days", holdingDays)
	}

	z := ZScore(confidence)
	value := decimal.NewFromFloat(portfolioValue).
		Mul(decimal.NewFromFloat(dailyVolatility)).
		Mul(decimal.NewFromFloat(z)).
		Mul(decimal.NewFromFloat(math.Sqrt(float64(holdingDays))))

	return newResult(
		money(value),
		"VaR = P × σ × z × √t",
		"z_score", z,
		"holding_period_days", holdingDays,
		"confidence", confidence,
	), nil
}

// Beta returns sample Cov(asset, market) / Var(market). A market series
// with zero variance yields 0.
func Beta(assetReturns, marketReturns []float64) (Result, error) {
	if len(assetReturns) != len(marketReturns) {
		return Result{}, invalid("mismatched return series lengths: %d asset, %d market", len(assetReturns), len(marketReturns))
	}
	if len(assetReturns) < 2 {
		return Result{}, invalid("beta needs at least two observations, got %d", len(assetReturns))
	}
	if err := requireFinite("asset return", assetReturns...); err != nil {
		return Result{}, err
	}
	if err := requireFinite("market return", marketReturns...); err != nil {
		return Result{}, err
	}

	covariance := mathutil.SampleCovariance(assetReturns, marketReturns)
	variance := mathutil.SampleVariance(marketReturns)
	beta := 0.0
	if variance > 0 {
		beta = covariance / variance
	}
	return newResult(
		quantity.NewRatio(beta),
		"β = Cov(Ra, Rm) / Var(Rm)",
		"observations", len(assetReturns),
		"covariance", covariance,
		"market_variance", variance,
	), nil
}

// SharpeRatio returns (Rp - Rf) / σp, or 0 when σp is zero.
func SharpeRatio(portfolioReturn, riskFreeRate, volatility float64) (Result, error) {
	if err := requireFinite("return", portfolioReturn, riskFreeRate); err != nil {
		return Result{}, err
	}
	if err := requireNonNegative("volatility", volatility); err != nil {
		return Result{}, err
	}
	excess := portfolioReturn - riskFreeRate
	sharpe := 0.0
	if volatility > 0 {
		sharpe = excess / volatility
	}
	return newResult(
		quantity.NewRatio(sharpe),
		"Sharpe = (Rp - Rf) / σp",
		"excess_return", excess,
		"volatility", volatility,
	), nil
}

// SortinoRatio returns (Rp - Rt) / downside deviation, where the deviation
// is taken over the returns strictly below target. With no such returns the
// ratio is unbounded (+Inf).
func SortinoRatio(portfolioReturn, targetReturn float64, returns []float64) (Result, error) {
	if err := requireFinite("return", portfolioReturn, targetReturn); err != nil {
		return Result{}, err
	}
	if err := requireFinite("period return", returns...); err != nil {
		return Result{}, err
	}

	below := 0
	squared := 0.0
	for _, r := range returns {
		if r < targetReturn {
			below++
			squared += (r - targetReturn) * (r - targetReturn)
		}
	}
	excess := portfolioReturn - targetReturn
	citation := "Sortino = (Rp - Rt) / σ_downside"
	if below == 0 {
		return newResult(
			quantity.NewRatio(math.Inf(1)),
			citation,
			"excess_return", excess,
			"observations_below_target", 0,
		), nil
	}

	deviation := math.Sqrt(squared / float64(below))
	sortino := math.Inf(1)
	if deviation > 0 {
		sortino = excess / deviation
	}
	return newResult(
		quantity.NewRatio(sortino),
		citation,
		"excess_return", excess,
		"downside_deviation", deviation,
		"observations_below_target", below,
	), nil
}

// MaxDrawdown returns the largest peak-to-trough decline as a positive fraction.
// A total loss (a value of zero) is a drawdown of 1.
func MaxDrawdown(values []float64) (Result, error) {
	if len(values) == 0 {
		return Result{}, invalid("max drawdown needs at least one value")
	}
	if err := requirePositive("starting portfolio value", values[0]); err != nil {
		return Result{}, err
	}
	for _, v := range values[1:] {
		if err := requireNonNegative("portfolio value", v); err != nil {
			return Result{}, err
		}
	}

	peak := values[0]
	maxPeak, maxTrough := values[0], values[0]
	drawdown := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if dd := (peak - v) / peak; dd > drawdown {
			drawdown = dd
			maxPeak, maxTrough = peak, v
		}
	}
	return newResult(
		quantity.NewRate(drawdown),
		"Max DD = max((Peak - Trough) / Peak)",
		"peak", maxPeak,
		"trough", maxTrough,
		"observations", len(values),
	), nil
}

// ExpectedShortfall reports the caller-supplied mean tail loss beyond VaR
// in cents. The ES/VaR ratio is reported when VaR is positive.
func ExpectedShortfall(varAmount, tailLossAverage float64) (Result, error) {
	if err := requireNonNegative("VaR", varAmount); err != nil {
		return Result{}, err
	}
	if err := requireNonNegative("tail loss average", tailLossAverage); err != nil {
		return Result{}, err
	}
	kv := []any{"var", cents(varAmount).String()}
	if varAmount > 0 {
		kv = append(kv, "es_to_var_ratio", tailLossAverage/varAmount)
	}
	return newResult(
		money(decimal.NewFromFloat(tailLossAverage)),
		"ES = E[Loss | Loss > VaR]",
		kv...,
	), nil
}

// InformationRatio returns (Rp - Rb) / tracking error, or 0 when the tracking error is zero.
func InformationRatio(portfolioReturn, benchmarkReturn, trackingError float64) (Result, error) {
	if err := requireFinite("return", portfolioReturn, benchmarkReturn); err != nil {
		return Result{}, err
	}
	if err := requireNonNegative("tracking error", trackingError); err != nil {
		return Result{}, err
	}
	active := portfolioReturn - benchmarkReturn
	ir := 0.0
	if trackingError > 0 {
		ir = active / trackingError
	}
	return newResult(
		quantity.NewRatio(ir),
		"IR = (Rp - Rb) / TE",
		"active_return", active,
		"tracking_error", trackingError,
	), nil
}
