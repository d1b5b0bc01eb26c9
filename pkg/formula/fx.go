package formula

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

const ratePlaces = 5

// ForwardRate applies covered interest parity. T = days/basis.
func ForwardRate(spot, domesticRate, foreignRate float64, days, dayCountBasis int) (Result, error) {
	if err := requirePositive("spot rate", spot); err != nil {
		return Result{}, err
	}
	if err := requireFinite("interest rate", domesticRate, foreignRate); err != nil {
		return Result{}, err
	}
	if days < 0 {
		return Result{}, invalid("days must not be negative, got %d", days)
	}
	if dayCountBasis <= 0 {
		return Result{}, invalid("day count basis must be positive, got %d", dayCountBasis)
	}

	tenor := float64(days) / float64(dayCountBasis)
	denominator := 1 + foreignRate*tenor
	if denominator <= 0 {
		return Result{}, invalid("foreign rate %v gives a non-positive discount factor over %d days", foreignRate, days)
	}
	forward := spot * (1 + domesticRate*tenor) / denominator
	rounded := decimal.NewFromFloat(forward).Round(ratePlaces).InexactFloat64()

	return newResult(
		quantity.NewRatio(rounded),
		"F = S × (1 + r_d × T) / (1 + r_f × T)",
		"time_fraction", tenor,
		"forward_points", math.Round((forward-spot)*constants.PipsPerUnit*10)/10,
	), nil
}

// CrossRate triangulates A/C from A/B and B/C.
func CrossRate(rateAB, rateBC float64) (Result, error) {
	if err := requirePositive("rate A/B", rateAB); err != nil {
		return Result{}, err
	}
	if err := requirePositive("rate B/C", rateBC); err != nil {
		return Result{}, err
	}
	cross := decimal.NewFromFloat(rateAB).Mul(decimal.NewFromFloat(rateBC)).Round(ratePlaces)
	return newResult(
		quantity.NewRatio(cross.InexactFloat64()),
		"A/C = (A/B) × (B/C)",
		"rate_ab", rateAB,
		"rate_bc", rateBC,
	), nil
}

// SwapPoints expresses the forward premium in pips, to a tenth of a pip.
func SwapPoints(spot, forward float64) (Result, error) {
	if err := requirePositive("spot rate", spot); err != nil {
		return Result{}, err
	}
	if err := requirePositive("forward rate", forward); err != nil {
		return Result{}, err
	}
	points := decimal.NewFromFloat(forward).
		Sub(decimal.NewFromFloat(spot)).
		Mul(decimal.NewFromFloat(constants.PipsPerUnit)).
		Round(1)
	return newResult(
		quantity.NewPips(points.InexactFloat64()),
		"Swap Points = (F - S) × 10000",
		"spot", spot,
		"forward", forward,
	), nil
}

// NDFSettlement returns the settlement-currency amount of a non-deliverable forward.
func NDFSettlement(notional, contractRate, fixingRate float64) (Result, error) {
	if err := requireFinite("notional", notional); err != nil {
		return Result{}, err
	}
	if err := requirePositive("contract rate", contractRate); err != nil {
		return Result{}, err
	}
	if err := requirePositive("fixing rate", fixingRate); err != nil {
		return Result{}, err
	}
	fixing := decimal.NewFromFloat(fixingRate)
	settlement := decimal.NewFromFloat(notional).
		Mul(fixing.Sub(decimal.NewFromFloat(contractRate))).
		Div(fixing)
	return newResult(
		money(settlement),
		"Settlement = N × (Fix - Contract) / Fix",
		"notional", notional,
		"contract_rate", contractRate,
		"fixing_rate", fixingRate,
	), nil
}

// CurrencyConversion converts an amount at a direct quote.
func CurrencyConversion(amount, rate float64) (Result, error) {
	if err := requireFinite("amount", amount); err != nil {
		return Result{}, err
	}
	if err := requirePositive("exchange rate", rate); err != nil {
		return Result{}, err
	}
	converted := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate))
	return newResult(
		money(converted),
		"Converted = Amount × Rate",
		"amount", amount,
		"rate", rate,
	), nil
}

// TriangularArbitrage reports whether the round trip A→B→C→A deviates from
// one by more than ArbitrageCostThreshold.
func TriangularArbitrage(rateAB, rateBC, rateCA float64) (Result, error) {
	if err := requirePositive("rate A/B", rateAB); err != nil {
		return Result{}, err
	}
	if err := requirePositive("rate B/C", rateBC); err != nil {
		return Result{}, err
	}
	if err := requirePositive("rate C/A", rateCA); err != nil {
		return Result{}, err
	}
	product := decimal.NewFromFloat(rateAB).
		Mul(decimal.NewFromFloat(rateBC)).
		Mul(decimal.NewFromFloat(rateCA)).
		Round(ratePlaces)
	deviation := product.Sub(decimal.NewFromInt(1)).Abs()
	exists := deviation.GreaterThan(decimal.NewFromFloat(constants.ArbitrageCostThreshold))

	return newResult(
		quantity.NewBool(exists),
		"Product = (A/B) × (B/C) × (C/A), arbitrage if |Product - 1| > 0.1%",
		"round_trip_product", product.InexactFloat64(),
		"deviation_pct", deviation.Mul(decimal.NewFromInt(100)).Round(4).InexactFloat64(),
	), nil
}
