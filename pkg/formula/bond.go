package formula

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/mathutil"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// Bond describes a fixed-coupon bullet bond.
type Bond struct {
	FaceValue  float64
	CouponRate float64
	Years      float64
	Frequency  int
}

// Validate checks the bond terms.
func (b Bond) Validate() error {
	if err := requirePositive("face value", b.FaceValue); err != nil {
		return err
	}
	if err := requireFinite("coupon rate", b.CouponRate); err != nil {
		return err
	}
	if b.CouponRate < 0 || b.CouponRate > 1 {
		return invalid("coupon rate must be within [0, 1], got %v", b.CouponRate)
	}
	if err := requirePositive("years to maturity", b.Years); err != nil {
		return err
	}
	if b.Frequency <= 0 {
		return invalid("coupon frequency must be positive, got %d", b.Frequency)
	}
	if b.Years*float64(b.Frequency) > constants.MaxPeriods {
		return invalid("coupon periods must not exceed %d, got %v years at %d per year", constants.MaxPeriods, b.Years, b.Frequency)
	}
	return nil
}

// Periods returns the number of coupon periods, at least one.
func (b Bond) Periods() int {
	n := int(math.Round(b.Years * float64(b.Frequency)))
	if n < 1 {
		return 1
	}
	return n
}

// CouponPayment returns the periodic coupon amount.
func (b Bond) CouponPayment() float64 {
	return b.FaceValue * b.CouponRate / float64(b.Frequency)
}

// cashFlowSums discounts every cash flow at the annual yield y and returns
// the price, dPrice/dy, Σ t·PV and Σ t(t+1)·PV with t counted in periods.
func (b Bond) cashFlowSums(y float64) (price, derivative, weighted, convexity float64) {
	f := float64(b.Frequency)
	r := y / f
	coupon := b.CouponPayment()
	n := b.Periods()
	for t := 1; t <= n; t++ {
		cf := coupon
		if t == n {
			cf += b.FaceValue
		}
		ft := float64(t)
		pv := cf / math.Pow(1+r, ft)
		price += pv
		derivative -= ft * pv / (1 + r) / f
		weighted += ft * pv
		convexity += ft * (ft + 1) * pv
	}
	return price, derivative, weighted, convexity
}

// BondPrice discounts coupons and principal at an annual yield.
func BondPrice(b Bond, annualYield float64) (Result, error) {
	if err := b.Validate(); err != nil {
		return Result{}, err
	}
	if err := requireFinite("yield", annualYield); err != nil {
		return Result{}, err
	}
	if annualYield/float64(b.Frequency) <= -1 {
		return Result{}, invalid("periodic yield must exceed -100%%, got %v", annualYield)
	}
	price, _, _, _ := b.cashFlowSums(annualYield)
	return newResult(
		money(decimal.NewFromFloat(price)),
		"P = Σ C/(1+y/f)^t + FV/(1+y/f)^N",
		"periods", b.Periods(),
		"coupon_payment", b.CouponPayment(),
	), nil
}

// Solution reports the outcome of the yield solver.
type Solution struct {
	Yield        float64
	InitialGuess float64
	Iterations   int
	Residual     float64
	Derivative   float64
	Converged    bool
}

// SolveYield finds the annual yield at which the bond prices to price using
// Newton-Raphson. The iterate is clamped to [YieldFloor, YieldCeiling] after
// every step and the loop ends at SolverMaxIterations or when the derivative
// vanishes. Either exit returns the best estimate, and Converged reports
// whether its residual is within SolverEpsilon.
func SolveYield(b Bond, price float64) (Solution, error) {
	if err := b.Validate(); err != nil {
		return Solution{}, err
	}
	if err := requirePositive("price", price); err != nil {
		return Solution{}, err
	}

	y := mathutil.Clamp(b.CouponPayment()*float64(b.Frequency)/price, constants.YieldFloor, constants.YieldCeiling)
	sol := Solution{InitialGuess: y, Yield: y}

	for i := 1; i <= constants.SolverMaxIterations; i++ {
		p, d, _, _ := b.cashFlowSums(y)
		residual := p - price
		sol.Yield, sol.Iterations, sol.Residual, sol.Derivative = y, i, residual, d

		if math.Abs(residual) < constants.SolverEpsilon {
			sol.Converged = true
			return sol, nil
		}
		if math.Abs(d) < constants.DerivativeFloor {
			return sol, nil
		}
		y = mathutil.Clamp(y-residual/d, constants.YieldFloor, constants.YieldCeiling)
	}

	p, d, _, _ := b.cashFlowSums(y)
	sol.Yield, sol.Residual, sol.Derivative = y, p-price, d
	sol.Converged = math.Abs(sol.Residual) < constants.SolverEpsilon
	return sol, nil
}

// YieldToMaturity wraps SolveYield as a rate Result. Solver diagnostics are
// reported as the solver_converged and solver_iterations intermediates.
func YieldToMaturity(b Bond, price float64) (Result, error) {
	sol, err := SolveYield(b, price)
	if err != nil {
		return Result{}, err
	}
	return newResult(
		quantity.NewRate(sol.Yield),
		"Price = Σ C/(1+y/f)^t + FV/(1+y/f)^N, solved for y by Newton-Raphson",
		"initial_guess", sol.InitialGuess,
		"solver_iterations", sol.Iterations,
		"solver_converged", sol.Converged,
		"residual", sol.Residual,
		"periods", b.Periods(),
	), nil
}

// MacaulayDuration returns the PV-weighted average time to cash flow in
// years. Modified duration is reported as an intermediate.
func MacaulayDuration(b Bond, annualYield float64) (Result, error) {
	if err := b.Validate(); err != nil {
		return Result{}, err
	}
	if err := requireNonNegative("yield", annualYield); err != nil {
		return Result{}, err
	}
	f := float64(b.Frequency)
	price, _, weighted, _ := b.cashFlowSums(annualYield)
	duration := weighted / f / price
	return newResult(
		quantity.NewRatioUnit(duration, "years"),
		"Macaulay Duration = Σ(t × PV(CFt)) / Price",
		"price", mathutil.Round(price),
		"modified_duration", duration/(1+annualYield/f),
	), nil
}

// Convexity returns the annualized convexity in years².
func Convexity(b Bond, annualYield float64) (Result, error) {
	if err := b.Validate(); err != nil {
		return Result{}, err
	}
	if err := requireNonNegative("yield", annualYield); err != nil {
		return Result{}, err
	}
	f := float64(b.Frequency)
	r := annualYield / f
	price, _, _, weighted := b.cashFlowSums(annualYield)
	convexity := weighted / (price * (1 + r) * (1 + r) * f * f)
	return newResult(
		quantity.NewRatioUnit(convexity, "years²"),
		"Convexity = Σ(t(t+1) × PV(CFt)) / (P × (1+y/f)² × f²)",
		"price", mathutil.Round(price),
	), nil
}

// AccruedInterest prorates one coupon over the days elapsed in the period.
func AccruedInterest(faceValue, couponRate float64, daysElapsed, daysInPeriod, frequency int) (Result, error) {
	if err := requirePositive("face value", faceValue); err != nil {
		return Result{}, err
	}
	if err := requireNonNegative("coupon rate", couponRate); err != nil {
		return Result{}, err
	}
	if frequency <= 0 {
		return Result{}, invalid("coupon frequency must be positive, got %d", frequency)
	}
	if daysInPeriod <= 0 {
		return Result{}, invalid("days in period must be positive, got %d", daysInPeriod)
	}
	if daysElapsed < 0 || daysElapsed > daysInPeriod {
		return Result{}, invalid("days elapsed must be within [0, %d], got %d", daysInPeriod, daysElapsed)
	}

	coupon := decimal.NewFromFloat(faceValue).
		Mul(decimal.NewFromFloat(couponRate)).
		Div(decimal.NewFromInt(int64(frequency)))
	accrued := decimal.NewFromInt(int64(daysElapsed)).
		Div(decimal.NewFromInt(int64(daysInPeriod))).
		Mul(coupon)

	return newResult(
		money(accrued),
		"Accrued = (Days/Period) × Coupon",
		"coupon_payment", coupon.StringFixed(constants.CurrencyPlaces),
		"accrual_fraction", float64(daysElapsed)/float64(daysInPeriod),
	), nil
}

// DirtyPrice adds accrued interest to the clean price.
func DirtyPrice(cleanPrice, accruedInterest float64) (Result, error) {
	if err := requireNonNegative("clean price", cleanPrice); err != nil {
		return Result{}, err
	}
	if err := requireNonNegative("accrued interest", accruedInterest); err != nil {
		return Result{}, err
	}
	dirty := decimal.NewFromFloat(cleanPrice).Add(decimal.NewFromFloat(accruedInterest))
	return newResult(
		money(dirty),
		"Dirty Price = Clean Price + Accrued Interest",
		"clean_price", cents(cleanPrice).String(),
		"accrued_interest", cents(accruedInterest).String(),
	), nil
}
