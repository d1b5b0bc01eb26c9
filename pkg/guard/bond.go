package guard

import (
	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/formula"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// YTMInput prices a bond whose yield is claimed.
type YTMInput struct {
	FaceValue  float64 `mapstructure:"face_value"`
	CouponRate float64 `mapstructure:"coupon_rate"`
	Price      float64 `mapstructure:"price"`
	Years      float64 `mapstructure:"years_to_maturity"`
	Frequency  int     `mapstructure:"frequency"`
}

// BondYieldInput describes a bond and the yield it is valued at.
type BondYieldInput struct {
	FaceValue       float64 `mapstructure:"face_value"`
	CouponRate      float64 `mapstructure:"coupon_rate"`
	YieldToMaturity float64 `mapstructure:"ytm"`
	Years           float64 `mapstructure:"years_to_maturity"`
	Frequency       int     `mapstructure:"frequency"`
}

// AccruedInterestInput describes a partially elapsed coupon period.
type AccruedInterestInput struct {
	FaceValue    float64 `mapstructure:"face_value"`
	CouponRate   float64 `mapstructure:"coupon_rate"`
	DaysElapsed  int     `mapstructure:"days_since_last_coupon"`
	DaysInPeriod int     `mapstructure:"days_in_period"`
	Frequency    int     `mapstructure:"frequency"`
}

// DirtyPriceInput holds a clean price and its accrued interest.
type DirtyPriceInput struct {
	CleanPrice      float64 `mapstructure:"clean_price"`
	AccruedInterest float64 `mapstructure:"accrued_interest"`
}

// BondGuard verifies fixed income claims.
type BondGuard struct {
	base
}

// NewBondGuard creates a bond guard.
func NewBondGuard(logger *zap.Logger, policy Policy) *BondGuard {
	return &BondGuard{base: newBase(logger, policy)}
}

func bondOf(face, coupon, years float64, frequency int) formula.Bond {
	return formula.Bond{
		FaceValue:  face,
		CouponRate: coupon,
		Years:      years,
		Frequency:  withDefault(frequency, constants.DefaultCouponFrequency),
	}
}

// VerifyYTM solves for the yield that reprices the bond and compares it in
// percentage points. Solver exhaustion is reported in the details, never hidden.
func (g *BondGuard) VerifyYTM(in YTMInput, claim string) (Result, error) {
	bond := bondOf(in.FaceValue, in.CouponRate, in.Years, in.Frequency)
	result, err := g.verify(check{
		op:    BondYTM,
		claim: claim,
		kind:  quantity.Rate,
		compute: func() (formula.Result, error) {
			return formula.YieldToMaturity(bond, in.Price)
		},
	})
	if err != nil {
		return Result{}, err
	}
	if converged, _ := result.Detail("solver_converged"); converged == "false" {
		iterations, _ := result.Detail("solver_iterations")
		g.logger.Warn("yield solver did not converge",
			zap.String("op", "guard.VerifyYTM"),
			zap.Float64("price", in.Price),
			zap.String("iterations", iterations),
			zap.String("estimate", result.AuthoritativeValue),
		)
	}
	return result, nil
}

// VerifyDuration checks a Macaulay duration claim in years.
func (g *BondGuard) VerifyDuration(in BondYieldInput, claim string) (Result, error) {
	bond := bondOf(in.FaceValue, in.CouponRate, in.Years, in.Frequency)
	return g.verify(check{
		op:    BondDuration,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			return formula.MacaulayDuration(bond, in.YieldToMaturity)
		},
	})
}

// VerifyConvexity checks a convexity claim.
func (g *BondGuard) VerifyConvexity(in BondYieldInput, claim string) (Result, error) {
	bond := bondOf(in.FaceValue, in.CouponRate, in.Years, in.Frequency)
	return g.verify(check{
		op:    BondConvexity,
		claim: claim,
		kind:  quantity.Ratio,
		compute: func() (formula.Result, error) {
			return formula.Convexity(bond, in.YieldToMaturity)
		},
	})
}

// VerifyAccruedInterest checks accrued coupon interest to the cent.
func (g *BondGuard) VerifyAccruedInterest(in AccruedInterestInput, claim string) (Result, error) {
	return g.verify(check{
		op:    BondAccruedInterest,
		claim: claim,
		kind:  quantity.Money,
		compute: func() (formula.Result, error) {
			return formula.AccruedInterest(in.FaceValue, in.CouponRate, in.DaysElapsed, in.DaysInPeriod,
				withDefault(in.Frequency, constants.DefaultCouponFrequency))
		},
	})
}

// VerifyDirtyPrice checks a full price claim.
func (g *BondGuard) VerifyDirtyPrice(in DirtyPriceInput, claim string) (Result, error) {
	return g.verify(check{
		op:    BondDirtyPrice,
		claim: claim,
		kind:  quantity.Money,
		compute: func() (formula.Result, error) {
			return formula.DirtyPrice(in.CleanPrice, in.AccruedInterest)
		},
	})
}
