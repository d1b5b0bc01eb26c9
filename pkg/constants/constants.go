// Package constants provides shared constants for the finance-guard application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// MaxPeriods caps the payment or coupon periods of a single instrument (100 years monthly)
	MaxPeriods = 1200

	// CurrencyPlaces is the number of decimal places money values are quantized to
	CurrencyPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// PipsPerUnit converts an exchange rate difference into pips for standard pairs
	PipsPerUnit = 10000.0

	// StandardPipSize is one pip for quotes below LargeQuoteThreshold
	StandardPipSize = 0.0001

	// LargeQuotePipSize is one pip for JPY-style quotes
	LargeQuotePipSize = 0.01

	// LargeQuoteThreshold is the quote magnitude at which pips move to the second decimal
	LargeQuoteThreshold = 10.0

	// DefaultCouponFrequency is the coupon frequency assumed when none is given (semi-annual)
	DefaultCouponFrequency = 2

	// DefaultDayCountBasis is the money-market day count denominator
	DefaultDayCountBasis = 360

	// ArbitrageCostThreshold is the round-trip deviation that transaction costs absorb (0.1%)
	ArbitrageCostThreshold = 0.001
)

// Yield solver bounds
const (
	// YieldFloor is the lowest annualized yield the solver will hold (0.01%)
	YieldFloor = 0.0001

	// YieldCeiling is the highest annualized yield the solver will hold (100%)
	YieldCeiling = 1.0

	// SolverEpsilon is the price residual at which the solver stops
	SolverEpsilon = 1e-10

	// SolverMaxIterations caps the Newton-Raphson loop
	SolverMaxIterations = 100

	// DerivativeFloor is the smallest derivative magnitude a Newton step is taken with
	DerivativeFloor = 1e-10
)

// Verification constants
const (
	// Confidence is the provenance tag attached to every deterministic verification
	Confidence = "DETERMINISTIC_FORMULA"

	// UnboundedRatioFloor is the smallest claim accepted against an unbounded ratio
	UnboundedRatioFloor = 10.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// CurrencyRelativeFloor widens money tolerance for large amounts (0.01% of value)
	CurrencyRelativeFloor = 0.0001
)

// Compliance defaults
const (
	// DefaultCTRThreshold is the cash transaction reporting threshold in USD
	DefaultCTRThreshold = 10000.0

	// DefaultRemittanceLimit is the annual remittance cap in USD
	DefaultRemittanceLimit = 250000.0

	// DefaultMaxFOIR is the largest share of monthly income a loan payment may take
	DefaultMaxFOIR = 0.5

	// DefaultRateFloor is the lowest annual lending rate treated as fair pricing
	DefaultRateFloor = 0.085
)

// DefaultHighRiskJurisdictions lists ISO country codes that always require an AML flag.
var DefaultHighRiskJurisdictions = []string{"IR", "KP", "MM"}

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultClaimsFile is the default batch claims file name
	DefaultClaimsFile = "claims.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the verification API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultRequestsPerSecond is the default sustained request rate for the API
	DefaultRequestsPerSecond = 50.0

	// DefaultRequestBurst is the default request burst for the API
	DefaultRequestBurst = 100

	// DefaultConcurrency is the default number of claims verified in parallel
	DefaultConcurrency = 8
)
