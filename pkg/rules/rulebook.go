// Package rules evaluates regulatory checks written as CEL expressions.
//
// Each expression sees two maps: input, the facts of the transaction under
// review, and limits, the configured regulatory thresholds. Rules are compiled
// once when the Rulebook is built; a Rulebook is immutable and safe for
// concurrent use.
package rules

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/cel-go/cel"
	"go.uber.org/zap"

	"github.com/iwvelando/finance-guard/pkg/constants"
)

// Rule names used by the compliance guard.
const (
	AMLFlag         = "aml_flag"
	RemittanceLimit = "remittance_within_limit"
	LoanEligibility = "loan_eligible"
)

// DefaultExpressions holds the built-in rule set.
var DefaultExpressions = map[string]string{
	AMLFlag: `input.amount >= limits.ctr_threshold || ` +
		`input.country_code in limits.high_risk_jurisdictions`,
	RemittanceLimit: `input.year_to_date + input.amount <= limits.remittance_limit`,
	LoanEligibility: `input.annual_rate >= limits.rate_floor && ` +
		`input.existing_obligations + input.monthly_payment <= limits.max_foir * input.monthly_income`,
}

// Limits are the regulatory thresholds exposed to rules as the limits map.
type Limits struct {
	CTRThreshold          float64  `mapstructure:"ctr_threshold" validate:"gt=0"`
	HighRiskJurisdictions []string `mapstructure:"high_risk_jurisdictions"`
	RemittanceLimit       float64  `mapstructure:"remittance_limit" validate:"gt=0"`
	MaxFOIR               float64  `mapstructure:"max_foir" validate:"gt=0,lte=1"`
	RateFloor             float64  `mapstructure:"rate_floor" validate:"gte=0"`
}

// DefaultLimits returns the built-in thresholds.
func DefaultLimits() Limits {
	return Limits{
		CTRThreshold:          constants.DefaultCTRThreshold,
		HighRiskJurisdictions: append([]string(nil), constants.DefaultHighRiskJurisdictions...),
		RemittanceLimit:       constants.DefaultRemittanceLimit,
		MaxFOIR:               constants.DefaultMaxFOIR,
		RateFloor:             constants.DefaultRateFloor,
	}
}

func (l Limits) activation() map[string]any {
	codes := make([]string, len(l.HighRiskJurisdictions))
	for i, c := range l.HighRiskJurisdictions {
		codes[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return map[string]any{
		"ctr_threshold":           l.CTRThreshold,
		"high_risk_jurisdictions": codes,
		"remittance_limit":        l.RemittanceLimit,
		"max_foir":                l.MaxFOIR,
		"rate_floor":              l.RateFloor,
	}
}

// Rulebook holds compiled rules and the limits they are evaluated against.
type Rulebook struct {
	logger      *zap.Logger
	limits      Limits
	limitsInput map[string]any
	expressions map[string]string
	programs    map[string]cel.Program
}

// New compiles the default rules, replacing any named in overrides.
func New(logger *zap.Logger, limits Limits, overrides map[string]string) (*Rulebook, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	env, err := cel.NewEnv(
		cel.Variable("input", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("limits", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CEL environment")
	}

	expressions := make(map[string]string, len(DefaultExpressions)+len(overrides))
	for name, expr := range DefaultExpressions {
		expressions[name] = expr
	}
	for name, expr := range overrides {
		expressions[name] = expr
	}

	rb := &Rulebook{
		logger:      logger,
		limits:      limits,
		limitsInput: limits.activation(),
		expressions: expressions,
		programs:    make(map[string]cel.Program, len(expressions)),
	}
	for name, expr := range expressions {
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, errors.Wrapf(issues.Err(), "compile rule %s", name)
		}
		prg, err := env.Program(ast,
			cel.InterruptCheckFrequency(100),
			cel.CostLimit(10000),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "program rule %s", name)
		}
		rb.programs[name] = prg
		if _, overridden := overrides[name]; overridden {
			logger.Info("compliance rule overridden",
				zap.String("op", "rules.New"),
				zap.String("rule", name),
				zap.String("expression", expr),
			)
		}
	}
	return rb, nil
}

// Evaluate runs the named rule against input.
func (rb *Rulebook) Evaluate(name string, input map[string]any) (bool, error) {
	prg, ok := rb.programs[name]
	if !ok {
		return false, errors.Newf("unknown rule %q", name)
	}
	out, _, err := prg.Eval(map[string]any{
		"input":  input,
		"limits": rb.limitsInput,
	})
	if err != nil {
		return false, errors.Wrapf(err, "evaluate rule %s", name)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, errors.Newf("rule %s returned %T, not bool", name, out.Value())
	}
	return result, nil
}

// Expression returns the source of the named rule.
func (rb *Rulebook) Expression(name string) string {
	return rb.expressions[name]
}

// Limits returns the thresholds the rules are evaluated against.
func (rb *Rulebook) Limits() Limits {
	return rb.limits
}

// Names lists the compiled rules in sorted order.
func (rb *Rulebook) Names() []string {
	names := make([]string, 0, len(rb.programs))
	for name := range rb.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
