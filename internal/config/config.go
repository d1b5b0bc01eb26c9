// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/guard"
	"github.com/iwvelando/finance-guard/pkg/rules"
)

// Configuration holds all configuration for finance-guard.
type Configuration struct {
	Logging     LoggingConfig                 `mapstructure:"logging" yaml:"logging,omitempty"`
	Output      OutputConfig                  `mapstructure:"output" yaml:"output,omitempty"`
	Tolerances  map[string]map[string]float64 `mapstructure:"tolerances" yaml:"tolerances,omitempty" validate:"dive,dive,gte=0"`
	Compliance  rules.Limits                  `mapstructure:"compliance" yaml:"compliance,omitempty"`
	Rules       map[string]string             `mapstructure:"rules" yaml:"rules,omitempty"`
	Concurrency int                           `mapstructure:"concurrency" yaml:"concurrency,omitempty" validate:"gte=1,lte=256"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format" yaml:"format,omitempty" validate:"omitempty,oneof=json console"`
	OutputFile string `mapstructure:"outputfile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty" validate:"omitempty,oneof=pretty csv json"`
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	return &Configuration{
		Logging:     LoggingConfig{Level: "info", Format: "console"},
		Output:      OutputConfig{Format: constants.OutputFormatPretty},
		Compliance:  rules.DefaultLimits(),
		Concurrency: constants.DefaultConcurrency,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("compliance.ctr_threshold", d.Compliance.CTRThreshold)
	v.SetDefault("compliance.high_risk_jurisdictions", d.Compliance.HighRiskJurisdictions)
	v.SetDefault("compliance.remittance_limit", d.Compliance.RemittanceLimit)
	v.SetDefault("compliance.max_foir", d.Compliance.MaxFOIR)
	v.SetDefault("compliance.rate_floor", d.Compliance.RateFloor)
	v.SetDefault("concurrency", d.Concurrency)
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Unset keys take their defaults and environment
// variables override file values.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks field constraints and that every tolerance names a known
// operation.
func (c *Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Thresholds(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Thresholds flattens the tolerances section into operation ids, so that
// tolerances.bond.ytm becomes bond.ytm.
func (c *Configuration) Thresholds() (map[guard.Operation]float64, error) {
	out := make(map[guard.Operation]float64)
	for domain, metrics := range c.Tolerances {
		for metric, threshold := range metrics {
			op := domain + "." + metric
			if !guard.IsOperation(op) {
				return nil, fmt.Errorf("unknown operation %q in tolerances", op)
			}
			out[guard.Operation(op)] = threshold
		}
	}
	return out, nil
}

// Policy builds the tolerance policy for this configuration.
func (c *Configuration) Policy() (guard.Policy, error) {
	thresholds, err := c.Thresholds()
	if err != nil {
		return guard.Policy{}, err
	}
	return guard.NewPolicy(thresholds)
}

// ValidateConfiguration returns warnings for settings that are legal but
// probably unintended.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	defaults := guard.DefaultPolicy()
	thresholds, _ := c.Thresholds()

	ops := make([]string, 0, len(thresholds))
	for op := range thresholds {
		ops = append(ops, string(op))
	}
	sort.Strings(ops)
	for _, op := range ops {
		threshold := thresholds[guard.Operation(op)]
		base := defaults.Spec(guard.Operation(op)).Threshold
		if base > 0 && threshold > 10*base {
			warnings = append(warnings, fmt.Sprintf("tolerance for %s is %gx the default", op, threshold/base))
		}
		if threshold == 0 && base > 0 {
			warnings = append(warnings, fmt.Sprintf("tolerance for %s is zero; only exact claims will verify", op))
		}
	}

	names := make([]string, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := rules.DefaultExpressions[name]; !ok {
			warnings = append(warnings, fmt.Sprintf("rule %q is not used by any operation", name))
		}
	}
	if c.Compliance.RateFloor > 0.5 {
		warnings = append(warnings, fmt.Sprintf("compliance rate floor %.2f%% rejects almost every loan", c.Compliance.RateFloor*100))
	}
	return warnings
}
