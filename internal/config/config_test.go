package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/finance-guard/pkg/constants"
	"github.com/iwvelando/finance-guard/pkg/guard"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example config",
			configPath: "../../test/test_config.yaml",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected logging level debug, got %q", config.Logging.Level)
	}
	if config.Output.Format != constants.OutputFormatCSV {
		t.Errorf("Expected output format csv, got %q", config.Output.Format)
	}
	if config.Concurrency != 4 {
		t.Errorf("Expected concurrency 4, got %d", config.Concurrency)
	}
	if got := len(config.Compliance.HighRiskJurisdictions); got != 4 {
		t.Errorf("Expected 4 high-risk jurisdictions, got %d", got)
	}

	thresholds, err := config.Thresholds()
	if err != nil {
		t.Fatalf("Thresholds() error = %v", err)
	}
	if thresholds[guard.BondYTM] != 0.25 {
		t.Errorf("Expected bond.ytm threshold 0.25, got %v", thresholds[guard.BondYTM])
	}
	if thresholds[guard.FXForwardRate] != 3 {
		t.Errorf("Expected fx.forward_rate threshold 3, got %v", thresholds[guard.FXForwardRate])
	}

	policy, err := config.Policy()
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	if policy.Spec(guard.BondYTM).Threshold != 0.25 {
		t.Errorf("Policy did not apply bond.ytm override")
	}
	if policy.Spec(guard.BondDuration) != guard.DefaultPolicy().Spec(guard.BondDuration) {
		t.Errorf("Policy changed an operation without an override")
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\n")

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	defaults := Default()
	if config.Concurrency != defaults.Concurrency {
		t.Errorf("Expected default concurrency %d, got %d", defaults.Concurrency, config.Concurrency)
	}
	if config.Output.Format != constants.OutputFormatPretty {
		t.Errorf("Expected default output format, got %q", config.Output.Format)
	}
	if config.Compliance.CTRThreshold != constants.DefaultCTRThreshold {
		t.Errorf("Expected default CTR threshold, got %v", config.Compliance.CTRThreshold)
	}
	if len(config.Tolerances) != 0 {
		t.Errorf("Expected no tolerance overrides, got %v", config.Tolerances)
	}
}

func TestLoadConfigurationInvalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "Unknown operation",
			body:    "tolerances:\n  bond:\n    price: 1\n",
			wantErr: "bond.price",
		},
		{
			name:    "Negative tolerance",
			body:    "tolerances:\n  bond:\n    ytm: -1\n",
			wantErr: "invalid configuration",
		},
		{
			name:    "Bad output format",
			body:    "output:\n  format: xml\n",
			wantErr: "invalid configuration",
		},
		{
			name:    "Bad log level",
			body:    "logging:\n  level: loud\n",
			wantErr: "invalid configuration",
		},
		{
			name:    "FOIR above one",
			body:    "compliance:\n  max_foir: 1.5\n",
			wantErr: "invalid configuration",
		},
		{
			name:    "Zero concurrency",
			body:    "concurrency: 0\n",
			wantErr: "invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("LoadConfiguration() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadConfiguration() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	config := Default()
	config.Tolerances = map[string]map[string]float64{
		"bond": {"ytm": 10, "duration": 0},
	}
	config.Rules = map[string]string{"unused_rule": "true"}
	config.Compliance.RateFloor = 0.6

	warnings := config.ValidateConfiguration()
	if len(warnings) != 4 {
		t.Fatalf("Expected 4 warnings, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "bond.duration") {
		t.Errorf("Expected sorted warnings starting with bond.duration, got %q", warnings[0])
	}

	if warnings := Default().ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("Expected no warnings for defaults, got %v", warnings)
	}
}
