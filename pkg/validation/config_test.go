package validation

import (
	"strings"
	"testing"

	"github.com/iwvelando/finance-guard/internal/dispatch"
)

func TestValidateClaim(t *testing.T) {
	tests := []struct {
		name        string
		claim       dispatch.Claim
		expectWarns int
		expectError bool
	}{
		{
			name:  "Complete claim",
			claim: dispatch.Claim{ID: "a", Operation: "bond.ytm", Args: map[string]any{"price": 950}, Claim: "5.6%"},
		},
		{
			name:        "Missing operation",
			claim:       dispatch.Claim{Claim: "5.6%"},
			expectError: true,
		},
		{
			name:        "Unknown operation",
			claim:       dispatch.Claim{Operation: "bond.price", Claim: "950"},
			expectError: true,
		},
		{
			name:        "Empty claim and args",
			claim:       dispatch.Claim{Operation: "risk.var", Claim: "  "},
			expectWarns: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings, err := ValidateClaim(0, tt.claim)
			if tt.expectError {
				if err == nil {
					t.Errorf("ValidateClaim() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateClaim() unexpected error: %v", err)
			}
			if len(warnings) != tt.expectWarns {
				t.Errorf("ValidateClaim() returned %d warnings, want %d: %v", len(warnings), tt.expectWarns, warnings)
			}
		})
	}
}

func TestValidateAll(t *testing.T) {
	cv := ClaimsValidator{Claims: []dispatch.Claim{
		{ID: "x", Operation: "bond.ytm", Args: map[string]any{"price": 950}, Claim: "5.6%"},
		{ID: "x", Operation: "fx.cross_rate", Args: map[string]any{"rate_a_b": 1.1}, Claim: "165"},
	}}

	warnings, err := cv.ValidateAll()
	if err != nil {
		t.Fatalf("ValidateAll() unexpected error: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], `"x"`) {
		t.Errorf("Expected a duplicate id warning, got %v", warnings)
	}

	empty := ClaimsValidator{}
	warnings, err = empty.ValidateAll()
	if err != nil || len(warnings) != 1 {
		t.Errorf("Expected one warning for an empty batch, got %v, %v", warnings, err)
	}

	bad := ClaimsValidator{Claims: []dispatch.Claim{{ID: "b", Operation: "nope"}}}
	if _, err := bad.ValidateAll(); err == nil || !strings.Contains(err.Error(), "claim 0 (b)") {
		t.Errorf("Expected an error naming the claim, got %v", err)
	}
}
