package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-guard/internal/dispatch"
	"github.com/iwvelando/finance-guard/pkg/guard"
)

// ValidateClaim checks a single claim for problems that would stop a batch
// and returns warnings for ones that would not.
func ValidateClaim(index int, c dispatch.Claim) ([]string, error) {
	label := claimLabel(index, c)
	if c.Operation == "" {
		return nil, fmt.Errorf("%s has no operation", label)
	}
	if !guard.IsOperation(c.Operation) {
		return nil, fmt.Errorf("%s names unknown operation %q", label, c.Operation)
	}

	var warnings []string
	if strings.TrimSpace(c.Claim) == "" {
		warnings = append(warnings, fmt.Sprintf("%s has an empty claim and will be rejected", label))
	}
	if len(c.Args) == 0 {
		warnings = append(warnings, fmt.Sprintf("%s has no arguments", label))
	}
	return warnings, nil
}

// ClaimsValidator validates a batch of claims.
type ClaimsValidator struct {
	Claims []dispatch.Claim
}

// ValidateAll returns warnings for the batch, or the first error that would
// stop it.
func (cv *ClaimsValidator) ValidateAll() ([]string, error) {
	var warnings []string
	if len(cv.Claims) == 0 {
		return []string{"claims file contains no claims"}, nil
	}

	seen := make(map[string]int)
	for i, c := range cv.Claims {
		claimWarnings, err := ValidateClaim(i, c)
		if err != nil {
			return warnings, err
		}
		warnings = append(warnings, claimWarnings...)

		if c.ID == "" {
			continue
		}
		if first, ok := seen[c.ID]; ok {
			warnings = append(warnings, fmt.Sprintf("claim id %q is used by claims %d and %d", c.ID, first, i))
			continue
		}
		seen[c.ID] = i
	}
	return warnings, nil
}

func claimLabel(index int, c dispatch.Claim) string {
	if c.ID != "" {
		return fmt.Sprintf("claim %d (%s)", index, c.ID)
	}
	return fmt.Sprintf("claim %d", index)
}
