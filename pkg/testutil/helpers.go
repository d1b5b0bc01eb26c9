// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/finance-guard/internal/dispatch"
)

// FindOutcome finds an outcome by claim id in the outcomes slice.
// Returns a pointer to the outcome if found, nil otherwise.
func FindOutcome(outcomes []dispatch.Outcome, id string) *dispatch.Outcome {
	for i := range outcomes {
		if outcomes[i].ID == id {
			return &outcomes[i]
		}
	}
	return nil
}

// Claim builds a dispatch claim from alternating argument key/value pairs.
func Claim(id, operation, claim string, kv ...any) dispatch.Claim {
	args := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		args[kv[i].(string)] = kv[i+1]
	}
	return dispatch.Claim{ID: id, Operation: operation, Args: args, Claim: claim}
}
