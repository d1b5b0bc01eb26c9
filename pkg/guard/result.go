// Package guard verifies claimed financial figures against independently
// computed values.
//
// Every operation runs the same protocol: parse the claim, compute the
// authoritative value, apply the operation's tolerance, and assemble a
// Result. A disagreement is a normal Result with Verified=false; only a
// malformed claim or invalid inputs produce an error. Guards hold no mutable
// state and are safe for concurrent use.
package guard

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gowebpki/jcs"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Result is the immutable report of one verification.
type Result struct {
	Operation          Operation                             `json:"operation"`
	Verified           bool                                  `json:"verified"`
	ClaimedValue       string                                `json:"claimed_value"`
	AuthoritativeValue string                                `json:"authoritative_value"`
	Difference         string                                `json:"difference,omitempty"`
	FormulaUsed        string                                `json:"formula_used"`
	Confidence         string                                `json:"confidence"`
	Details            *orderedmap.OrderedMap[string, string] `json:"details"`
}

// Detail returns a single details entry.
func (r Result) Detail(key string) (string, bool) {
	if r.Details == nil {
		return "", false
	}
	return r.Details.Get(key)
}

// Canonical returns the RFC 8785 canonical JSON encoding of the result.
func (r Result) Canonical() ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "marshal result")
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, errors.Wrap(err, "canonicalize result")
	}
	return canonical, nil
}
