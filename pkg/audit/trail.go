// Package audit keeps an in-memory, append-only record of every verification
// made during a session.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/iwvelando/finance-guard/pkg/formula"
	"github.com/iwvelando/finance-guard/pkg/guard"
	"github.com/iwvelando/finance-guard/pkg/quantity"
)

// Verdict is the disposition of a single claim.
type Verdict string

const (
	// Approved means the claim agreed with the computed value.
	Approved Verdict = "APPROVED"
	// Blocked means the claim disagreed with the computed value.
	Blocked Verdict = "BLOCKED"
	// Rejected means the claim or its inputs could not be evaluated.
	Rejected Verdict = "REJECTED"
)

const traceIDLength = 16

// Record is one entry on the trail.
type Record struct {
	TraceID   string    `json:"trace_id"`
	Operation string    `json:"operation"`
	Claim     string    `json:"claim"`
	Verdict   Verdict   `json:"verdict"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecord builds a record whose trace id hashes the claim, the response text
// and the timestamp. The id is a uniqueness token, not a signature.
func NewRecord(op, claim, response string, verdict Verdict, reason string, now time.Time) Record {
	h := sha256.New()
	h.Write([]byte(claim))
	h.Write([]byte(response))
	h.Write([]byte(strconv.FormatInt(now.UnixNano(), 10)))
	return Record{
		TraceID:   hex.EncodeToString(h.Sum(nil))[:traceIDLength],
		Operation: op,
		Claim:     claim,
		Verdict:   verdict,
		Reason:    reason,
		Timestamp: now.UTC(),
	}
}

// Summary counts records per verdict.
type Summary struct {
	SessionID string `json:"session_id"`
	Total     int    `json:"total"`
	Approved  int    `json:"approved"`
	Blocked   int    `json:"blocked"`
	Rejected  int    `json:"rejected"`
}

// Trail accumulates records for one session. It is never pruned.
type Trail struct {
	mu        sync.RWMutex
	sessionID string
	records   []Record
	now       func() time.Time
}

// NewTrail starts a session with a fresh id.
func NewTrail() *Trail {
	return &Trail{sessionID: uuid.NewString(), now: time.Now}
}

// SessionID returns the id assigned at construction.
func (t *Trail) SessionID() string {
	return t.sessionID
}

// Append adds a record.
func (t *Trail) Append(r Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, r)
}

// Records returns a copy of every record in append order.
func (t *Trail) Records() []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Summary counts the records on the trail.
func (t *Trail) Summary() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := Summary{SessionID: t.sessionID, Total: len(t.records)}
	for _, r := range t.records {
		switch r.Verdict {
		case Approved:
			s.Approved++
		case Blocked:
			s.Blocked++
		case Rejected:
			s.Rejected++
		}
	}
	return s
}

// RecordResult appends the outcome of a completed verification.
func (t *Trail) RecordResult(op, claim string, result guard.Result) (Record, error) {
	response, err := result.Canonical()
	if err != nil {
		return Record{}, err
	}
	verdict, reason := Approved, "verified against "+result.AuthoritativeValue
	if !result.Verified {
		verdict, reason = Blocked, result.Difference
	}
	r := NewRecord(op, claim, string(response), verdict, reason, t.now())
	t.Append(r)
	return r, nil
}

// RecordError appends a rejected claim. Errors other than malformed claims or
// invalid inputs are returned unrecorded.
func (t *Trail) RecordError(op, claim string, cause error) (Record, error) {
	if !errors.Is(cause, quantity.ErrMalformedClaim) && !errors.Is(cause, formula.ErrInvalidInput) {
		return Record{}, cause
	}
	r := NewRecord(op, claim, cause.Error(), Rejected, cause.Error(), t.now())
	t.Append(r)
	return r, nil
}
