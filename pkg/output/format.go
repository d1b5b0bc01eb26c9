// Package output provides utilities for formatting and displaying verification results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/finance-guard/internal/dispatch"
	"github.com/iwvelando/finance-guard/pkg/audit"
	"github.com/iwvelando/finance-guard/pkg/constants"
)

// Write renders outcomes and the session summary in the named format.
func Write(w io.Writer, format string, outcomes []dispatch.Outcome, summary audit.Summary) error {
	switch format {
	case "", constants.OutputFormatPretty:
		PrettyFormat(w, outcomes, summary)
		return nil
	case constants.OutputFormatCSV:
		return CsvFormat(w, outcomes)
	case constants.OutputFormatJSON:
		return JSONFormat(w, outcomes, summary)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func computed(o dispatch.Outcome) string {
	if o.Result == nil {
		return "-"
	}
	return o.Result.AuthoritativeValue
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, outcomes []dispatch.Outcome, summary audit.Summary) {
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "--- Verification session %s ---\n", summary.SessionID)
	_, _ = fmt.Fprintf(w, "Trace            | Verdict  | Operation | Claim | Computed | Reason\n")
	_, _ = fmt.Fprintf(w, "_____            | _______  | _________ | _____ | ________ | ______\n")
	for _, o := range outcomes {
		r := o.Record
		_, _ = fmt.Fprintf(w, "%s | %-8s | %s | %s | %s | %s\n",
			r.TraceID, r.Verdict, r.Operation, r.Claim, computed(o), r.Reason)
	}
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = p.Fprintf(w, "%d claims: %d approved, %d blocked, %d rejected\n",
		summary.Total, summary.Approved, summary.Blocked, summary.Rejected)
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(w io.Writer, outcomes []dispatch.Outcome) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "trace_id", "operation", "claim", "computed", "verified", "verdict", "reason", "timestamp"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, o := range outcomes {
		r := o.Record
		verified := ""
		if o.Result != nil {
			verified = strconv.FormatBool(o.Result.Verified)
		}
		row := []string{
			o.ID, r.TraceID, r.Operation, r.Claim, computed(o), verified,
			string(r.Verdict), r.Reason, r.Timestamp.Format("2006-01-02T15:04:05.000000000Z07:00"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat outputs the outcomes and summary as one indented JSON document.
func JSONFormat(w io.Writer, outcomes []dispatch.Outcome, summary audit.Summary) error {
	if outcomes == nil {
		outcomes = []dispatch.Outcome{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Summary  audit.Summary      `json:"summary"`
		Outcomes []dispatch.Outcome `json:"outcomes"`
	}{summary, outcomes})
}
