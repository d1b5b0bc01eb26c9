// Package dispatch routes verification requests by operation id to the guard
// that handles them and records every outcome on the audit trail.
package dispatch

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iwvelando/finance-guard/pkg/audit"
	"github.com/iwvelando/finance-guard/pkg/formula"
	"github.com/iwvelando/finance-guard/pkg/guard"
)

// ErrUnknownOperation is returned for operation ids no guard handles.
var ErrUnknownOperation = errors.New("unknown operation")

// Claim is one verification request.
type Claim struct {
	ID        string         `json:"id,omitempty" yaml:"id,omitempty"`
	Operation string         `json:"operation" yaml:"operation"`
	Args      map[string]any `json:"args" yaml:"args"`
	Claim     string         `json:"claim" yaml:"claim"`
}

// Outcome pairs a verification result with its audit record. Result is nil
// when the claim was rejected.
type Outcome struct {
	ID     string        `json:"id,omitempty"`
	Result *guard.Result `json:"result,omitempty"`
	Record audit.Record  `json:"record"`
}

type handler func(args map[string]any, claim string) (guard.Result, error)

// Dispatcher decodes arguments into typed guard inputs and calls the guard.
type Dispatcher struct {
	logger   *zap.Logger
	trail    *audit.Trail
	handlers map[guard.Operation]handler
}

// New creates a Dispatcher over set that records to trail.
func New(logger *zap.Logger, set *guard.Set, trail *audit.Trail) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{logger: logger, trail: trail}
	d.handlers = map[guard.Operation]handler{
		guard.BondYTM:             bind(set.Bond.VerifyYTM),
		guard.BondDuration:        bind(set.Bond.VerifyDuration),
		guard.BondConvexity:       bind(set.Bond.VerifyConvexity),
		guard.BondAccruedInterest: bind(set.Bond.VerifyAccruedInterest),
		guard.BondDirtyPrice:      bind(set.Bond.VerifyDirtyPrice),

		guard.FXForwardRate:         bind(set.FX.VerifyForwardRate),
		guard.FXCrossRate:           bind(set.FX.VerifyCrossRate),
		guard.FXSwapPoints:          bind(set.FX.VerifySwapPoints),
		guard.FXNDFSettlement:       bind(set.FX.VerifyNDFSettlement),
		guard.FXCurrencyConversion:  bind(set.FX.VerifyCurrencyConversion),
		guard.FXTriangularArbitrage: bind(set.FX.VerifyTriangularArbitrage),

		guard.RiskVaR:               bind(set.Risk.VerifyVaR),
		guard.RiskBeta:              bind(set.Risk.VerifyBeta),
		guard.RiskSharpeRatio:       bind(set.Risk.VerifySharpeRatio),
		guard.RiskSortinoRatio:      bind(set.Risk.VerifySortinoRatio),
		guard.RiskMaxDrawdown:       bind(set.Risk.VerifyMaxDrawdown),
		guard.RiskExpectedShortfall: bind(set.Risk.VerifyExpectedShortfall),
		guard.RiskInformationRatio:  bind(set.Risk.VerifyInformationRatio),

		guard.ComplianceAMLFlag:         bind(set.Compliance.VerifyAMLFlag),
		guard.ComplianceRemittanceLimit: bind(set.Compliance.VerifyRemittanceLimit),
		guard.ComplianceLoanEligibility: bind(set.Compliance.VerifyLoanEligibility),

		guard.CalendarDayCountFraction: bind(set.Calendar.VerifyDayCountFraction),
		guard.CalendarAccrualDays:      bind(set.Calendar.VerifyAccrualDays),

		guard.DerivativesOptionPrice:   bind(set.Derivatives.VerifyOptionPrice),
		guard.DerivativesOptionDelta:   bind(set.Derivatives.VerifyOptionDelta),
		guard.DerivativesPutCallParity: bind(set.Derivatives.VerifyPutCallParity),

		guard.LendingLoanPayment: bind(set.Lending.VerifyLoanPayment),
		guard.LendingNPV:         bind(set.Lending.VerifyNPV),
	}
	return d
}

// bind adapts a typed guard method to the untyped handler signature.
func bind[T any](verify func(T, string) (guard.Result, error)) handler {
	return func(args map[string]any, claim string) (guard.Result, error) {
		var in T
		if err := decode(args, &in); err != nil {
			return guard.Result{}, err
		}
		return verify(in, claim)
	}
}

// decode copies args into out, converting "1000" to 1000 and rejecting keys
// out has no field for.
func decode(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "build argument decoder")
	}
	if err := decoder.Decode(args); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid arguments"), formula.ErrInvalidInput)
	}
	return nil
}

// Operations lists the operation ids the dispatcher handles, sorted.
func (d *Dispatcher) Operations() []string {
	ops := make([]string, 0, len(d.handlers))
	for op := range d.handlers {
		ops = append(ops, string(op))
	}
	sort.Strings(ops)
	return ops
}

// Verify runs one claim and records it. Malformed claims and invalid
// arguments are recorded as rejected and returned without error; an unknown
// operation is an error and is not recorded.
func (d *Dispatcher) Verify(op string, args map[string]any, claim string) (Outcome, error) {
	h, ok := d.handlers[guard.Operation(op)]
	if !ok {
		return Outcome{}, errors.Mark(errors.Newf("%q", op), ErrUnknownOperation)
	}

	result, err := h(args, claim)
	if err != nil {
		record, recErr := d.trail.RecordError(op, claim, err)
		if recErr != nil {
			return Outcome{}, recErr
		}
		d.logger.Info("claim rejected",
			zap.String("op", "dispatch.Verify"),
			zap.String("operation", op),
			zap.String("trace_id", record.TraceID),
			zap.Error(err),
		)
		return Outcome{Record: record}, nil
	}

	record, err := d.trail.RecordResult(op, claim, result)
	if err != nil {
		return Outcome{}, err
	}
	d.logger.Debug("claim verified",
		zap.String("op", "dispatch.Verify"),
		zap.String("operation", op),
		zap.String("trace_id", record.TraceID),
		zap.String("verdict", string(record.Verdict)),
	)
	return Outcome{Result: &result, Record: record}, nil
}

// VerifyBatch verifies claims concurrently with at most concurrency in
// flight. Outcomes are returned in input order. The first unknown operation or
// a cancelled context stops the batch.
func (d *Dispatcher) VerifyBatch(ctx context.Context, claims []Claim, concurrency int) ([]Outcome, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	outcomes := make([]Outcome, len(claims))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, c := range claims {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome, err := d.Verify(c.Operation, c.Args, c.Claim)
			if err != nil {
				return errors.Wrapf(err, "claim %d", i)
			}
			outcome.ID = c.ID
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
