package identity

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"loanintake/internal/platform/logger"
	"loanintake/internal/platform/metrics"
	"loanintake/internal/upstream"
	"loanintake/pkg/domain"
	dErrors "loanintake/pkg/domain-errors"
)

var tracer = otel.Tracer("loanintake/identity")

// Verifier is the identity verification service.
type Verifier interface {
	Lookup(ctx context.Context, req LookupRequest) (*LookupResponse, error)
}

// Status is the tri-state outcome of a lookup. The zero value means no
// lookup is held for the record.
type Status string

const (
	StatusNone      Status = ""
	StatusSearching Status = "searching"
	StatusFound     Status = "found"
	StatusNotFound  Status = "not_found"
)

// Result is the lookup state of one record.
type Result struct {
	Status Status        `json:"status"`
	Record *MappedRecord `json:"record,omitempty"`
}

// Ticket is an issued lookup. Only the most recent ticket of a record may
// set its result.
type Ticket struct {
	Record    domain.RecordID
	RequestID domain.RequestID
	Request   LookupRequest
}

type lookupState struct {
	requestID domain.RequestID
	result    Result
}

// Workflow holds the lookup result of every record in one application.
type Workflow struct {
	verifier Verifier
	mu       sync.Mutex
	states   map[domain.RecordID]*lookupState
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Workflow)

func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workflow) { w.metrics = m }
}

func NewWorkflow(verifier Verifier, opts ...Option) *Workflow {
	w := &Workflow{
		verifier: verifier,
		states:   make(map[domain.RecordID]*lookupState),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Trigger starts a lookup when both the identification type and number are
// present. The record's result becomes searching and any earlier lookup for
// it is superseded. ok is false when the inputs are incomplete.
func (w *Workflow) Trigger(record domain.RecordID, identificationType, identificationNumber string) (Ticket, bool) {
	identificationType = strings.TrimSpace(identificationType)
	identificationNumber = strings.TrimSpace(identificationNumber)
	if identificationType == "" || identificationNumber == "" {
		return Ticket{}, false
	}
	ticket := Ticket{
		Record:    record,
		RequestID: domain.NewRequestID(),
		Request:   NewLookupRequest(identificationType, identificationNumber),
	}
	w.mu.Lock()
	w.states[record] = &lookupState{requestID: ticket.RequestID, result: Result{Status: StatusSearching}}
	w.mu.Unlock()
	return ticket, true
}

// Run performs the lookup of ticket and records its outcome unless a later
// trigger, skip or removal superseded it. It reports whether the outcome was
// kept.
func (w *Workflow) Run(ctx context.Context, ticket Ticket) bool {
	ctx, span := tracer.Start(ctx, "identity.Lookup",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("record_id", ticket.Record.String()),
			attribute.String("request_id", ticket.RequestID.String()),
			attribute.String("identification_type", ticket.Request.IdentificationTypePKCode),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := w.verifier.Lookup(ctx, ticket.Request)

	result := Result{Status: StatusNotFound}
	outcome := string(StatusNotFound)
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		w.logger.WarnContext(ctx, "identity lookup failed",
			"record_id", ticket.Record.String(),
			"request_id", ticket.RequestID.String(),
			"category", upstream.GetCategory(err),
			"error", err,
		)
	case resp.Usable():
		mapped := Map(*resp.Record)
		result = Result{Status: StatusFound, Record: &mapped}
		outcome = string(StatusFound)
		span.SetStatus(codes.Ok, "")
	default:
		span.SetStatus(codes.Ok, "")
	}
	w.metrics.ObserveIdentityLookup(outcome, start)

	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.states[ticket.Record]
	if !ok || state.requestID != ticket.RequestID {
		span.SetAttributes(attribute.Bool("stale", true))
		w.logger.DebugContext(ctx, "discarded stale identity response",
			"record_id", ticket.Record.String(),
			"request_id", ticket.RequestID.String(),
		)
		w.metrics.IncrementStaleDiscarded("identity")
		return false
	}
	state.result = result
	return true
}

// Lookup triggers and runs a lookup in one call.
func (w *Workflow) Lookup(ctx context.Context, record domain.RecordID, identificationType, identificationNumber string) (Result, bool) {
	ticket, ok := w.Trigger(record, identificationType, identificationNumber)
	if !ok {
		return w.Result(record), false
	}
	w.Run(ctx, ticket)
	return w.Result(record), true
}

// Result returns the lookup state of record.
func (w *Workflow) Result(record domain.RecordID) Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	if state, ok := w.states[record]; ok {
		return state.result
	}
	return Result{}
}

// Accept hands over the found record for merging and clears the result.
func (w *Workflow) Accept(record domain.RecordID) (MappedRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.states[record]
	if !ok || state.result.Status != StatusFound || state.result.Record == nil {
		return MappedRecord{}, dErrors.New(dErrors.CodeConflict, "no verified identity record to proceed with")
	}
	delete(w.states, record)
	return *state.result.Record, nil
}

// Skip declines the lookup result without touching the record. An in-flight
// lookup for the record is discarded on arrival.
func (w *Workflow) Skip(record domain.RecordID) {
	w.Forget(record)
}

// Forget drops any lookup state of record.
func (w *Workflow) Forget(record domain.RecordID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.states, record)
}
