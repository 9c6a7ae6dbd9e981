package submission

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"loanintake/internal/application"
	"loanintake/internal/platform/logger"
	"loanintake/internal/platform/metrics"
	"loanintake/internal/reference"
	"loanintake/internal/upstream"
	"loanintake/internal/validation"
	dErrors "loanintake/pkg/domain-errors"
)

var tracer = otel.Tracer("loanintake/submission")

// DefaultFailureMessage is shown when the endpoint gave no message of its own.
const DefaultFailureMessage = "the application could not be submitted, please try again"

// Endpoint receives assembled applications.
type Endpoint interface {
	Submit(ctx context.Context, p Payload) (*Receipt, error)
}

// Validator evaluates an application snapshot.
type Validator interface {
	Validate(ctx context.Context, app *application.Application, catalogs reference.Catalogs) validation.Result
}

// Service gates submission on validation and sends accepted applications.
type Service struct {
	validator Validator
	endpoint  Endpoint
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(validator Validator, endpoint Endpoint, opts ...Option) (*Service, error) {
	if validator == nil {
		return nil, errors.New("validator is required")
	}
	if endpoint == nil {
		return nil, errors.New("endpoint is required")
	}
	s := &Service{validator: validator, endpoint: endpoint, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Validate evaluates the draft and writes the per-record errors back to it.
func (s *Service) Validate(ctx context.Context, m *application.Manager) validation.Result {
	res := s.validator.Validate(ctx, m.Snapshot(), m.Catalogs())
	m.ApplyErrors(res.ByRecord)
	return res
}

// Submit validates the draft and, when it is clean, sends it. A blocked or
// failed submission leaves the draft as it was apart from its error maps.
func (s *Service) Submit(ctx context.Context, m *application.Manager) (*Receipt, error) {
	ctx, span := tracer.Start(ctx, "submission.Submit",
		trace.WithAttributes(attribute.String("application_id", m.ID().String())))
	defer span.End()

	snapshot := m.Snapshot()
	res := s.validator.Validate(ctx, snapshot, m.Catalogs())
	m.ApplyErrors(res.ByRecord)
	if !res.Valid() {
		s.metrics.IncrementSubmissionBlocked()
		span.SetAttributes(attribute.Int("invalid_fields", len(res.Errors)))
		span.SetStatus(codes.Error, "validation failed")
		s.logger.InfoContext(ctx, "submission blocked by validation",
			"application_id", m.ID().String(), "invalid_fields", len(res.Errors))
		return nil, res.Err()
	}

	payload := Assemble(snapshot)
	span.SetAttributes(attribute.Int("fields", len(payload.Fields)), attribute.Int("files", len(payload.Files)))

	receipt, err := s.endpoint.Submit(ctx, payload)
	if err != nil {
		s.metrics.IncrementSubmission("failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		s.logger.ErrorContext(ctx, "submission failed",
			"application_id", m.ID().String(),
			"category", upstream.GetCategory(err),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeSubmissionFailed, failureMessage(err))
	}

	s.metrics.IncrementSubmission("accepted")
	s.logger.InfoContext(ctx, "application submitted",
		"application_id", m.ID().String(), "reference", receipt.Reference)
	return receipt, nil
}

// failureMessage returns the endpoint's own text verbatim when it answered.
// Transport failures carry no such text.
func failureMessage(err error) string {
	var pe *upstream.ProviderError
	if errors.As(err, &pe) && pe.Underlying == nil && pe.Message != "" {
		return pe.Message
	}
	return DefaultFailureMessage
}
