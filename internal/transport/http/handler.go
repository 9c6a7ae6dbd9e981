// Package httptransport exposes the loan intake engine as a JSON API. It is a
// thin layer: every decision is delegated to the application, validation and
// submission services.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loanintake/internal/application"
	"loanintake/internal/platform/logger"
	"loanintake/internal/platform/metrics"
	"loanintake/internal/platform/middleware"
	"loanintake/internal/submission"
	"loanintake/internal/validation"
	"loanintake/pkg/domain"
	dErrors "loanintake/pkg/domain-errors"
	"loanintake/pkg/platform/httputil"
)

// Drafts creates and finds application drafts.
type Drafts interface {
	Create(ctx context.Context, initial application.InitialStateProvider) (*application.Manager, error)
	Get(ctx context.Context, id domain.ApplicationID) (*application.Manager, error)
	Discard(ctx context.Context, id domain.ApplicationID) error
}

// Submitter validates and submits drafts.
type Submitter interface {
	Validate(ctx context.Context, m *application.Manager) validation.Result
	Submit(ctx context.Context, m *application.Manager) (*submission.Receipt, error)
}

// Handler serves the application endpoints.
type Handler struct {
	drafts         Drafts
	submitter      Submitter
	maxUploadBytes int64
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// New builds a Handler. maxUploadBytes bounds how much of an upload is read;
// the file gate makes the accept decision.
func New(drafts Drafts, submitter Submitter, maxUploadBytes int64, opts ...Option) *Handler {
	h := &Handler{
		drafts:         drafts,
		submitter:      submitter,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes on r.
func (h *Handler) Register(r chi.Router) {
	api := chi.NewRouter()
	api.Use(middleware.Recovery(h.logger))
	api.Use(middleware.RequestID)
	api.Use(middleware.RequestTime)
	api.Use(middleware.Logger(h.logger))
	api.Use(middleware.Latency(h.metrics))

	api.Route("/applications", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Route("/{applicationID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleDiscard)
			r.Get("/catalogs", h.handleCatalogs)
			r.Put("/business", h.handleSetBusiness)
			r.Patch("/sections/{section}", h.handleUpdateSection)
			r.Post("/validate", h.handleValidate)
			r.Post("/submit", h.handleSubmit)

			r.Post("/lists/{list}", h.handleAddRecord)
			r.Route("/lists/{list}/{recordID}", func(r chi.Router) {
				r.Get("/", h.handleGetRecord)
				r.Patch("/", h.handleUpdateRecord)
				r.Delete("/", h.handleRemoveRecord)
				r.Get("/gewogs", h.handleGewogs)
				r.Get("/pep-sub-categories", h.handleSubCategories)

				r.Put("/files/{slot}", h.handleSetFile)
				r.Delete("/files/{slot}", h.handleClearFile)

				r.Post("/related-peps", h.handleAddRelatedPep)
				r.Patch("/related-peps/{rowID}", h.handleUpdateRelatedPep)
				r.Delete("/related-peps/{rowID}", h.handleRemoveRelatedPep)
				r.Put("/related-peps/{rowID}/proof", h.handleSetRelatedPepProof)

				r.Get("/identity", h.handleIdentityResult)
				r.Post("/identity/lookup", h.handleIdentityLookup)
				r.Post("/identity/proceed", h.handleIdentityProceed)
				r.Post("/identity/skip", h.handleIdentitySkip)
			})
		})
	})

	r.Mount("/", api)
}

type fieldUpdate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *Handler) manager(r *http.Request) (*application.Manager, error) {
	id, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		return nil, err
	}
	return h.drafts.Get(r.Context(), id)
}

// target resolves the manager, list and record named by the path.
func (h *Handler) target(r *http.Request) (*application.Manager, application.ListKind, domain.RecordID, error) {
	m, err := h.manager(r)
	if err != nil {
		return nil, "", domain.RecordID{}, err
	}
	list, err := application.ParseListKind(chi.URLParam(r, "list"))
	if err != nil {
		return nil, "", domain.RecordID{}, err
	}
	id, err := domain.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		return nil, "", domain.RecordID{}, err
	}
	return m, list, id, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// fail writes err and logs server-side failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal {
		h.logger.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
	}
	var failure *validation.Failure
	if errors.As(err, &failure) {
		httputil.WriteErrorWithFields(w, err, failure.Errors)
		return
	}
	httputil.WriteError(w, err)
}

func (h *Handler) writeRecord(w http.ResponseWriter, r *http.Request, m *application.Manager, list application.ListKind, id domain.RecordID) {
	rec, err := m.Record(list, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}
