package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"loanintake/internal/application"
	"loanintake/pkg/platform/httputil"
)

type businessRequest struct {
	Type string `json:"type"`
}

type validateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var seed application.Seed
	if err := decode(r, &seed); err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.drafts.Create(r.Context(), seed)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, m.Snapshot())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m.Snapshot())
}

func (h *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.drafts.Discard(r.Context(), m.ID()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCatalogs(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m.Catalogs())
}

func (h *Handler) handleSetBusiness(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req businessRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := application.ParseBusinessType(req.Type)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.SetBusinessType(r.Context(), t); err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m.Snapshot())
}

func (h *Handler) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req fieldUpdate
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.UpdateSection(r.Context(), chi.URLParam(r, "section"), req.Field, req.Value); err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m.Snapshot())
}

// handleValidate reports the field errors without submitting. An invalid
// application is not an error response.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res := h.submitter.Validate(r.Context(), m)
	httputil.WriteJSON(w, http.StatusOK, validateResponse{Valid: res.Valid(), Errors: res.Errors})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	receipt, err := h.submitter.Submit(r.Context(), m)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, receipt)
}

