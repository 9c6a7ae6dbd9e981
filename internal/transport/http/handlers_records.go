package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"loanintake/internal/application"
	"loanintake/internal/geo"
	"loanintake/internal/pep"
	"loanintake/internal/reference"
	"loanintake/pkg/domain"
	"loanintake/pkg/platform/httputil"
)

type createdResponse struct {
	ID string `json:"id"`
}

type optionsResponse struct {
	Options []reference.Option `json:"options"`
}

func (h *Handler) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	m, err := h.manager(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := application.ParseListKind(chi.URLParam(r, "list"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := m.Add(r.Context(), list)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createdResponse{ID: id.String()})
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeRecord(w, r, m, list, id)
}

func (h *Handler) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req fieldUpdate
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.Update(r.Context(), list, id, req.Field, req.Value); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeRecord(w, r, m, list, id)
}

func (h *Handler) handleRemoveRecord(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.Remove(r.Context(), list, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGewogs serves the gewog options of ?block=permanent|current.
func (h *Handler) handleGewogs(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	block, err := geo.ParseBlock(r.URL.Query().Get("block"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	options, err := m.Gewogs(list, id, block)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, optionsResponse{Options: nonNil(options)})
}

// handleSubCategories serves the record's own PEP sub-category options, or a
// related row's with ?row=<id>.
func (h *Handler) handleSubCategories(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var row *domain.RowID
	if raw := r.URL.Query().Get("row"); raw != "" {
		parsed, err := domain.ParseRowID(raw)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		row = &parsed
	}
	options, err := m.SubCategories(list, id, row)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, optionsResponse{Options: nonNil(options)})
}

func (h *Handler) handleAddRelatedPep(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := m.AddRelatedPep(r.Context(), list, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createdResponse{ID: row.String()})
}

func (h *Handler) handleUpdateRelatedPep(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := domain.ParseRowID(chi.URLParam(r, "rowID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req fieldUpdate
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.UpdateRelatedPep(r.Context(), list, id, row, pep.RowField(req.Field), req.Value); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeRecord(w, r, m, list, id)
}

func (h *Handler) handleRemoveRelatedPep(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	row, err := domain.ParseRowID(chi.URLParam(r, "rowID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.RemoveRelatedPep(r.Context(), list, id, row); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(options []reference.Option) []reference.Option {
	if options == nil {
		return []reference.Option{}
	}
	return options
}
