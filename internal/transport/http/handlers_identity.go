package httptransport

import (
	"net/http"

	"loanintake/pkg/platform/httputil"
)

// handleIdentityLookup is the blur trigger of the identification number.
// Without both a type and a number the record's result stays empty.
func (h *Handler) handleIdentityLookup(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := m.LookupIdentity(r.Context(), list, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleIdentityResult(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := m.IdentityResult(list, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleIdentityProceed(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.ProceedIdentity(r.Context(), list, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeRecord(w, r, m, list, id)
}

func (h *Handler) handleIdentitySkip(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.SkipIdentity(list, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
