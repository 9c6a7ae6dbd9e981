package httptransport

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loanintake/internal/files"
	"loanintake/pkg/domain"
	dErrors "loanintake/pkg/domain-errors"
)

const uploadField = "file"

// readUpload reads the "file" part of a multipart request. At most one byte
// past the upload limit is read so that the gate can see an oversized file
// without the handler buffering all of it.
func (h *Handler) readUpload(r *http.Request) (files.Ref, error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes + 1); err != nil {
		return files.Ref{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "expected a multipart upload")
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return files.Ref{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "missing file part")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return files.Ref{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "read upload")
	}
	return files.Ref{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}, nil
}

func (h *Handler) handleSetFile(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	slot, err := files.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ref, err := h.readUpload(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.SetFile(r.Context(), list, id, slot, ref); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeRecord(w, r, m, list, id)
}

func (h *Handler) handleClearFile(w http.ResponseWriter, r *http.Request) {
	m, list, id, err := h.target(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	slot, err := files.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.ClearFile(r.Context(), list, id, slot); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeRecord(w, r, m, list, id)
}

func (h *Handler) handleSetRelatedPepProof(w http.ResponseWriter, r *http.Request) {
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
	ref, err := h.readUpload(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := m.SetRelatedPepProof(r.Context(), list, id, row, ref); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeRecord(w, r, m, list, id)
}
