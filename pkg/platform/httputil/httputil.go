// Package httputil writes JSON responses and maps domain error codes to HTTP status.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "loanintake/pkg/domain-errors"
)

type errorBody struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status and writes {error, error_description}.
// Internal errors never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorWithFields(w, err, nil)
}

// WriteErrorWithFields is WriteError plus a per-field error map, used for
// validation failures.
func WriteErrorWithFields(w http.ResponseWriter, err error, fields map[string]string) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code), Fields: fields}
	if code != dErrors.CodeInternal {
		body.ErrorDescription = dErrors.MessageOf(err)
	}
	WriteJSON(w, StatusFor(code), body)
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeValidation, dErrors.CodeFileRejected:
		return http.StatusUnprocessableEntity
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeInvariantViolation:
		return http.StatusConflict
	case dErrors.CodeSubmissionFailed, dErrors.CodeLookupFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
