package httpapi

import (
	"errors"
	"net/http"

	"github.com/pwielgus/cashplan/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }

// serviceError maps domain sentinels onto HTTP statuses. Anything not
// recognized is a 500.
func serviceError(w http.ResponseWriter, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeErr(w, http.StatusNotFound, msg, "not_found")
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, msg, "invalid")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, msg, "conflict")
	case errors.Is(err, errs.ErrUnprocessable):
		writeErr(w, http.StatusUnprocessableEntity, msg, "unprocessable")
	case errors.Is(err, errs.ErrNoAccount):
		writeErr(w, http.StatusUnprocessableEntity, msg, "no_account")
	case errors.Is(err, errs.ErrNotRecurring):
		writeErr(w, http.StatusUnprocessableEntity, msg, "not_recurring")
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "")
	}
}
