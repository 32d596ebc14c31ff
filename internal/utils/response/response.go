// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Success responses carry the resource itself (a student, a list of courses,
// an enrollment). Error responses always use the same envelope, so clients
// only need one code path to show a failure:
//
//	{ "status": "error", "error": "email already exists" }
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-mgmt/internal/apperrors"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`  // human-readable error detail
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// internalErrorMessage replaces the text of unexpected errors. Driver and
// filesystem messages stay in the logs.
const internalErrorMessage = "internal server error"

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// NoContent writes a bodyless 204, used after a successful delete.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// GeneralError wraps any error into the standard Response shape. The
// message is sent as is, so only use it for errors meant for the client.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError turns the rejected fields of a payload into one
// Response, e.g.
//
//	{ "status": "error", "error": "field name is required, field age must be at least 0" }
func ValidationError(errs apperrors.ValidationErrors) Response {
	return Response{
		Status: StatusError,
		Error:  errs.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error maps an error returned by validation or storage to its HTTP status
// and writes the error envelope.
//
//	ValidationErrors       → 422 Unprocessable Entity
//	NotFoundError          → 404 Not Found
//	ConstraintError        → 400 Bad Request
//	anything else          → 500 Internal Server Error (generic message)
// ─────────────────────────────────────────────────────────────────────────────
func Error(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		slog.Error("unexpected error", slog.String("error", err.Error()))
		WriteJSON(w, status, GeneralError(errors.New(internalErrorMessage)))
		return
	}

	var validationErrs apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		WriteJSON(w, status, ValidationError(validationErrs))
		return
	}

	WriteJSON(w, status, GeneralError(clientError(err)))
}

// clientError strips any wrapping so the client sees "student not found"
// rather than the storage call chain.
func clientError(err error) error {
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		return notFound
	}
	var constraint *apperrors.ConstraintError
	if errors.As(err, &constraint) {
		return constraint
	}
	return err
}

// StatusCode reports the status Error would write for err.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConstraintViolation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
