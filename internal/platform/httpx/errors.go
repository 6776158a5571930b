// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared by handlers and services. The not-found variants
// stay distinct so callers can tell a missing route from a missing record
// from a missing inline or parent.
var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrForbidden       = errors.New("permission denied")
	ErrRouteNotFound   = errors.New("model not found")
	ErrRecordNotFound  = errors.New("record not found")
	ErrInlineNotFound  = errors.New("inline model not found")
	ErrParentNotFound  = errors.New("parent object not found")
	ErrValidation      = errors.New("validation failed")
	ErrRepository      = errors.New("repository failure")
)

// StatusFor maps a domain error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrRouteNotFound),
		errors.Is(err, ErrRecordNotFound),
		errors.Is(err, ErrInlineNotFound),
		errors.Is(err, ErrParentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes the {"error": ...} body family used by the list and
// inline endpoints. Unexpected errors are redacted to a generic message.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	JSON(w, status, map[string]string{"error": msg})
}

// CodeBody is the legacy enveloped response shape kept for the batch delete
// and upload endpoints.
type CodeBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
}

// RespondCode writes a CodeBody envelope with HTTP 200, mirroring the
// original endpoints that carry the real status inside the body.
func RespondCode(w http.ResponseWriter, code int, message string, success bool) {
	JSON(w, http.StatusOK, CodeBody{Code: code, Message: message, Success: success})
}
