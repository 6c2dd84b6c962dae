package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/sitehost"
)

// retryAfterSeconds is advertised on 503 responses caused by an operation
// timeout.
const retryAfterSeconds = "5"

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		OK:    false,
		Code:  errCode,
		Error: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// Policy violations name the offending entry; unexpected errors are logged
// and reported with a generic message.
func HandleError(w http.ResponseWriter, err error) {
	var policyErr *sitehost.PolicyError

	switch {
	case errors.Is(err, sitehost.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		slog.Warn("request timed out", "error", err)
		w.Header().Set("Retry-After", retryAfterSeconds)
		WriteError(w, http.StatusServiceUnavailable, "timeout", "Operation timed out, please retry")

	case errors.Is(err, context.Canceled):
		slog.Debug("request canceled", "error", err)
		WriteError(w, http.StatusServiceUnavailable, "canceled", "Request canceled")

	case errors.As(err, &policyErr) && errors.Is(err, sitehost.ErrTooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, "too_large", policyErr.Error())

	case errors.As(err, &policyErr) && errors.Is(err, sitehost.ErrForbiddenContent):
		WriteError(w, http.StatusBadRequest, "forbidden_content", policyErr.Error())

	case errors.As(err, &policyErr):
		WriteError(w, http.StatusBadRequest, "not_allowed", policyErr.Error())

	case errors.Is(err, sitehost.ErrTooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Upload too large")

	case errors.Is(err, sitehost.ErrInvalidName):
		WriteError(w, http.StatusBadRequest, "invalid_name", "Site name must contain at least one letter or digit")

	case errors.Is(err, sitehost.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", "A site with this name already exists")

	case errors.Is(err, sitehost.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Site not found")

	case errors.Is(err, sitehost.ErrForbiddenContent):
		WriteError(w, http.StatusBadRequest, "forbidden_content", "Upload contains forbidden content")

	case errors.Is(err, sitehost.ErrNotAllowed):
		WriteError(w, http.StatusBadRequest, "not_allowed", "Upload contains a file type that is not allowed")

	case errors.Is(err, sitehost.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid request")

	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
