// Package handler is the HTTP layer: request parsing, principal extraction
// and the response envelope. All business rules live in internal/service;
// handlers translate between HTTP and the service calls.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/garasiku/servicebook/internal/apperror"
)

// envelope is the response shape shared by every endpoint:
// {"success": bool, "message": ..., "data": ..., "error": ...}.
// Error carries a machine-readable tag when one exists ("email", "password",
// "no_change", or the offending field name).
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// errMissingPrincipal covers the impossible case of a protected handler
// running without a principal in context. Mapped to 401 like any other
// authentication failure.
var errMissingPrincipal = apperror.Unauthenticated("", "Invalid token")

// writeJSON sends a JSON response. Headers must be set before the first
// body write, so the order here is fixed.
func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeSuccess sends a success envelope.
func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// writeError maps a domain error to its HTTP status and sends the failure
// envelope. This is the only place domain errors meet status codes.
//
// Conflicts and rejected no-op updates are 400 like plain validation
// failures; the client distinguishes them by message and tag, not status.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		tag := appErr.Field

		switch {
		case errors.Is(err, apperror.ErrValidation),
			errors.Is(err, apperror.ErrConflict):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNoChange):
			status = http.StatusBadRequest
			tag = "no_change"
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}

		writeJSON(w, status, envelope{
			Success: false,
			Message: appErr.Message,
			Error:   tag,
		})
		return
	}

	// Unknown error: a generic 500 without internal details.
	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, envelope{
		Success: false,
		Message: "An internal error occurred.",
	})
}

// writeBadRequest sends a plain 400 failure with a message.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: message})
}

// pathID parses the {id} path parameter as a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
