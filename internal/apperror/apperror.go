// Package apperror defines the typed outcome taxonomy shared by every layer.
//
// Services return these errors; the HTTP boundary translates them to status
// codes exactly once (see internal/handler/response.go). Inside the
// application they are plain error values checked with errors.Is, never
// panics or control-flow exceptions.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrNoChange        = errors.New("no change")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// AppError carries a sentinel kind plus the human-readable message returned
// to clients. Field optionally names the offending field (or, for login
// failures, the error tag the client keys on: "email" or "password").
type AppError struct {
	Err     error  // sentinel kind, matched with errors.Is
	Message string // human-readable error message
	Field   string // optional: field or tag causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that a resource (or its transitive parent) does not exist.
func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found.", resource),
	}
}

// ValidationFailed reports malformed input on a specific field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation on field. It covers both
// guard-detected conflicts and storage-level constraint violations that
// slip past the guard when two requests race on the same value.
func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// NoChange reports an update whose diffed change set is empty.
func NoChange() *AppError {
	return &AppError{
		Err:     ErrNoChange,
		Message: "No changes detected.",
	}
}

// Forbidden reports that the authenticated principal does not own the
// target resource. HTTP handlers map this to 403.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated reports a missing or failed authentication. The tag lets
// the login flow distinguish "email" from "password" failures for clients
// without changing the status code.
func Unauthenticated(tag, message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
		Field:   tag,
	}
}
