// Package apperr defines the error taxonomy shared by every handler.
//
// Errors are tagged at the point of failure (a sanitizer rejecting a field, a
// store translating a duplicate-key write) so that classification is a plain
// type match instead of message inspection. Status is total: every error maps
// to exactly one HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports a rejected payload or field. Field holds the
// diagnostic path ("item.name", "payload.lines[2]").
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf constructs a ValidationError with a formatted message.
func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// DuplicateError reports a unique-index conflict on a resource.
type DuplicateError struct {
	Resource string
	Message  string
}

func (e *DuplicateError) Error() string { return e.Message }

// Duplicate constructs a DuplicateError with a caller-facing message.
func Duplicate(resource, message string) *DuplicateError {
	return &DuplicateError{Resource: resource, Message: message}
}

// NotFoundError reports a well-formed identifier with no matching record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// NotFound constructs a NotFoundError.
func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// UnavailableError reports that the storage backend is not ready. Callers are
// directed to the health endpoint rather than retrying blindly.
type UnavailableError struct{}

func (e *UnavailableError) Error() string {
	return "database unavailable, check /health"
}

// Unavailable constructs an UnavailableError.
func Unavailable() *UnavailableError { return &UnavailableError{} }

// Status maps any error to its HTTP status code. Unrecognized errors are
// internal failures; their text is never sent to the caller.
func Status(err error) int {
	var (
		validation  *ValidationError
		duplicate   *DuplicateError
		notFound    *NotFoundError
		unavailable *UnavailableError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Issues returns structured error detail for programmatic clients, or nil
// when the error carries none.
func Issues(err error) map[string]any {
	var (
		validation *ValidationError
		duplicate  *DuplicateError
		notFound   *NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return map[string]any{"kind": "validation", "field": validation.Field}
	case errors.As(err, &duplicate):
		return map[string]any{"kind": "duplicate", "resource": duplicate.Resource}
	case errors.As(err, &notFound):
		return map[string]any{"kind": "not_found", "resource": notFound.Resource}
	default:
		return nil
	}
}

// Message returns the caller-facing message for err, substituting fallback
// for errors whose text must not leak (internal failures).
func Message(err error, fallback string) string {
	if Status(err) == http.StatusInternalServerError {
		return fallback
	}
	return err.Error()
}
