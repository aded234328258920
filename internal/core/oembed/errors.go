package oembed

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when a required parameter is missing or malformed
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotResolved is returned when no pattern matches the URL or the match yields an empty id
	ErrNotResolved = errors.New("url does not reference a chart")

	// ErrUnauthorized is returned when the resolved chart may not be exposed.
	// Missing, deleted, unpublished, owner-disallowed and host-mismatched charts all map here.
	ErrUnauthorized = errors.New("chart is not available")

	// ErrUnsupportedFormat is returned when a format other than json is requested
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ValidationError describes a malformed request parameter.
// It matches ErrInvalidRequest under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// NewValidationError creates a validation error for a request field
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsNotFound reports whether err should surface as a uniform "not found"
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotResolved) || errors.Is(err, ErrUnauthorized)
}
