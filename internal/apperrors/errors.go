// Package apperrors defines the recoverable error kinds returned by the query
// and mutation layers.
package apperrors

import "fmt"

// Error allows declaring sentinel errors as constants.
type Error string

func (err Error) Error() string { return string(err) }

const (
	ErrValidation           Error = "validation failed"
	ErrNotFound             Error = "not found"
	ErrReferentialIntegrity Error = "referential integrity violation"
)

// ValidationError reports bad or missing input, including duplicate unique keys.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced id that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s #%d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ReferentialIntegrityError reports a delete blocked by a restrict relation.
type ReferentialIntegrityError struct {
	Entity       string
	ID           int64
	ReferencedBy string
	Count        int64
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s #%d is referenced by %d %s row(s)", e.Entity, e.ID, e.Count, e.ReferencedBy)
}

func (e *ReferentialIntegrityError) Is(target error) bool { return target == ErrReferentialIntegrity }
