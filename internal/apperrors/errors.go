// Package apperrors defines the error kinds the storage and validation
// layers hand back to the HTTP layer.
//
// Callers match on the sentinels with errors.Is and reach the details with
// errors.As:
//
//	ErrValidation          — input rejected before touching the database
//	ErrNotFound            — an id does not exist (NotFoundError says which entity)
//	ErrConstraintViolation — the database refused a write (unique / foreign key)
//
// Anything that matches none of them is an infrastructure failure and is
// reported as a generic error.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
)

// Entity names used in NotFoundError and ConstraintError.
const (
	EntityStudent    = "student"
	EntityCourse     = "course"
	EntityEnrollment = "enrollment"
)

// NotFoundError reports that no row of Entity has the given ID.
type NotFoundError struct {
	Entity string
	ID     int64
}

// NewNotFoundError returns a *NotFoundError for entity/id.
func NewNotFoundError(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConstraintError is returned when the database rejects a write.
//
// Message is safe to show to API clients ("email already exists").
// Constraint holds the column list reported by SQLite, e.g. "students.email".
// Err keeps the driver error for logs.
type ConstraintError struct {
	Entity     string
	Constraint string
	Message    string
	Err        error
}

// NewConstraintError wraps a driver error into a *ConstraintError.
func NewConstraintError(entity, constraint, message string, err error) error {
	return &ConstraintError{
		Entity:     entity,
		Constraint: constraint,
		Message:    message,
		Err:        err,
	}
}

func (e *ConstraintError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrConstraintViolation.Error()
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("field %s %s", e.Field, e.Reason)
}

// ValidationErrors collects every rejected field of a payload.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, ", ")
}

func (errs ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Field returns the first error reported for field, if any.
func (errs ValidationErrors) Field(field string) (ValidationError, bool) {
	for _, e := range errs {
		if e.Field == field {
			return e, true
		}
	}
	return ValidationError{}, false
}
