// Package apperrors defines the typed error kinds returned by the
// directory core: validation, not-found, constraint-violation and
// data-integrity failures. Handlers map them to HTTP statuses.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports invalid input: bad coordinates, non-positive
// or oversized radius, activity depth exceeded.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a directly requested entity that does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// NotFound builds a NotFoundError for a resource id.
func NotFound(resource string, id int64) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConstraintViolationError reports a write blocked by a referential
// constraint, e.g. deleting a building that still has organizations.
type ConstraintViolationError struct {
	Reason string
}

func (e *ConstraintViolationError) Error() string { return e.Reason }

// ConstraintViolation builds a ConstraintViolationError.
func ConstraintViolation(format string, args ...interface{}) error {
	return &ConstraintViolationError{Reason: fmt.Sprintf(format, args...)}
}

// DataIntegrityError reports corrupted stored data detected on a read
// path, e.g. a cycle in the activity parent chain. It fails the single
// request deterministically instead of crashing the query path.
type DataIntegrityError struct {
	Reason string
}

func (e *DataIntegrityError) Error() string { return e.Reason }

// DataIntegrity builds a DataIntegrityError.
func DataIntegrity(format string, args ...interface{}) error {
	return &DataIntegrityError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsConstraintViolation reports whether err is (or wraps) a ConstraintViolationError.
func IsConstraintViolation(err error) bool {
	var e *ConstraintViolationError
	return errors.As(err, &e)
}

// IsDataIntegrity reports whether err is (or wraps) a DataIntegrityError.
func IsDataIntegrity(err error) bool {
	var e *DataIntegrityError
	return errors.As(err, &e)
}
