package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id resolves to no row.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID guards service entry points against non-positive ids.
	ErrInvalidID = errors.New("id must be a positive number")
	// ErrAuthorNotFound is the referential-integrity failure: a book
	// operation references an author that does not exist.
	ErrAuthorNotFound = errors.New("author does not exist")
	// ErrConflict maps unique-constraint violations (duplicate isbn).
	ErrConflict = errors.New("duplicate key")
)

// ValidationError reports the first business rule a request violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
