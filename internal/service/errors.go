package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means an id or resume token resolved to nothing usable
	ErrNotFound = errors.New("not found")

	// ErrConflict means a unique constraint or one-way transition was violated
	ErrConflict = errors.New("conflict")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError reports client-fixable bad input. It is detected before any
// collaborator call and never reaches storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidation reports whether err is (or wraps) a ValidationError
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
