// Package apperr declares the error kinds shared by the storage, auth and expense layers.
// Producers wrap one of the sentinels with fmt.Errorf("%w: ...") and callers branch on
// errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("validation error")
	// ErrConflict marks a uniqueness violation, such as a duplicate email.
	ErrConflict = errors.New("conflict")
	// ErrAuthFailure marks bad credentials.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrUnauthorized marks an ownership mismatch on mutate or delete.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks an identifier that does not resolve to a record.
	ErrNotFound = errors.New("not found")
)

// Validation returns an ErrValidation with a formatted detail message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming what was missing.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Unauthorized returns an ErrUnauthorized with a formatted detail message.
func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

// Conflict returns an ErrConflict with a formatted detail message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Kind returns the sentinel err wraps, or nil for unclassified errors.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrConflict, ErrAuthFailure, ErrUnauthorized, ErrNotFound} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
