package sitehost

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is returned when a site name yields an empty slug
	ErrInvalidName = errors.New("invalid name")
	// ErrConflict is returned when a slug is already taken, in any status
	ErrConflict = errors.New("conflict")
	// ErrForbiddenContent is returned when an upload contains a deny-listed file
	ErrForbiddenContent = errors.New("forbidden content")
	// ErrNotAllowed is returned when an upload contains a file type outside the allow-list
	ErrNotAllowed = errors.New("not allowed")
	// ErrNotFound is returned when a site or one of its files does not exist
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an unexpected storage or database error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when request input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrTimeout is returned when an operation exceeds its deadline; callers may retry
	ErrTimeout = errors.New("timeout")
	// ErrTooLarge is returned when an upload exceeds the configured size limit
	ErrTooLarge = errors.New("too large")
)

// PolicyError reports which upload entry violated the content policy.
// It unwraps to ErrForbiddenContent, ErrNotAllowed, or ErrTooLarge.
type PolicyError struct {
	Kind   error
	Name   string
	Reason string
}

func (e *PolicyError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Name, e.Reason)
}

func (e *PolicyError) Unwrap() error {
	return e.Kind
}

// isDomainError reports whether err already carries one of the package sentinels.
func isDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidName, ErrConflict, ErrForbiddenContent, ErrNotAllowed,
		ErrNotFound, ErrInternal, ErrInvalidInput, ErrTimeout, ErrTooLarge,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
