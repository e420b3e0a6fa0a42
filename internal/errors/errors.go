package errors

import (
	"errors"
	"fmt"
)

// Common error types for the inventory front-end
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("insufficient role")
	ErrSessionStorage   = errors.New("session storage failure")
	ErrSessionChanged   = errors.New("session changed while the request was in flight")

	// Credential errors
	ErrEmptyCredentials = errors.New("username and password are required")
	ErrInvalidToken     = errors.New("invalid token")

	// Query errors
	ErrQueryDisabled = errors.New("query disabled")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Mark tags cause with sentinel under msg. Both stay reachable through Is and As.
func Mark(sentinel, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, sentinel, cause)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
