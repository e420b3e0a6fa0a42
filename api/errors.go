package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	inverrors "github.com/jrsteele09/go-inventory-ui/internal/errors"
)

const (
	// ConnectionProblemMessage is what the user sees when the backend could not be reached at all
	ConnectionProblemMessage = "connection problem: unable to reach the server"
	SessionExpiredMessage    = "Your session has expired. Please log in again."
	InvalidResponseMessage   = "invalid server response"
)

// UnauthorizedError is returned for 401 and 403 responses. By the time a caller sees
// it the session store has already been cleared.
type UnauthorizedError struct {
	Status   int
	Endpoint string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized (%d) calling %s", e.Status, e.Endpoint)
}

func (e *UnauthorizedError) Unwrap() error {
	return inverrors.ErrNotAuthenticated
}

// ValidationError is a 4xx response carrying per-field messages
type ValidationError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Summary renders the field errors as "field: message; field: message" in field order
func (e *ValidationError) Summary() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return strings.Join(parts, "; ")
}

// HTTPError is any other non-2xx response
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NetworkError means the request never produced a response
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return ConnectionProblemMessage
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError is a 2xx response whose body is not valid JSON
type ParseError struct {
	Status int
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	return InvalidResponseMessage
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return inverrors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return inverrors.As(err, &target)
}

func IsNetwork(err error) bool {
	var target *NetworkError
	return inverrors.As(err, &target)
}

// StatusOf returns the HTTP status behind err, or 0 when there was no response
func StatusOf(err error) int {
	var (
		unauthorized *UnauthorizedError
		validation   *ValidationError
		httpErr      *HTTPError
		parseErr     *ParseError
	)
	switch {
	case inverrors.As(err, &unauthorized):
		return unauthorized.Status
	case inverrors.As(err, &validation):
		return validation.Status
	case inverrors.As(err, &httpErr):
		return httpErr.Status
	case inverrors.As(err, &parseErr):
		return parseErr.Status
	}
	return 0
}

// genericMessage is the fallback when the backend said nothing useful
func genericMessage(status int) string {
	return fmt.Sprintf("Error %d", status)
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
