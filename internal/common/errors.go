// Package common defines shared constants, sentinel errors, and small
// helpers used across movequote components. Callers should match sentinel
// errors with errors.Is and typed errors with errors.As.
package common

import (
	"errors"
	"fmt"
)

var (
	// Transport- and decoding-level errors.
	ErrNetwork  = errors.New("network error")
	ErrDecoding = errors.New("malformed response")

	// Repository/data-store errors.
	ErrNotFound = errors.New("not found")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many attempts")
	ErrSessionExpired     = errors.New("session expired")
	ErrRegistrationFailed = errors.New("registration failed")
)

// ServerError reports a non-2xx HTTP response from a remote service.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

// ValidationError reports a client-side input rejection. It is raised before
// any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
