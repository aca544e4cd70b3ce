// Package httpx provides the shared HTTP plumbing for API adapters:
// typed errors, retry with exponential backoff, rate-limit tracking, and
// structured logging.
package httpx

import (
	"fmt"
	"strings"
	"time"
)

// ErrorType represents the category of error that occurred.
type ErrorType int

const (
	ErrTypeAuthentication ErrorType = iota
	ErrTypeRateLimit
	ErrTypeServiceUnavailable
	ErrTypeInvalidRequest
	ErrTypeNotFound
	ErrTypeUnprocessable
	ErrTypeTimeout
	ErrTypeUnknown
)

// String returns a human-readable description of the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeServiceUnavailable:
		return "service unavailable"
	case ErrTypeInvalidRequest:
		return "invalid request"
	case ErrTypeNotFound:
		return "not found"
	case ErrTypeUnprocessable:
		return "unprocessable request"
	case ErrTypeTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// Error represents an API call failure with enough context to classify it.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Retryable  bool
	Operation  string

	// RetryAfter, when non-zero, is the server-specified delay from a
	// Retry-After header. It overrides the computed exponential backoff.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s (status: %d)", e.Operation, e.Type.String(), e.Message, e.StatusCode)
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsRetryable returns true if the error is retryable.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewTimeoutError creates an error for a network failure or timed-out call.
func NewTimeoutError(operation, message string) *Error {
	return &Error{
		Type:      ErrTypeTimeout,
		Message:   message,
		Retryable: true,
		Operation: operation,
	}
}

// RedactSecret replaces every occurrence of secret in message with "***".
// Error text that may carry a credential must pass through here before it
// is logged or returned.
func RedactSecret(message, secret string) string {
	if secret == "" {
		return message
	}
	return strings.ReplaceAll(message, secret, "***")
}
