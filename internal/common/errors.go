// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")

	// Account-data provider errors.
	ErrPlaidConnection     = errors.New("plaid connection failed")
	ErrPlaidRateLimit      = errors.New("plaid rate limit exceeded")
	ErrInvalidAccount      = errors.New("invalid account")
	ErrProviderUnavailable = errors.New("account data provider unavailable")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrPlaidRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}

// HTTPStatusError classifies a non-2xx response from an upstream API. Server
// errors and 429s are retryable; other client errors are not.
func HTTPStatusError(service string, status int) error {
	err := fmt.Errorf("%s returned HTTP %d", service, status)
	switch {
	case status == http.StatusTooManyRequests:
		return &RetryableError{Err: fmt.Errorf("%w: %w", ErrRateLimit, err), Retryable: true}
	case status >= http.StatusInternalServerError:
		return &RetryableError{Err: fmt.Errorf("%w: %w", ErrProviderUnavailable, err), Retryable: true}
	default:
		return &RetryableError{Err: err, Retryable: false}
	}
}
