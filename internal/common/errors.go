// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Session errors.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Remote persistence errors.
	ErrRemoteRejected = errors.New("remote rejected request")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// NotFoundError reports that a referenced entity is missing.
func NotFoundError(kind string, id fmt.Stringer) error {
	return fmt.Errorf("%s %q: %w", kind, id.String(), ErrNotFound)
}

// RemoteError carries the status and detail message of a rejected remote call.
type RemoteError struct {
	Operation  string
	Detail     string
	StatusCode int
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Operation, e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d", e.Operation, e.StatusCode)
}

// Unwrap lets callers match RemoteError with errors.Is(err, ErrRemoteRejected).
// A 404 additionally matches ErrNotFound.
func (e *RemoteError) Unwrap() []error {
	if e.StatusCode == 404 {
		return []error{ErrRemoteRejected, ErrNotFound}
	}
	return []error{ErrRemoteRejected}
}

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
// Only transport failures and server-side errors are retryable; a remote that
// answered with a 4xx has made its decision.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrRateLimit) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.StatusCode >= 500
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
