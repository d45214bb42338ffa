package api

import (
	"errors"
	"net/http"
)

// FailureKind classifies an API failure for the UI layer.
type FailureKind string

const (
	// FailureNetwork covers transport errors, timeouts and 5xx
	// responses. Retryable.
	FailureNetwork FailureKind = "network"
	// FailureValidation covers rejected requests (capacity exceeded,
	// out of stock, bad payload). Not retryable; shown to the user.
	FailureValidation FailureKind = "validation"
	// FailureAuth covers missing or expired credentials. Surfaced by
	// redirecting to login, not shown inline.
	FailureAuth FailureKind = "auth"
	// FailureNotFound covers stale references, e.g. removing a cart
	// item that is already gone.
	FailureNotFound FailureKind = "not_found"
)

// APIError represents a storefront backend error response or a
// transport-level failure (Status 0).
type APIError struct {
	Status  int
	Message string
	Kind    FailureKind
	cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Retryable reports whether retrying the same request can succeed.
func (e *APIError) Retryable() bool {
	return e.Kind == FailureNetwork
}

func classifyStatus(status int) FailureKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return FailureAuth
	case status == http.StatusNotFound:
		return FailureNotFound
	case status >= 400 && status < 500:
		return FailureValidation
	default:
		return FailureNetwork
	}
}

func networkError(msg string, cause error) *APIError {
	return &APIError{Message: msg, Kind: FailureNetwork, cause: cause}
}

func authError(msg string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: msg, Kind: FailureAuth}
}

func kindOf(err error) (FailureKind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return "", false
}

// IsAuthFailure reports whether err is a credential problem.
func IsAuthFailure(err error) bool {
	k, ok := kindOf(err)
	return ok && k == FailureAuth
}

// IsNotFound reports whether err is a stale-reference failure.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == FailureNotFound
}

// IsValidation reports whether err is a user-facing rejection.
func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == FailureValidation
}

// IsRetryable reports whether err is a transient network failure.
// Unclassified errors count as retryable network failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	k, ok := kindOf(err)
	return !ok || k == FailureNetwork
}
