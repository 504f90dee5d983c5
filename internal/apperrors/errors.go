// Package apperrors defines the error kinds surfaced to API callers
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the caller
type Kind int

const (
	// KindInternal is an unexpected failure. Its detail is logged, never returned.
	KindInternal Kind = iota
	// KindInvalidInput is a malformed or out of range request
	KindInvalidInput
	// KindUnauthorized is a missing, invalid or expired token, or a token for a vanished user
	KindUnauthorized
	// KindInvalidCredentials is a failed login, whatever the reason
	KindInvalidCredentials
	// KindPermissionDenied is an authenticated caller acting outside its role
	KindPermissionDenied
	// KindNotFound is a referenced entity that does not exist
	KindNotFound
	// KindEmptyResult is a valid query that matched nothing
	KindEmptyResult
	// KindConflict is a write that collides with existing data
	KindConflict
	// KindInsufficientFunds is a debit larger than the remaining balance
	KindInsufficientFunds
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindEmptyResult:
		return "empty_result"
	case KindConflict:
		return "conflict"
	case KindInsufficientFunds:
		return "insufficient_funds"
	default:
		return "internal"
	}
}

// Error carries a kind, a caller-facing message and the underlying cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status for the error kind
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindInvalidInput, KindConflict, KindInsufficientFunds:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidCredentials, KindPermissionDenied:
		return http.StatusForbidden
	case KindNotFound, KindEmptyResult:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// KindOf returns the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func newError(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// InvalidInput returns a KindInvalidInput error
func InvalidInput(message string) error { return newError(KindInvalidInput, message, nil) }

// Unauthorized returns a KindUnauthorized error
func Unauthorized(err error) error {
	return newError(KindUnauthorized, "Could not validate credentials", err)
}

// InvalidCredentials returns the single error used for every failed login
func InvalidCredentials() error { return newError(KindInvalidCredentials, "Invalid Credentials", nil) }

// PermissionDenied returns a KindPermissionDenied error
func PermissionDenied(message string) error { return newError(KindPermissionDenied, message, nil) }

// NotFound returns a KindNotFound error
func NotFound(message string) error { return newError(KindNotFound, message, nil) }

// EmptyResult returns a KindEmptyResult error
func EmptyResult(message string) error { return newError(KindEmptyResult, message, nil) }

// Conflict returns a KindConflict error
func Conflict(message string, err error) error { return newError(KindConflict, message, err) }

// InsufficientFunds returns a KindInsufficientFunds error
func InsufficientFunds() error {
	return newError(KindInsufficientFunds, "You don't have enough balance to place this bet", nil)
}

// Internal wraps an unexpected failure
func Internal(err error) error { return newError(KindInternal, "Internal server error", err) }

// Response renders err for an API caller. Internal and foreign errors never leak their detail.
func Response(err error) (int, map[string]string) {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		return http.StatusInternalServerError, map[string]string{
			"error": "Internal server error",
			"kind":  KindInternal.String(),
		}
	}
	return appErr.StatusCode(), map[string]string{
		"error": appErr.Message,
		"kind":  appErr.Kind.String(),
	}
}
