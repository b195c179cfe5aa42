package banksdk

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Stable error codes surfaced by the SDK.
const (
	ErrorCodeAuthentication    = "authentication_failed"
	ErrorCodeSessionActivation = "session_activation_failed"
	ErrorCodeTANTimeout        = "tan_timeout"
	ErrorCodeTokenExpired      = "token_expired"
	ErrorCodeNetworkTimeout    = "network_timeout"
	ErrorCodeValidation        = "validation_failed"
	ErrorCodeServer            = "server_error"
	ErrorCodeAccountNotFound   = "account_not_found"
	ErrorCodeTokenStorage      = "token_storage_failed"
	ErrorCodeRequestFailed     = "request_failed"
)

// Error is the base error kind for everything the SDK returns.
// Callers match against the predefined Err... variables with errors.Is.
type Error struct {
	// Code is the stable SDK error code (e.g. "tan_timeout")
	Code string

	// StatusCode is the HTTP status that produced this error, 0 if none
	StatusCode int

	// Message is a human-readable description of the error
	Message string

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same code.
// This makes errors.Is(err, ErrTANTimeout) match any TAN timeout,
// regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Predefined errors, one per taxonomy entry.
var (
	// ErrAuthentication is returned when the initial credential grant or
	// the TAN challenge setup is rejected by the bank.
	ErrAuthentication = &Error{Code: ErrorCodeAuthentication, Message: "authentication failed"}

	// ErrSessionActivation is returned when the session lookup, the
	// post-TAN activation, or the secondary token exchange fails.
	ErrSessionActivation = &Error{Code: ErrorCodeSessionActivation, Message: "session activation failed"}

	// ErrTANTimeout is returned when no TAN approval arrives within the
	// configured approval window.
	ErrTANTimeout = &Error{Code: ErrorCodeTANTimeout, Message: "TAN approval timed out"}

	// ErrTokenExpired is returned when no valid credential is available
	// and it could not be recovered by a refresh.
	ErrTokenExpired = &Error{Code: ErrorCodeTokenExpired, Message: "access token expired"}

	// ErrNetworkTimeout is returned when an HTTP exchange times out.
	ErrNetworkTimeout = &Error{Code: ErrorCodeNetworkTimeout, Message: "request timed out"}

	// ErrValidation is returned for HTTP 422 responses.
	ErrValidation = &Error{Code: ErrorCodeValidation, Message: "request validation failed"}

	// ErrServer is returned for HTTP 5xx responses.
	ErrServer = &Error{Code: ErrorCodeServer, Message: "bank reported a server error"}

	// ErrAccountNotFound is returned for HTTP 404 on account-scoped paths.
	ErrAccountNotFound = &Error{Code: ErrorCodeAccountNotFound, Message: "account not found"}

	// ErrTokenStorage is returned for persistence failures. It is always
	// non-fatal: callers may log it and continue without persistence.
	ErrTokenStorage = &Error{Code: ErrorCodeTokenStorage, Message: "token storage failed"}
)

// newError derives a concrete error from one of the predefined kinds.
func newError(kind *Error, statusCode int, message string, cause error) *Error {
	return &Error{
		Code:       kind.Code,
		StatusCode: statusCode,
		Message:    message,
		cause:      cause,
	}
}

// mapTransportError converts a transport-level failure into an SDK error.
// Timeouts (deadline exceeded or net.Error timeouts) become ErrNetworkTimeout.
func mapTransportError(err error, message string) *Error {
	if isTimeout(err) {
		return newError(ErrNetworkTimeout, 0, message, err)
	}
	return newError(ErrServer, 0, message, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
