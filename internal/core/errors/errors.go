// Package errors defines the error taxonomy shared by the workflow gateways.
//
// Local failures (ValidationError, ExpiryError) are raised before any network
// call. Remote failures (RemoteError, TransportError) come back from the Event
// or Auth Service. None of them are fatal to a workflow session.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrActionInProgress = errors.New("another action is already in progress")
	ErrSessionClosed    = errors.New("workflow session is closed")
	ErrSessionInvalid   = errors.New("session is no longer valid, please log in again")
	ErrNotAuthenticated = errors.New("not logged in")
	ErrNotFound         = errors.New("resource not found")
)

// Kind classifies an error for reporting.
type Kind string

const (
	KindValidation Kind = "validation"
	KindExpiry     Kind = "expiry"
	KindRemote     Kind = "remote"
	KindTransport  Kind = "transport"
	KindBusy       Kind = "busy"
	KindClosed     Kind = "closed"
	KindUnknown    Kind = "unknown"
)

// ValidationError is malformed local input: bad OTP format, missing photo,
// missing geolocation, locked step.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ExpiryError means the OTP challenge ran out of validity before verification.
type ExpiryError struct {
	Message string
}

func (e *ExpiryError) Error() string { return e.Message }

// RemoteError is a failure reported by the remote service.
type RemoteError struct {
	StatusCode int
	Message    string // server-supplied, may be empty
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote error (%d)", e.StatusCode)
}

// Unwrap maps auth and lookup failures onto sentinels so callers can use errors.Is.
func (e *RemoteError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrSessionInvalid
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// TransportError is a network-level failure (unreachable, timeout, bad body).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Validation returns a ValidationError with the given message.
func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Expiry returns an ExpiryError with the given message.
func Expiry(message string) error {
	return &ExpiryError{Message: message}
}

// Transport wraps a network failure for the named operation.
func Transport(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// KindOf classifies err. Nil errors have no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var (
		validation *ValidationError
		expiry     *ExpiryError
		remote     *RemoteError
		transport  *TransportError
	)
	switch {
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &expiry):
		return KindExpiry
	case errors.As(err, &remote):
		return KindRemote
	case errors.As(err, &transport):
		return KindTransport
	case errors.Is(err, ErrActionInProgress):
		return KindBusy
	case errors.Is(err, ErrSessionClosed):
		return KindClosed
	}
	return KindUnknown
}

// IsLocal reports whether err was raised before any network call.
func IsLocal(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindExpiry, KindBusy, KindClosed:
		return true
	}
	return false
}

// UserMessage picks the message shown to the vendor: local errors carry their
// own text, remote errors prefer the server's message, everything else falls
// back to the per-action message.
func UserMessage(err error, fallback string) string {
	var (
		validation *ValidationError
		expiry     *ExpiryError
		remote     *RemoteError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &expiry):
		return expiry.Message
	case errors.As(err, &remote) && remote.Message != "":
		return remote.Message
	case errors.Is(err, ErrActionInProgress):
		return "Please wait for the current action to finish"
	}
	return fallback
}
