// Package apperr holds the failure taxonomy shared by the upstream client and
// the screen controllers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a screen already has a fetch or write in flight.
	ErrBusy = errors.New("screen busy")
	// ErrNotMounted is returned for work requested on a screen that was left.
	ErrNotMounted = errors.New("screen not mounted")
	// ErrNotReady is returned for a write requested before the screen has confirmed data.
	ErrNotReady = errors.New("screen not ready")
)

// NetworkError is a transport or status failure. StatusCode is 0 when no
// response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError means the upstream answered with a body that does not match the
// expected schema.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError is a local precondition failure. Nothing was sent upstream.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Retryable reports whether an explicit user retry can be offered for err.
func Retryable(err error) bool {
	var ne *NetworkError
	var de *DecodeError
	return errors.As(err, &ne) || errors.As(err, &de)
}

// StatusCode returns the upstream status carried by err, or 0.
func StatusCode(err error) int {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.StatusCode
	}
	return 0
}

// Kind names the failure class for view models and logs.
func Kind(err error) string {
	var (
		ne *NetworkError
		de *DecodeError
		ve *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ne):
		return "network"
	case errors.As(err, &de):
		return "decode"
	case errors.As(err, &ve):
		return "validation"
	default:
		return "unknown"
	}
}
