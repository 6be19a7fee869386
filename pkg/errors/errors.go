// Package errors provides structured error types for dashgrid.
//
// Every failure the layout subsystem reports falls into one of a few
// categories, each with a machine-readable [Code]:
//
//   - INVALID_*: malformed input (unknown topology, divider out of range,
//     proportion vectors that do not sum to 100)
//   - DRAG_ACTIVE: a drag was started while another one is in progress
//   - NOT_FOUND: a persisted layout does not exist
//   - NETWORK_ERROR, STORAGE_ERROR: persistence backends failed
//   - INTERNAL_ERROR: anything else
//
// The same codes are used by the CLI, the HTTP API and the stores, so a
// client can switch on [GetCode] instead of matching message strings.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidTopology, "unknown topology %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidTopology) {
//	    // programmer error: the topology was never registered
//	}
//
//	// Wrap backend errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidTopology    Code = "INVALID_TOPOLOGY"
	ErrCodeInvalidDivider     Code = "INVALID_DIVIDER"
	ErrCodeInvalidProportions Code = "INVALID_PROPORTIONS"
	ErrCodeInvalidGroup       Code = "INVALID_GROUP"

	// State errors
	ErrCodeDragActive Code = "DRAG_ACTIVE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Backend errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"
	ErrCodeStorage Code = "STORAGE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the HTTP status the API responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidDivider, ErrCodeInvalidProportions, ErrCodeInvalidGroup:
		return 400
	case ErrCodeNotFound, ErrCodeInvalidTopology:
		return 404
	case ErrCodeDragActive:
		return 409
	case ErrCodeTimeout:
		return 504
	case ErrCodeNetwork, ErrCodeStorage:
		return 502
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
