// Package domainerrors carries the error taxonomy shared by services and transports.
//
// Services return *Error values with a Code; transports translate codes into status
// codes and messages. Infrastructure facts (not found, unavailable) live in
// pkg/platform/sentinel and are translated into codes at the service boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeBadRequest    Code = "bad_request"
	CodeValidation    Code = "validation_error"
	CodeInvalidInput  Code = "invalid_input"
	CodeUnauthorized  Code = "unauthorized"
	CodeForbidden     Code = "forbidden"
	CodeNotFound      Code = "not_found"
	CodeConflict      Code = "conflict"
	CodeConfiguration Code = "configuration_error"
	CodeUnavailable   Code = "unavailable"
	CodeTimeout       Code = "timeout"
	CodeInternal      Code = "internal_error"
)

// Error is a coded domain error. Message is safe to show to callers unless the
// code is CodeInternal.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in the chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
