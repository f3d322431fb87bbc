// Package domainerrors carries the error taxonomy shared by services and
// transports. Services attach a Code; transports map the code to a status.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure independently of the transport.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_error"
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTooLarge           Code = "payload_too_large"
	CodeForbidden          Code = "forbidden"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"
)

// Error is a coded domain error. Message is safe to show to callers unless
// the code is CodeInternal.
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

// New returns a coded error without an underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to err. A nil err yields a plain coded error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// Coder is implemented by typed component errors that map onto a Code
// without being wrapped in an *Error.
type Coder interface {
	error
	Code() Code
}

// HasCode reports whether the outermost coded error in the chain carries code.
func HasCode(err error, code Code) bool {
	c, ok := codeOf(err)
	return ok && c == code
}

func codeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	var c Coder
	if errors.As(err, &c) {
		return c.Code(), true
	}
	return "", false
}

// Is is shorthand for HasCode, kept for handler readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries none.
func CodeOf(err error) Code {
	if c, ok := codeOf(err); ok {
		return c
	}
	return CodeInternal
}

// MessageOf returns the caller-facing message of the outermost coded error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	var c Coder
	if errors.As(err, &c) {
		return c.Error()
	}
	return ""
}
