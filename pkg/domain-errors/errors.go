// Package errors provides the coded error taxonomy every lifecycle operation
// returns. Services never leak raw store errors: they translate sentinels and
// infrastructure failures into one of these codes so transports can map them
// to responses without inspecting error strings.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers and the HTTP layer.
type Code string

const (
	// CodeNotFound covers absent entities and entities hidden from the
	// caller by ownership rules (no existence leakage).
	CodeNotFound Code = "not_found"
	// CodeUnauthorized means the acting identity is missing or invalid.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden means the identity is valid but lacks rights.
	CodeForbidden Code = "forbidden"
	// CodeInvalidTransition covers status-machine and business-rule
	// violations: illegal state changes, bad date ordering, non-positive
	// money, future incident dates.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeValidation covers malformed input caught before the store.
	CodeValidation Code = "validation_failed"
	// CodeInvalidInput covers malformed primitives (ids, enums) at parse time.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest covers structurally broken requests (no body, bad JSON).
	CodeBadRequest Code = "bad_request"
	// CodeConflict covers uniqueness and concurrent-update conflicts.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks a broken model invariant detected by a
	// constructor or transition guard. Services usually convert these to
	// CodeValidation or CodeInvalidTransition before returning.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeTimeout covers cancelled or deadline-exceeded work.
	CodeTimeout Code = "timeout"
	// CodeInternal is the only alert-worthy code. Details are logged, never
	// exposed to the caller.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Message is safe to show callers for every
// code except CodeInternal.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is / errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	for errors.As(err, &domainErr) {
		if domainErr.Code == code {
			return true
		}
		err = domainErr.cause
		domainErr = nil
	}
	return false
}

// Is is a readability alias for HasCode used at call sites that test a
// single expected outcome.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code carried by err, or CodeInternal when
// err carries none. Transports rely on the kind always being determinable.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
