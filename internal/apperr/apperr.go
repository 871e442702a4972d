// Package apperr carries operational errors from handlers and middleware to
// a single echo error handler.
//
// An operational error is an expected failure (bad input, failed login,
// missing document) whose message is safe to show to clients. Every other
// error is a programming or infrastructure fault; in production its details
// are logged and the client only sees a generic message.
package apperr

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// Error is an operational error with an HTTP status.
type Error struct {
	StatusCode  int
	Status      string // "failed" for 4xx, "error" otherwise
	Message     string
	Operational bool
	Cause       error
	Stack       string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an operational error.
func New(code int, message string) *Error {
	return &Error{
		StatusCode:  code,
		Status:      statusFor(code),
		Message:     message,
		Operational: true,
		Stack:       string(debug.Stack()),
	}
}

// Wrap returns an operational error caused by err.
func Wrap(err error, code int, message string) *Error {
	e := New(code, message)
	e.Cause = err
	return e
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }

// Internal marks err as a non-operational failure. Its message is only
// shown in development.
func Internal(err error, message string) *Error {
	e := Wrap(err, http.StatusInternalServerError, message)
	e.Operational = false
	return e
}

func statusFor(code int) string {
	if code >= 400 && code < 500 {
		return "failed"
	}
	return "error"
}
