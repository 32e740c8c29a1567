// Package errors provides standardized domain errors with codes for the watchlist API.
//
// Usage:
//
//	// In services - return typed errors
//	if token == nil {
//	    return errors.AuthRequired("not authenticated")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrFetchFailed) {
//	    // fall back to the cached snapshot
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeValidation     Code = "VALIDATION"
	CodeNotFound       Code = "NOT_FOUND"
	CodeAuthRequired   Code = "AUTH_REQUIRED"
	CodeFetchFailed    Code = "FETCH_FAILED"
	CodeNoCache        Code = "NO_CACHE"
	CodeMutationFailed Code = "MUTATION_FAILED"
	CodeStore          Code = "STORE_UNAVAILABLE"
	CodeInternal       Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAuthRequired:
		return http.StatusUnauthorized
	case CodeFetchFailed, CodeMutationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrValidation     = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound       = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAuthRequired   = &Error{Code: CodeAuthRequired, Message: "not authenticated"}
	ErrFetchFailed    = &Error{Code: CodeFetchFailed, Message: "remote fetch failed"}
	ErrNoCache        = &Error{Code: CodeNoCache, Message: "no cached data found"}
	ErrMutationFailed = &Error{Code: CodeMutationFailed, Message: "remote mutation failed"}
	ErrStore          = &Error{Code: CodeStore, Message: "store unavailable"}
	ErrInternal       = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// AuthRequired creates an authentication required error.
func AuthRequired(msg string) *Error {
	return &Error{Code: CodeAuthRequired, Message: msg}
}

// FetchFailed creates a remote fetch error carrying the remote's message.
func FetchFailed(msg string) *Error {
	return &Error{Code: CodeFetchFailed, Message: msg}
}

// NoCache creates a no-cached-data error.
func NoCache(msg string) *Error {
	return &Error{Code: CodeNoCache, Message: msg}
}

// MutationFailed creates a remote mutation error carrying the failing step's message.
func MutationFailed(msg string) *Error {
	return &Error{Code: CodeMutationFailed, Message: msg}
}

// MutationFailedf creates a remote mutation error with formatted message.
func MutationFailedf(format string, args ...any) *Error {
	return &Error{Code: CodeMutationFailed, Message: fmt.Sprintf(format, args...)}
}

// Store creates a store unavailable error.
func Store(msg string) *Error {
	return &Error{Code: CodeStore, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
