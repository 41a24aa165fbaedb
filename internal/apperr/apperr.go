// Package apperr defines the error taxonomy shared by the query pipeline,
// metadata store, and agent orchestrator. Handlers in internal/httpapi are
// the only place that maps a Code to an HTTP status; core packages never
// import net/http.
package apperr

import (
	"errors"
	"fmt"
)

// Code categorizes an application error for status mapping and logging.
type Code string

const (
	Unauthenticated       Code = "unauthenticated"
	Forbidden             Code = "forbidden"
	NotFound              Code = "not_found"
	ValidationError       Code = "validation_error"
	QuotaExceeded         Code = "quota_exceeded"
	ContextWindowExceeded Code = "context_window_exceeded"
	ProviderError         Code = "provider_error"
	ToolError             Code = "tool_error"
	Internal              Code = "internal"
)

// Error is the structured error type returned across package boundaries.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs an Error that carries an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// As extracts an *Error from err's chain, if present.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err's chain contains an *Error with the given code.
func Is(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

func Unauthenticatedf(format string, args ...any) *Error {
	return New(Unauthenticated, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...any) *Error {
	return New(Forbidden, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

func ValidationErrorf(format string, args ...any) *Error {
	return New(ValidationError, fmt.Sprintf(format, args...))
}

func QuotaExceededf(format string, args ...any) *Error {
	return New(QuotaExceeded, fmt.Sprintf(format, args...))
}
