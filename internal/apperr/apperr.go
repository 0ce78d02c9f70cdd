// Package apperr defines the normalized error model for the import pipeline.
//
// Every failure that crosses a package boundary is coerced into one of two
// shapes before anything downstream sees it:
//
//   - AppError: infrastructure and application failures, carrying a stable
//     code and a retryability flag
//   - ImportError: row/column-addressed failures surfaced to the user
//
// This guarantees that catch sites deal with exactly one error shape and that
// every failure remains attributable to the input that triggered it.
package apperr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error codes grouped by category. Codes are stable identifiers: they appear
// in API responses and in the retry allow-list, so renaming one is a breaking
// change.
const (
	CodeNetworkError       = "NETWORK_ERROR"
	CodeTimeout            = "TIMEOUT"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeConnectionFailed   = "CONNECTION_FAILED"

	CodeDBConnectionFailed    = "DATABASE_CONNECTION_FAILED"
	CodeDBConstraintViolation = "DATABASE_CONSTRAINT_VIOLATION"
	CodeDBQueryFailed         = "DATABASE_QUERY_FAILED"

	CodeValidation = "VALIDATION_ERROR"
	CodeUnknown    = "UNKNOWN_ERROR"
)

// AppError is the normalized error type for all non-validation failures.
type AppError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Retryable bool           `json:"retryable"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an AppError with the given code and message.
func New(code, message string, retryable bool) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Retryable: retryable,
	}
}

// WithDetail attaches a key/value pair to the error's details and returns the
// error for chaining.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Normalize coerces an arbitrary value into an AppError.
//
// An existing AppError (possibly wrapped) passes through unchanged. A plain
// error or string is wrapped as non-retryable using its message. Anything
// else becomes an unknown error with the offending value preserved in
// details under "originalError".
func Normalize(v any) *AppError {
	switch err := v.(type) {
	case nil:
		return nil
	case *AppError:
		return err
	case error:
		var app *AppError
		if errors.As(err, &app) {
			return app
		}
		return New(CodeUnknown, err.Error(), false)
	case string:
		return New(CodeUnknown, err, false)
	default:
		return New(CodeUnknown, "unknown error", false).WithDetail("originalError", v)
	}
}

// FromDatabase classifies a raw database error by inspecting its text.
//
// Connection problems and timeouts are transient and marked retryable;
// constraint violations are permanent. Anything unrecognized becomes a
// generic retryable query failure. The operation name is recorded in details
// for observability.
func FromDatabase(err error, operation string) *AppError {
	if err == nil {
		return nil
	}

	var app *AppError
	if errors.As(err, &app) {
		return app
	}

	msg := strings.ToLower(err.Error())

	var out *AppError
	switch {
	case strings.Contains(msg, "connection"):
		out = New(CodeDBConnectionFailed, "database connection failed", true)
	case strings.Contains(msg, "timeout"):
		out = New(CodeTimeout, "database operation timed out", true)
	case strings.Contains(msg, "constraint"):
		out = New(CodeDBConstraintViolation, "database constraint violation", false)
	default:
		out = New(CodeDBQueryFailed, "database query failed", true)
	}

	return out.WithDetail("operation", operation).WithDetail("cause", err.Error())
}
