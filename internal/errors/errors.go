// Package errors provides coded errors shared by the reservation core and
// its transports.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure for callers.
type ErrorCode string

const (
	// ErrCodeInvalidInput marks a validation failure on create or update.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound marks an unknown reservation identifier.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeDuplicateBooking marks a clash with a confirmed reservation
	// for the same email, date and time.
	ErrCodeDuplicateBooking ErrorCode = "DUPLICATE_BOOKING"
	// ErrCodeAlreadyExists marks an identifier already present in a store.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeRateLimitExceeded marks a request rejected by the limiter.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeRequestInProgress marks a retry that arrived while the request
	// holding the same idempotency key is still running.
	ErrCodeRequestInProgress ErrorCode = "REQUEST_IN_PROGRESS"
	// ErrCodeInternal marks a backend failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError carries a code, a human readable message, an optional
// cause and optional context for logs.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is matches any StructuredError with the same code, so sentinel values
// like ErrNotFound work with errors.Is.
func (e *StructuredError) Is(target error) bool {
	var t *StructuredError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == ""
}

// New creates a StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{Code: code, Message: message}
}

// NewWithContext creates a StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{Code: code, Message: message, Context: context}
}

// Wrap wraps an existing error.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first StructuredError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// Sentinels for errors.Is; they match any error with the same code.
var (
	ErrInvalidInput     = &StructuredError{Code: ErrCodeInvalidInput}
	ErrNotFound         = &StructuredError{Code: ErrCodeNotFound}
	ErrDuplicateBooking = &StructuredError{Code: ErrCodeDuplicateBooking}
	ErrAlreadyExists    = &StructuredError{Code: ErrCodeAlreadyExists}
)
