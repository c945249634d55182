// Package errors provides structured error types for the augment tool.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Caller contract violations (malformed boxes, out-of-range
//     crop points, non-positive scale factors, unknown operations)
//   - *NOT_FOUND: Resource not found
//   - NETWORK_*: Backend connectivity (cache, record store)
//   - INTERNAL_*: Unexpected internal errors
//
// Degenerate geometry is not an error: transforms return the sentinel box.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidScale, "scale factors must be positive: fx=%g", fx)
//	if errors.Is(err, errors.ErrCodeInvalidScale) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to reach %s", addr)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidBox    Code = "INVALID_BOX"
	ErrCodeInvalidExtent Code = "INVALID_EXTENT"
	ErrCodeInvalidCrop   Code = "INVALID_CROP"
	ErrCodeInvalidScale  Code = "INVALID_SCALE"
	ErrCodeInvalidAxis   Code = "INVALID_AXIS"
	ErrCodeInvalidOp     Code = "INVALID_OP"
	ErrCodeInvalidRecipe Code = "INVALID_RECIPE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeRecordNotFound Code = "RECORD_NOT_FOUND"

	// Backend errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// IsInvalid reports whether err carries any INVALID_* code, i.e. the caller
// broke an input contract.
func IsInvalid(err error) bool {
	return strings.HasPrefix(string(GetCode(err)), "INVALID_")
}

// IsNotFound reports whether err carries a NOT_FOUND family code.
func IsNotFound(err error) bool {
	return strings.HasSuffix(string(GetCode(err)), "NOT_FOUND")
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
