// ABOUTME: Error types and handling for the capture library
// ABOUTME: Translates core errors into typed library errors callers can branch on

package capturelib

import (
	"errors"
	"fmt"

	coreerrors "github.com/anhbatoichoi/content-capture-universe/core/errors"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeNetwork indicates the extraction service could not be reached
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeProtocol indicates the extraction service broke its response contract
	ErrorTypeProtocol ErrorType = "protocol"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "internal"

	// ErrorTypeConfiguration indicates a configuration error
	ErrorTypeConfiguration ErrorType = "configuration"
)

// Error represents a structured error from the library
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error with the given type and message
func NewError(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// WithCause adds a cause to the error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// ErrClientClosed is returned when operations are attempted on a closed client
var ErrClientClosed = NewError(ErrorTypeInternal, "client is closed")

// IsType reports whether err is a library error of the given type
func IsType(err error, t ErrorType) bool {
	var libErr *Error
	return errors.As(err, &libErr) && libErr.Type == t
}

// wrapError classifies a core error
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var libErr *Error
	if errors.As(err, &libErr) {
		return err
	}

	switch {
	case coreerrors.IsValidation(err):
		return NewError(ErrorTypeValidation, "invalid input").WithCause(err)
	case coreerrors.IsNotFound(err):
		return NewError(ErrorTypeNotFound, "not found").WithCause(err)
	case coreerrors.IsInvalidResponse(err):
		return NewError(ErrorTypeProtocol, "unexpected response from extraction service").WithCause(err)
	case coreerrors.IsTransport(err):
		return NewError(ErrorTypeNetwork, "extraction service request failed").WithCause(err)
	default:
		return NewError(ErrorTypeInternal, "operation failed").WithCause(err)
	}
}
