// Package errors provides domain-specific error types and error handling utilities
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error type
type ErrorCode int

const (
	// Common error codes
	ErrUnknown ErrorCode = iota
	ErrInvalidInput
	ErrConfiguration
	ErrTimeout
	ErrCancelled

	// Guard error codes: preconditions for the swact sequence that were
	// not met. These always result in a clean no-op exit.
	ErrGuardFailed
	ErrWrongHost
	ErrNotProvisioned
	ErrVersionParity
	ErrHostNotFound

	// Lock error codes
	ErrLockBusy
	ErrLockTimeout

	// Tool error codes: an external collaborator returned non-zero
	ErrMountFailure
	ErrStagingFailure
	ErrManifestApply
	ErrServiceControl
)

// Error represents a domain-specific error with context
type Error struct {
	// Code identifies the error type
	Code ErrorCode

	// Message provides human-readable error details
	Message string

	// Op describes the operation that failed
	Op string

	// Cause is the underlying error that triggered this one
	Cause error

	// Context holds additional error context
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements the errors.Is interface
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithOp adds an operation name to the error
func WithOp(err error, op string) error {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok {
		return &Error{
			Code:    ErrUnknown,
			Message: err.Error(),
			Op:      op,
			Cause:   err,
		}
	}

	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Op:      op,
		Cause:   e.Cause,
		Context: e.Context,
	}
}

// WithContext adds context to the error
func WithContext(err error, context map[string]interface{}) error {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok {
		return &Error{
			Code:    ErrUnknown,
			Message: err.Error(),
			Cause:   err,
			Context: context,
		}
	}

	// Merge contexts if error already has context
	newContext := make(map[string]interface{})
	for k, v := range e.Context {
		newContext[k] = v
	}
	for k, v := range context {
		newContext[k] = v
	}

	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Op:      e.Op,
		Cause:   e.Cause,
		Context: newContext,
	}
}

// New creates a new Error
func New(code ErrorCode, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// GetCode returns the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ErrUnknown
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// GetContext returns the error context
func GetContext(err error) map[string]interface{} {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Context
	}
	return nil
}

// IsGuardFailure returns true if the error is any unmet precondition.
// Guard failures are expected conditions and never escalate past the log.
func IsGuardFailure(err error) bool {
	switch GetCode(err) {
	case ErrGuardFailed, ErrWrongHost, ErrNotProvisioned, ErrVersionParity, ErrHostNotFound:
		return true
	}
	return false
}

// IsLockTimeout returns true if the invocation lock wait hit its ceiling
func IsLockTimeout(err error) bool {
	return GetCode(err) == ErrLockTimeout
}

// IsToolFailure returns true if an external collaborator returned non-zero
func IsToolFailure(err error) bool {
	switch GetCode(err) {
	case ErrMountFailure, ErrStagingFailure, ErrManifestApply, ErrServiceControl:
		return true
	}
	return false
}

// IsTimeout returns true if the error is a timeout error
func IsTimeout(err error) bool {
	code := GetCode(err)
	return code == ErrTimeout || code == ErrLockTimeout
}

// IsCancelled returns true if the error is a cancelled error
func IsCancelled(err error) bool {
	return GetCode(err) == ErrCancelled
}
