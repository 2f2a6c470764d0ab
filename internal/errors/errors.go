package errors

import (
	stderrors "errors"
	"fmt"
)

// PrashnaError is the structured error type for Prashna.
// It provides rich context for error handling, logging, and user presentation.
type PrashnaError struct {
	// Code is the unique error code (e.g., "ERR_401_INVALID_INPUT").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Store, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *PrashnaError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *PrashnaError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with PrashnaError.
func (e *PrashnaError) Is(target error) bool {
	if t, ok := target.(*PrashnaError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *PrashnaError) WithDetail(key, value string) *PrashnaError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new PrashnaError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *PrashnaError {
	return &PrashnaError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a PrashnaError from an existing error.
// The error's message becomes the PrashnaError message.
func Wrap(code string, err error) *PrashnaError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *PrashnaError {
	return New(ErrCodeInvalidInput, message, cause)
}

// NetworkError creates a network-related error.
// Network errors are typically retryable.
func NetworkError(message string, cause error) *PrashnaError {
	return New(ErrCodeNetworkTimeout, message, cause)
}

// StoreError creates a storage-related error.
func StoreError(message string, cause error) *PrashnaError {
	return New(ErrCodeCollectionNotFound, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *PrashnaError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the chain contains a PrashnaError with Retryable set.
func IsRetryable(err error) bool {
	var pe *PrashnaError
	if stderrors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	var pe *PrashnaError
	if stderrors.As(err, &pe) {
		return pe.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a PrashnaError anywhere in the
// chain. Returns empty string if none is found.
func GetCode(err error) string {
	var pe *PrashnaError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// GetCategory extracts the category from a PrashnaError anywhere in
// the chain. Returns empty string if none is found.
func GetCategory(err error) Category {
	var pe *PrashnaError
	if stderrors.As(err, &pe) {
		return pe.Category
	}
	return ""
}
