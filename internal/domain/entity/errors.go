package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNoMarker indicates that the insertion marker is absent from the document body.
	// It is a normal skip condition, not a failure; it is carried in Result.Err.
	ErrNoMarker = errors.New("insertion marker not found")

	// ErrOverBudget indicates that the cleaned body exceeds the prompt token budget
	// and the configured policy is to skip such documents.
	ErrOverBudget = errors.New("prompt exceeds token budget")

	// ErrInvalidConfig indicates that the run configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMalformedResponse indicates that the text-generation service answered
	// without usable text.
	ErrMalformedResponse = errors.New("malformed response from text-generation service")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalidConfig).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// IOError reports a failed file system operation on a document or the input directory.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ServiceError reports a failed call to the remote text-generation service
// (authentication, rate limit, network failure or malformed response).
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsIOError reports whether err is or wraps an *IOError.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

// IsServiceError reports whether err is or wraps a *ServiceError.
func IsServiceError(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr)
}
