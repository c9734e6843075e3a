package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a malformed request
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from an external collaborator
	ErrorTypeExternal ErrorType = "EXTERNAL"

	// ErrorTypeInvalidCorpus indicates the corpus snapshot is structurally unusable
	ErrorTypeInvalidCorpus ErrorType = "INVALID_CORPUS"

	// ErrorTypeMissingLookupTable indicates a required lookup table (postal codes) is absent
	ErrorTypeMissingLookupTable ErrorType = "MISSING_LOOKUP_TABLE"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: message,
		Err:     err,
	}
}

// NewInvalidCorpusError reports a snapshot that cannot be searched at all.
func NewInvalidCorpusError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidCorpus,
		Message: message,
		Err:     err,
	}
}

// NewMissingLookupTableError reports an absent lookup table.
func NewMissingLookupTableError(table string) *AppError {
	return &AppError{
		Type:    ErrorTypeMissingLookupTable,
		Message: fmt.Sprintf("%s table is not loaded", table),
	}
}

// TypeOf returns the ErrorType carried by err, or "" when err is not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsFatal reports whether err must abort a search request rather than degrade it.
func IsFatal(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeInvalidCorpus, ErrorTypeMissingLookupTable:
		return true
	}
	return false
}
