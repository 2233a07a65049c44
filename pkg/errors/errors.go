package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
	// ErrorTypeExternal marks transient relation-store failures that survived
	// the retry budget
	ErrorTypeExternal ErrorType = "external"
	// ErrorTypePartial marks a multi-batch lookup where some batches failed;
	// callers proceed with the remainder, so this is logged, not returned
	ErrorTypePartial ErrorType = "partial"
	// ErrorTypeMalformed marks relation rows that violate the data model,
	// e.g. a ballot item with neither race nor measure
	ErrorTypeMalformed ErrorType = "malformed"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewExternalError creates a new external store error
func NewExternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// NewPartialError creates an error describing failed batches of a
// best-effort lookup
func NewPartialError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypePartial,
		Message:    message,
		StatusCode: http.StatusOK,
		Internal:   internal,
	}
}

// NewMalformedError creates an error describing a relation row that violates
// the data model
func NewMalformedError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeMalformed,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Details:    details,
	}
}

// StatusFor maps any error to its HTTP status code
func StatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is a not-found application error
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ErrorTypeNotFound
}
