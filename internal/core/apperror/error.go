// Package apperror provides structured error handling for the console service.
// All errors surfaced to the console UI must use AppError for consistent,
// dismissible responses scoped to their point of origin.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by origin
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Engine errors, each scoped to one UI region (502 from the upstream gateway)
	CodeFetch  = "FETCH_ERROR"
	CodeOption = "OPTION_ERROR"
	CodeSubmit = "SUBMIT_ERROR"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"
)

// AppError is the standard error type for the console service.
// It implements the error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (entity, field, filter key, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewFetch creates a list-fetch error. Dismissible; the previously
// displayed rows are retained until the operator retries.
func NewFetch(entity string, err error) *AppError {
	return &AppError{
		Code:       CodeFetch,
		Message:    fmt.Sprintf("failed to load %s", entity),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"entity": entity},
		Err:        err,
	}
}

// NewOption creates an option-load error scoped to a single cache key.
func NewOption(key string, err error) *AppError {
	return &AppError{
		Code:       CodeOption,
		Message:    "failed to load options",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"key": key},
		Err:        err,
	}
}

// NewSubmit creates a create/update/toggle submit error. The open form
// keeps its entered values.
func NewSubmit(entity string, err error) *AppError {
	return &AppError{
		Code:       CodeSubmit,
		Message:    fmt.Sprintf("failed to save %s", entity),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"entity": entity},
		Err:        err,
	}
}

// NewTimeout creates a retryable timeout error for a gateway call that
// exceeded the configured deadline.
func NewTimeout(operation string, err error) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    fmt.Sprintf("%s timed out", operation),
		HTTPStatus: http.StatusGatewayTimeout,
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}
