package errors

import (
	"fmt"
)

// ErrorType classifies pipeline failures. Each stage of the pipeline has its
// own type so callers can decide how far a failure should propagate: loader
// and processor errors become user-visible warnings, forecast errors degrade
// to observed-only display, export errors disable a single download format.
type ErrorType string

const (
	ErrTypeLoad     ErrorType = "LOAD"
	ErrTypeJoin     ErrorType = "JOIN"
	ErrTypeForecast ErrorType = "FORECAST"
	ErrTypeExport   ErrorType = "EXPORT"
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeNotFound ErrorType = "NOT_FOUND"
)

// AppError is an application error with a typed kind and optional cause.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewLoadError creates an error for a missing or unparsable input file.
func NewLoadError(message string, cause error) *AppError {
	return NewAppError(ErrTypeLoad, message, cause)
}

// NewJoinError creates an error for a key mismatch between joined tables.
func NewJoinError(message string, cause error) *AppError {
	return NewAppError(ErrTypeJoin, message, cause)
}

// NewForecastError creates an error for a series the model cannot fit.
func NewForecastError(message string, cause error) *AppError {
	return NewAppError(ErrTypeForecast, message, cause)
}

// NewExportError creates an error for an unavailable or failed export.
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(resource string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), cause)
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if e, ok := err.(*AppError); ok {
			appErr = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return appErr != nil && appErr.Type == errType
}
