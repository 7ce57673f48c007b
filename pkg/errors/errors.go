package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status for the error middleware.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidDescriptor, ErrBadRequest:
		return http.StatusBadRequest
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthenticated
	ErrForbidden
	ErrInternal
	ErrInvalidDescriptor
	ErrPersistence
	ErrMalformedStoredData
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewInvalidDescriptor rejects a medication descriptor before any schedule
// is generated. Never persisted.
func NewInvalidDescriptor(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidDescriptor,
		Message: message,
		Err:     err,
	}
}

// NewUnauthenticated is returned when aggregation or a schedule mutation is
// requested with no signed-in caregiver.
func NewUnauthenticated(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthenticated,
		Message: "unauthenticated",
		Err:     err,
	}
}

// NewPersistence wraps a document store read/write failure. Multi-branch
// aggregation isolates these per branch instead of aborting.
func NewPersistence(op string, err error) *AppError {
	return &AppError{
		Code:    ErrPersistence,
		Message: fmt.Sprintf("storage operation %s failed", op),
		Err:     err,
	}
}

// NewMalformedStoredData marks a persisted schedule entry without a usable
// timestamp. Skipped with a warning, never fatal.
func NewMalformedStoredData(detail string) *AppError {
	return &AppError{
		Code:    ErrMalformedStoredData,
		Message: fmt.Sprintf("malformed stored data: %s", detail),
	}
}

// IsInvalidDescriptor reports whether err is an InvalidDescriptor error.
func IsInvalidDescriptor(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrInvalidDescriptor
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrNotFound
}
