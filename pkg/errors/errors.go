// Package errors defines the coded errors returned by the HTTP API.
//
// Predefined values are shared. The With* methods return copies, and Is
// compares codes, so errors.Is(ErrSongNotFound.WithError(cause), ErrSongNotFound)
// holds.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error represents a structured application error.
type Error struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	HTTPStatus int         `json:"-"`
	Details    interface{} `json:"details,omitempty"`
	Err        error       `json:"-"` // Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithError returns a copy of the error wrapping err.
func (e *Error) WithError(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// WithMessage returns a copy of the error with a different message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// New creates a new Error.
func New(code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Common error codes
const (
	// General errors
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

	// Authentication errors
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeIdentityMismatch   = "IDENTITY_MISMATCH"

	// User errors
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeUserAlreadyExists = "USER_ALREADY_EXISTS"
	ErrCodeUserSuspended     = "USER_SUSPENDED"

	// Resource errors
	ErrCodeSongNotFound     = "SONG_NOT_FOUND"
	ErrCodeRequestNotFound  = "REQUEST_NOT_FOUND"
	ErrCodeFeedbackNotFound = "FEEDBACK_NOT_FOUND"
	ErrCodeInvalidState     = "INVALID_STATE"

	// Validation errors
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeInvalidFormat    = "INVALID_FORMAT"

	// Service errors
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Predefined errors
var (
	ErrInternal        = New(ErrCodeInternal, "Internal server error", http.StatusInternalServerError)
	ErrNotFound        = New(ErrCodeNotFound, "Resource not found", http.StatusNotFound)
	ErrForbidden       = New(ErrCodeForbidden, "Access forbidden", http.StatusForbidden)
	ErrUnauthorized    = New(ErrCodeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrTooManyRequests = New(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests)
)

var (
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
	ErrTokenExpired       = New(ErrCodeTokenExpired, "Token has expired", http.StatusUnauthorized)
	ErrTokenInvalid       = New(ErrCodeTokenInvalid, "Invalid token", http.StatusUnauthorized)
	ErrIdentityMismatch   = New(ErrCodeIdentityMismatch, "Residence information does not match", http.StatusBadRequest)
)

var (
	ErrUserNotFound      = New(ErrCodeUserNotFound, "User not found", http.StatusNotFound)
	ErrUserAlreadyExists = New(ErrCodeUserAlreadyExists, "User already exists", http.StatusConflict)
	ErrUserSuspended     = New(ErrCodeUserSuspended, "User is suspended", http.StatusForbidden)
)

var (
	ErrSongNotFound     = New(ErrCodeSongNotFound, "Song not found", http.StatusNotFound)
	ErrRequestNotFound  = New(ErrCodeRequestNotFound, "Request not found", http.StatusNotFound)
	ErrFeedbackNotFound = New(ErrCodeFeedbackNotFound, "Feedback not found", http.StatusNotFound)
	ErrInvalidState     = New(ErrCodeInvalidState, "Request is no longer queued", http.StatusConflict)
)

var (
	ErrValidationFailed = New(ErrCodeValidationFailed, "Validation failed", http.StatusBadRequest)
	ErrInvalidInput     = New(ErrCodeInvalidInput, "Invalid input", http.StatusBadRequest)
	ErrInvalidFormat    = New(ErrCodeInvalidFormat, "Invalid format", http.StatusBadRequest)
)

var (
	ErrServiceUnavailable = New(ErrCodeServiceUnavailable, "Service temporarily unavailable", http.StatusServiceUnavailable)
)

// As extracts an application error anywhere in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsError reports whether err carries target's code.
func IsError(err error, target *Error) bool {
	return stderrors.Is(err, target)
}

// GetHTTPStatus returns the HTTP status code for an error.
// If the error is not an *Error, returns 500.
func GetHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	return appErr.HTTPStatus
}

// GetCode returns the error code for an error.
// If the error is not an *Error, returns INTERNAL_ERROR.
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	appErr, ok := As(err)
	if !ok {
		return ErrCodeInternal
	}
	return appErr.Code
}
