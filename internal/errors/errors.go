package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of browser error.
type ErrorCode string

const (
	// ErrCodeAuthExpired indicates the event store rejected the credential (HTTP 401).
	ErrCodeAuthExpired ErrorCode = "auth_expired"
	// ErrCodeRequestFailed indicates a non-2xx response or a transport failure.
	ErrCodeRequestFailed ErrorCode = "request_failed"
	// ErrCodeMalformedResponse indicates a 2xx response whose body could not be decoded.
	ErrCodeMalformedResponse ErrorCode = "malformed_response"
	// ErrCodeNotFound indicates the requested event does not exist.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeValidation indicates invalid input supplied by the caller.
	ErrCodeValidation ErrorCode = "validation"
)

// Sentinel errors shared across the browser.
var (
	// ErrMissingID is returned when a detail lookup is requested for a row without an identifier.
	ErrMissingID = errors.New("event id is required")
	// ErrNoCredential is returned when a request needs a credential and none is stored.
	ErrNoCredential = errors.New("no credential stored")
	// ErrInvalidCredentials is returned when a login probe is rejected.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AppError represents a structured browser error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message, suitable for the status line
	Message string
	// Status is the HTTP status that produced the error, zero for transport failures
	Status int
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// AuthExpired creates a new AuthExpired error.
func AuthExpired(message string) *AppError {
	return &AppError{
		Code:    ErrCodeAuthExpired,
		Message: message,
		Status:  401,
	}
}

// RequestFailed creates a new RequestFailed error for the given HTTP status.
func RequestFailed(status int, message string) *AppError {
	return &AppError{
		Code:    ErrCodeRequestFailed,
		Message: message,
		Status:  status,
	}
}

// MalformedResponse wraps a decode failure.
func MalformedResponse(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedResponse,
		Message: message,
		Cause:   err,
	}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
		Status:  404,
	}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsAuthExpired checks if an error is an AuthExpired error.
func IsAuthExpired(err error) bool {
	return isCode(err, ErrCodeAuthExpired)
}

// IsRequestFailed reports whether callers should treat err as a failed request.
// Malformed responses and missing events count as failed requests.
func IsRequestFailed(err error) bool {
	return isCode(err, ErrCodeRequestFailed) ||
		isCode(err, ErrCodeMalformedResponse) ||
		isCode(err, ErrCodeNotFound)
}

// IsMalformedResponse checks if an error is a MalformedResponse error.
func IsMalformedResponse(err error) bool {
	return isCode(err, ErrCodeMalformedResponse)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// UserMessage returns the text shown on the status line for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}
