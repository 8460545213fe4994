package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information.
// Code carries the HTTP status, or 0 when no response was received.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s error (code %d): %s [%s]", e.Type, e.Code, e.Message, e.URL)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error
func New(errorType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// FromStatus maps a non-2xx HTTP status to a typed error
func FromStatus(statusCode int, url string) *Error {
	e := &Error{
		Code:    statusCode,
		URL:     url,
		Message: http.StatusText(statusCode),
	}

	switch {
	case statusCode == http.StatusNotFound:
		e.Type = ErrorTypeNotFound
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		e.Type = ErrorTypeAuth
	case statusCode == http.StatusTooManyRequests:
		e.Type = ErrorTypeRateLimit
	case statusCode >= 500:
		e.Type = ErrorTypeServerError
	default:
		e.Type = ErrorTypeUnknown
	}

	if e.Message == "" {
		e.Message = fmt.Sprintf("unexpected status code: %d", statusCode)
	}

	return e
}

// As reports whether err is (or wraps) an *Error and returns it
func As(err error) (*Error, bool) {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a "not found" response
func IsNotFound(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Type == ErrorTypeNotFound
}

// IsForbidden reports whether err is an authentication rejection (401 or 403)
func IsForbidden(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Type == ErrorTypeAuth
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	if apiErr, ok := As(err); ok {
		return apiErr.Code
	}
	return 0
}
