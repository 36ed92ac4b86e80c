package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a single JSON:API error object.
type APIError struct {
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	Code   string `json:"code,omitempty"   yaml:"code,omitempty"`
	Title  string `json:"title,omitempty"  yaml:"title,omitempty"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Title != "" && e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	case e.Detail != "":
		return e.Detail
	case e.Title != "":
		return e.Title
	case e.Code != "":
		return e.Code
	default:
		return "unknown error"
	}
}

// ErrorDocument is the JSON:API error response body.
type ErrorDocument struct {
	Errors []APIError `json:"errors"`
}

// ResponseError is the structured error returned for every non-2xx response.
// Errors is nil unless the body was a JSON:API error document.
type ResponseError struct {
	Message    string     `json:"message"          yaml:"message"`
	StatusCode int        `json:"status"           yaml:"status"`
	Errors     []APIError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// NewResponseError creates a structured error. The errors slice is copied.
func NewResponseError(message string, statusCode int, apiErrors []APIError) *ResponseError {
	var copied []APIError
	if apiErrors != nil {
		copied = make([]APIError, len(apiErrors))
		copy(copied, apiErrors)
	}

	return &ResponseError{
		Message:    message,
		StatusCode: statusCode,
		Errors:     copied,
	}
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return e.Message
}

// FirstError returns the first error or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// Common static errors that can be wrapped with context.
var (
	ErrCircuitBreakerOpen  = errors.New("circuit breaker is open")
	ErrConfigRequired      = errors.New("config is required")
	ErrAPIEndpointRequired = errors.New("API endpoint is required")
	ErrNoContent           = errors.New("response has no content")
	ErrUnexpected          = errors.New("an unexpected error occurred")
)

// AsResponseError returns the structured error wrapped in err, if any.
func AsResponseError(err error) (*ResponseError, bool) {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr, true
	}

	return nil, false
}

// HasStatus checks if err is a structured error with the given status code.
func HasStatus(err error, statusCode int) bool {
	respErr, ok := AsResponseError(err)

	return ok && respErr.StatusCode == statusCode
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return HasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return HasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return HasStatus(err, http.StatusForbidden)
}

// IsServerError checks if the error is a structured error with a 5xx status.
func IsServerError(err error) bool {
	respErr, ok := AsResponseError(err)

	return ok && respErr.StatusCode >= http.StatusInternalServerError
}

// ParseErrorDocument parses a JSON:API error document.
func ParseErrorDocument(data []byte) (*ErrorDocument, error) {
	var doc ErrorDocument

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal error document: %w", err)
	}

	return &doc, nil
}
