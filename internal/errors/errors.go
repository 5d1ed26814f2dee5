// Package errors provides custom error types for the whiskerion chat client.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common cases
var (
	ErrNoAPIKey           = errors.New("no API key configured")
	ErrNoContent          = errors.New("no content in response")
	ErrSessionUnavailable = errors.New("chat session unavailable")
)

// APIError represents a failed call to the conversation API
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// SessionError represents a failure to establish the chat session.
// It is fatal for the lifetime of the process.
type SessionError struct {
	Model string
	Err   error
}

func (e *SessionError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("failed to create chat session: %v", e.Err)
	}
	return fmt.Sprintf("failed to create chat session for %s: %v", e.Model, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *SessionError) Is(target error) bool {
	if target == ErrSessionUnavailable {
		return true
	}
	_, ok := target.(*SessionError)
	return ok
}

// NewSessionError creates a new SessionError
func NewSessionError(model string, err error) *SessionError {
	return &SessionError{Model: model, Err: err}
}

// IsSessionError reports whether err is a session creation failure
func IsSessionError(err error) bool {
	var se *SessionError
	return errors.As(err, &se)
}

// GetHTTPStatus returns the HTTP status carried by an APIError in the chain, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsAuthError reports whether err indicates a missing or rejected credential
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNoAPIKey) {
		return true
	}
	status := GetHTTPStatus(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// IsRateLimitError reports whether err indicates the API quota was exhausted
func IsRateLimitError(err error) bool {
	return GetHTTPStatus(err) == http.StatusTooManyRequests
}
