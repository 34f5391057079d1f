package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Transport-level errors.
var (
	// ErrUnauthorized is wrapped by every 401 response.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRequestFailed is wrapped when no response was received.
	ErrRequestFailed = errors.New("request failed")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Message    string
	Body       string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap exposes ErrUnauthorized for 401 responses.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
