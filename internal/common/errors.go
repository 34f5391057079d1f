// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Session errors.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Input errors.
	ErrValidation = errors.New("validation failed")
	ErrInvalidID  = errors.New("invalid id")

	// Backend errors.
	ErrSoftFailure = errors.New("backend reported an error")
	ErrBusy        = errors.New("another request is already in flight")
	ErrNotFound    = errors.New("not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// ValidationError lists the form fields that failed client-side checks.
// No request is issued when one is returned.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error from one or more problems.
func NewValidationError(problems ...string) error {
	return &ValidationError{Problems: problems}
}

// SoftError is a failure the backend reported inside a successful response,
// such as an "error" field on an analysis result.
type SoftError struct {
	Message string
}

func (e *SoftError) Error() string {
	return e.Message
}

func (e *SoftError) Unwrap() error {
	return ErrSoftFailure
}

// NewSoftError wraps a backend-reported message.
func NewSoftError(message string) error {
	return &SoftError{Message: message}
}

// Message returns the text a notification should show for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	var softErr *SoftError
	if errors.As(err, &softErr) {
		return softErr.Message
	}

	return err.Error()
}

// IsSoft reports whether err is a backend-reported soft failure.
func IsSoft(err error) bool {
	return errors.Is(err, ErrSoftFailure)
}
