// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Workflow errors.
	ErrInvalidTransition = errors.New("invalid transition")
	ErrTerminalState     = errors.New("claim is in a terminal state")
	ErrValidation        = errors.New("validation failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// TransitionError describes a (role, status, intent) triple that is not allowed.
type TransitionError struct {
	Role   string
	Status string
	Intent string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot %s a claim in status %s",
		ErrInvalidTransition, e.Role, e.Intent, e.Status)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NewValidationError wraps ErrValidation with a field-specific message.
func NewValidationError(field, msg string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, msg)
}

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

// Describe maps workflow errors to a short message suitable for a status line.
func Describe(err error) string {
	var userErr *UserError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &userErr):
		return userErr.UserMessage
	case errors.Is(err, ErrTerminalState):
		return "This claim is closed or rejected; only comments can be added."
	case errors.Is(err, ErrInvalidTransition):
		return "That action is not available for your role at this stage."
	case errors.Is(err, ErrValidation):
		return err.Error()
	case errors.Is(err, ErrNotFound):
		return "No claim with that id."
	default:
		return err.Error()
	}
}
