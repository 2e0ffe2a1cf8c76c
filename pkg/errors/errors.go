package errors

import (
	"errors"
	"fmt"
)

// Generic error kinds shared by every layer

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates the request conflicts with current state
	ErrConflict = errors.New("conflict")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// User and Telegram verification errors

var (
	// ErrUserNotFound indicates the referenced user does not exist
	ErrUserNotFound = fmt.Errorf("user not found: %w", ErrNotFound)

	// ErrAlreadyVerified indicates the user already has a linked Telegram account
	ErrAlreadyVerified = fmt.Errorf("telegram account already verified: %w", ErrConflict)

	// ErrInvalidCode covers both an unknown code and a code issued to another user
	ErrInvalidCode = fmt.Errorf("invalid verification code: %w", ErrConflict)

	// ErrCodeExpired indicates the code existed but its TTL elapsed
	ErrCodeExpired = errors.New("verification code expired")
)

// Wish errors

var (
	// ErrWishNotFound indicates the referenced wish does not exist
	ErrWishNotFound = fmt.Errorf("wish not found: %w", ErrNotFound)

	// ErrInvalidFileFormat indicates an unsupported photo content type
	ErrInvalidFileFormat = errors.New("invalid file format")

	// ErrFileTooLarge indicates the photo exceeds the upload limit
	ErrFileTooLarge = errors.New("file size limit exceeded")
)

// Subscription errors

var (
	ErrCannotSubscribeToSelf = fmt.Errorf("cannot subscribe to yourself: %w", ErrInvalidInput)
	ErrAlreadySubscribed     = fmt.Errorf("already subscribed: %w", ErrConflict)
	ErrNotSubscribed         = fmt.Errorf("not subscribed: %w", ErrNotFound)
)

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap lets validation failures match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// MultiError collects errors from loops that must not stop on the first
// failure. Is and As match against every collected error.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	switch len(m.Errors) {
	case 0:
		return "no errors"
	case 1:
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors, first: %v", len(m.Errors), m.Errors[0])
}

func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add records err when it is not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// ErrorOrNil returns nil when nothing was collected
func (m *MultiError) ErrorOrNil() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}
