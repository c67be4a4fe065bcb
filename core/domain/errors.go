package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrListNotFound    = errors.New("list not found")
	ErrDuplicateTask   = errors.New("task with this name already exists")
	ErrDuplicateList   = errors.New("list with this name already exists")
	ErrTaskLimit       = errors.New("active task limit reached")
	ErrEmptyName       = errors.New("name must not be empty")
	ErrTaskNameTooLong = errors.New("task name is too long")
	ErrListNameTooLong = errors.New("list name is too long")
	ErrUserExists      = errors.New("user already registered")
)

// ValidationError marks input the user can correct and resend.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Code satisfies the err_code convention used by handler logs.
func (e *ValidationError) Code() string { return "validation" }

// Invalid wraps err as a ValidationError for field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err is recoverable by asking the user again.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err signals a missing user, task or list.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrListNotFound)
}

// IsBusiness reports whether err is an expected outcome of user input rather than
// an infrastructure failure.
func IsBusiness(err error) bool {
	return IsValidation(err) || IsNotFound(err) ||
		errors.Is(err, ErrDuplicateTask) || errors.Is(err, ErrDuplicateList) ||
		errors.Is(err, ErrTaskLimit) || errors.Is(err, ErrUserExists)
}
