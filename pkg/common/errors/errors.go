package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")

	// Input shape errors.
	ErrMalformedLine = errors.New("malformed line")

	// Chain structure errors.
	ErrCycle                = errors.New("cycle detected")
	ErrDuplicatePredecessor = errors.New("duplicate predecessor")
	ErrSharedSuccessor      = errors.New("shared successor")
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitInternal  = 1
	ExitUsage     = 2
	ExitNotFound  = 3
	ExitMalformed = 4
	ExitChain     = 5
)

// AppError represents an application-specific error with a process exit code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapError maps a common error to an AppError with an appropriate exit code.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	// Check for existing AppError
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	// Map sentinel errors
	if errors.Is(err, ErrInvalidInput) {
		return NewAppError(ExitUsage, "Invalid arguments", err)
	}
	if errors.Is(err, ErrNotFound) {
		return NewAppError(ExitNotFound, "Input not found", err)
	}
	if errors.Is(err, ErrMalformedLine) {
		return NewAppError(ExitMalformed, "Malformed input", err)
	}
	if errors.Is(err, ErrCycle) || errors.Is(err, ErrDuplicatePredecessor) || errors.Is(err, ErrSharedSuccessor) {
		return NewAppError(ExitChain, "Invalid chain structure", err)
	}

	return NewAppError(ExitInternal, "Internal error", err)
}
