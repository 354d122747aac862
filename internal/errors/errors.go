// Package errors provides error code definitions shared across the backend.
package errors

import "fmt"

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrConflict   ErrorCode = "CONFLICT"
	ErrPermission ErrorCode = "PERMISSION_DENIED"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Database errors
	ErrDatabase    ErrorCode = "DATABASE_ERROR"
	ErrMigration   ErrorCode = "MIGRATION_FAILED"
	ErrPersistence ErrorCode = "PERSISTENCE_FAILED"

	// Directory errors
	ErrNotaryNotFound  ErrorCode = "NOTARY_NOT_FOUND"
	ErrArticleNotFound ErrorCode = "ARTICLE_NOT_FOUND"

	// User and session errors
	ErrUserNotFound   ErrorCode = "USER_NOT_FOUND"
	ErrEmailTaken     ErrorCode = "EMAIL_TAKEN"
	ErrBadCredentials ErrorCode = "BAD_CREDENTIALS"
	ErrNotAuthorized  ErrorCode = "NOT_AUTHORIZED"

	// Appointment errors
	ErrAppointmentNotFound ErrorCode = "APPOINTMENT_NOT_FOUND"
	ErrInvalidTransition   ErrorCode = "INVALID_TRANSITION"

	// Sync errors
	ErrSyncSource ErrorCode = "SYNC_SOURCE_FAILED"
	ErrSyncFailed ErrorCode = "SYNC_FAILED"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error is of a specific code.
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}
