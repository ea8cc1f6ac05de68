package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a rejected input value. Message is client-facing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports an operation refused because of dependent or
// duplicate rows. Data is returned to the client as-is.
type ConflictError struct {
	Message string
	Data    map[string]interface{}
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string, data map[string]interface{}) *ConflictError {
	return &ConflictError{Message: message, Data: data}
}

// notFoundOr maps gorm.ErrRecordNotFound to ErrNotFound and wraps anything else.
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
