package utils

import (
	"errors"
	"fmt"
)

// Custom error types
var (
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when there's a conflict with existing data
	ErrConflict = errors.New("conflict")

	// ErrDatabase is returned when there's a database operation error
	ErrDatabase = errors.New("database error")

	// ErrConnection is returned when the backing store cannot be reached
	ErrConnection = errors.New("connection error")
)

// ValidationError represents an error that occurs during input validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConflictError represents an error when there's a conflict with existing data
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s already exists with %s='%s'", e.Resource, e.Field, e.Value)
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// DatabaseError represents a statement that the backing store rejected.
// Both ErrDatabase and the driver cause are reachable through errors.Is/As.
type DatabaseError struct {
	Operation string
	Cause     error
}

func (e *DatabaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("database error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("database error during %s", e.Operation)
}

func (e *DatabaseError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDatabase}
	}
	return []error{ErrDatabase, e.Cause}
}

// ConnectionError is returned when opening the backing store fails.
type ConnectionError struct {
	Driver string
	Cause  error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot connect to %s database: %v", e.Driver, e.Cause)
	}
	return fmt.Sprintf("cannot connect to %s database", e.Driver)
}

func (e *ConnectionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrConnection}
	}
	return []error{ErrConnection, e.Cause}
}

// Error wrapping functions

// WrapValidationError wraps an error as a validation error
func WrapValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// WrapNotFoundError wraps an error as a not found error
func WrapNotFoundError(resource, id string) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// WrapConflictError wraps an error as a conflict error
func WrapConflictError(resource, field, value string) error {
	return &ConflictError{
		Resource: resource,
		Field:    field,
		Value:    value,
	}
}

// WrapDatabaseError wraps an error as a database error
func WrapDatabaseError(operation string, cause error) error {
	return &DatabaseError{
		Operation: operation,
		Cause:     cause,
	}
}

// WrapConnectionError wraps a driver failure raised while connecting
func WrapConnectionError(driver string, cause error) error {
	return &ConnectionError{
		Driver: driver,
		Cause:  cause,
	}
}

// Error checking functions

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsDatabaseError checks if an error is a database error
func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

// RequiredFieldError creates a validation error for required fields
func RequiredFieldError(field string) error {
	return WrapValidationError(field, "field is required")
}

// InvalidFieldError creates a validation error for invalid field values
func InvalidFieldError(field, reason string) error {
	return WrapValidationError(field, reason)
}
