package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrUserNotFound, ErrPostNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a category with the same name).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references a row that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	ErrUserNotFound          = fmt.Errorf("%w: user", ErrNotFound)
	ErrProfileNotFound       = fmt.Errorf("%w: author profile", ErrNotFound)
	ErrSocialAccountNotFound = fmt.Errorf("%w: social account", ErrNotFound)
	ErrCategoryNotFound      = fmt.Errorf("%w: category", ErrNotFound)
	ErrTagNotFound           = fmt.Errorf("%w: tag", ErrNotFound)
	ErrPostNotFound          = fmt.Errorf("%w: post", ErrNotFound)
	ErrMediaFileNotFound     = fmt.Errorf("%w: media file", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// DuplicateError reports a unique constraint violation on one field of an
// entity. It wraps ErrDuplicate.
type DuplicateError struct {
	Entity string // e.g. "category"
	Field  string // e.g. "name"
	Err    error  // original driver error, may be nil
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s with this %s already exists: %v", e.Entity, e.Field, e.Err)
	}
	return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Field)
}

// Unwrap returns ErrDuplicate.
func (e *DuplicateError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDuplicate, e.Err}
	}
	return []error{ErrDuplicate}
}

// NewDuplicateError creates a DuplicateError for entity.field.
func NewDuplicateError(entity, field string, err error) *DuplicateError {
	return &DuplicateError{Entity: entity, Field: field, Err: err}
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user", "post")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
