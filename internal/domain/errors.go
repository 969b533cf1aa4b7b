package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds understood by the API layer. Every user-facing failure raised by
// a service wraps exactly one of them.
var (
	// ErrBadRequest is returned for malformed input or failed domain validation.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized is returned when the caller is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller is authenticated but is not
	// allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when an identifier, slug or primary key does
	// not resolve.
	ErrNotFound = errors.New("not found")
)

// Error is a user-facing failure with a human readable detail. Its Unwrap
// returns the kind so callers can use errors.Is against the sentinels above.
type Error struct {
	Kind   error
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Detail
}

// Unwrap returns the error kind.
func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError creates an Error of the given kind.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// BadRequest creates an ErrBadRequest error with the given detail.
func BadRequest(format string, args ...any) *Error {
	return NewError(ErrBadRequest, format, args...)
}

// Forbidden creates an ErrForbidden error with the given detail.
func Forbidden(detail string) *Error {
	return NewError(ErrForbidden, "%s", detail)
}

// NotFound creates an ErrNotFound error with the given detail.
func NotFound(format string, args ...any) *Error {
	return NewError(ErrNotFound, format, args...)
}

// NoMatch is the generic not-found error for a model looked up by key.
func NoMatch(model string) *Error {
	return NotFound("No %s matches the given query.", model)
}

// NonFieldErrors is the catch-all field name for errors that do not belong to
// a single input field.
const NonFieldErrors = "__all__"

// FieldError is a single validation message bound to an input field.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors is an ordered list of validation messages. It implements error
// so it can travel through the service layer unchanged, and it wraps
// ErrBadRequest.
type FieldErrors []FieldError

// Add appends a message for field.
func (fe *FieldErrors) Add(field, message string) {
	*fe = append(*fe, FieldError{Field: field, Message: message})
}

// Merge appends all messages from other.
func (fe *FieldErrors) Merge(other FieldErrors) {
	*fe = append(*fe, other...)
}

// Err returns fe as an error, or nil when it holds no messages.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// Unwrap reports validation failures as bad requests.
func (fe FieldErrors) Unwrap() error {
	return ErrBadRequest
}

// FieldErrors returns fe itself so FieldErrors satisfies the same
// interface as the request validation errors.
func (fe FieldErrors) FieldErrors() FieldErrors {
	return fe
}

// HasField reports whether any message is bound to field.
func (fe FieldErrors) HasField(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}
