package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/store"
)

// Common service errors.
var (
	// ErrNilDependency is returned by constructors given a nil collaborator.
	ErrNilDependency = errors.New("required dependency is nil")
)

// ServiceError wraps an unexpected failure with the service and operation
// in which it happened. Expected conditions are returned as domain errors
// instead.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, op string, err error) *ServiceError {
	return &ServiceError{Service: service, Op: op, Err: err}
}

func nilDependency(name string) error {
	return fmt.Errorf("%w: %s", ErrNilDependency, name)
}

// PasswordPolicyError lists every password policy violation. It is a bad
// request without field binding.
type PasswordPolicyError struct {
	Messages []string
}

// Error implements the error interface.
func (e *PasswordPolicyError) Error() string {
	return strings.Join(e.Messages, " ")
}

// Unwrap reports policy violations as bad requests.
func (e *PasswordPolicyError) Unwrap() error {
	return domain.ErrBadRequest
}

// duplicateMessage renders a unique violation the way the admin forms do,
// e.g. "Category with this Name already exists.".
func duplicateMessage(dup *store.DuplicateError) string {
	if dup.Entity == "user" && dup.Field == "username" {
		return "A user with that username already exists."
	}
	return fmt.Sprintf("%s with this %s already exists.", capitalize(dup.Entity), capitalize(dup.Field))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// translateStoreError maps store failures onto the domain error taxonomy.
// Not-found errors become model-named 404s and unique violations become
// field errors; anything else is wrapped in a ServiceError.
func translateStoreError(service, op, model string, err error) error {
	if err == nil {
		return nil
	}

	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		var fe domain.FieldErrors
		fe.Add(dup.Field, duplicateMessage(dup))
		return fe
	}

	var fe domain.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}

	if store.IsNotFoundError(err) {
		return domain.NoMatch(model)
	}

	return NewServiceError(service, op, err)
}
