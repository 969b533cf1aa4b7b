package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/service/auth"
	"github.com/phrazzld/blog-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes based on
// the error kind they wrap.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, domain.ErrBadRequest),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrSessionRevoked),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, domain.ErrNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// fieldErrorer is implemented by every error that reports per-field
// messages: domain.FieldErrors and the validate allow-list and required
// errors.
type fieldErrorer interface {
	FieldErrors() domain.FieldErrors
}

// respondWithServiceError writes the envelope matching err.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		policy *service.PasswordPolicyError
		fields fieldErrorer
		derr   *domain.Error
	)

	switch {
	case errors.As(err, &policy):
		shared.ValidationErrorsFromList(w, r, policy.Messages)
	case errors.As(err, &fields):
		shared.ValidationErrors(w, r, fields.FieldErrors())
	case errors.As(err, &derr):
		shared.Error(w, r, MapErrorToStatusCode(derr), "", derr.Detail)
	case store.IsNotFoundError(err):
		shared.Error(w, r, http.StatusNotFound, "", err.Error())
	default:
		shared.ServerError(w, r, err)
	}
}

// invalidJSON writes the 400 for a body that failed to decode.
func invalidJSON(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, shared.ErrBodyTooLarge) {
		shared.Error(w, r, http.StatusRequestEntityTooLarge, "", "Request body exceeds the size limit.")
		return
	}
	shared.Error(w, r, http.StatusBadRequest, "", "Invalid JSON: "+err.Error())
}
