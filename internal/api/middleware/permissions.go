package middleware

import (
	"fmt"
	"net/http"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/domain"
)

// Details of the gate failures.
const (
	MsgLoginRequired    = "User must be authenticated to access this resource."
	MsgRoleRequired     = "User does not have permission to access this resource."
	MsgNotFound         = "The requested resource was not found."
	msgMethodNotAllowed = "Method %s is not allowed for this endpoint."
)

// LoginRequired rejects anonymous callers with 401.
func LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shared.GetPrincipal(r.Context()).IsAuthenticated() {
			shared.Error(w, r, http.StatusUnauthorized, "", MsgLoginRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RolesRequired rejects callers holding none of roles with 403. Compose it
// inside LoginRequired so anonymous callers get 401 first.
func RolesRequired(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !shared.GetPrincipal(r.Context()).HasRole(roles...) {
				shared.Error(w, r, http.StatusForbidden, "", MsgRoleRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminRequired admits admins only.
func AdminRequired(next http.Handler) http.Handler {
	return RolesRequired(domain.RoleAdmin)(next)
}

// AdminOrAuthorRequired admits admins and authors.
func AdminOrAuthorRequired(next http.Handler) http.Handler {
	return RolesRequired(domain.RoleAdmin, domain.RoleAuthor)(next)
}

// MethodNotAllowed is the router's 405 handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	shared.Error(w, r, http.StatusMethodNotAllowed, "", fmt.Sprintf(msgMethodNotAllowed, r.Method))
}

// NotFound is the router's 404 handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	shared.Error(w, r, http.StatusNotFound, "", MsgNotFound)
}
