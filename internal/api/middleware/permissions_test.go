package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// errorDetail decodes the detail of a single-error envelope.
func errorDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Errors []shared.ErrorObject `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	return body.Errors[0].Detail
}

func TestPermissionGates(t *testing.T) {
	t.Parallel()

	admin := domain.Principal{UserID: 1, Username: "root", Role: domain.RoleAdmin}
	author := domain.Principal{UserID: 2, Username: "alice", Role: domain.RoleAuthor}

	tests := []struct {
		name      string
		gate      func(http.Handler) http.Handler
		principal domain.Principal
		status    int
		detail    string
	}{
		{name: "login required rejects anonymous", gate: LoginRequired, principal: domain.Anonymous(), status: http.StatusUnauthorized, detail: MsgLoginRequired},
		{name: "login required admits author", gate: LoginRequired, principal: author, status: http.StatusOK},
		{name: "admin gate rejects author", gate: AdminRequired, principal: author, status: http.StatusForbidden, detail: MsgRoleRequired},
		{name: "admin gate admits admin", gate: AdminRequired, principal: admin, status: http.StatusOK},
		{name: "staff gate admits author", gate: AdminOrAuthorRequired, principal: author, status: http.StatusOK},
		{name: "staff gate admits admin", gate: AdminOrAuthorRequired, principal: admin, status: http.StatusOK},
		{name: "staff gate rejects anonymous", gate: AdminOrAuthorRequired, principal: domain.Anonymous(), status: http.StatusForbidden, detail: MsgRoleRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(shared.WithPrincipal(req.Context(), tt.principal))
			rec := httptest.NewRecorder()

			tt.gate(okHandler()).ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, errorDetail(t, rec))
			}
		})
	}
}

func TestFallbackHandlers(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest(http.MethodPut, "/posts", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method PUT is not allowed for this endpoint.", errorDetail(t, rec))

	rec = httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgNotFound, errorDetail(t, rec))
}
