package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/phrazzld/blog-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookieNamed(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "cookie not set", "no %s cookie in response", name)
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	t.Run("sets the session cookie", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		u := h.createUser(t, "alice", false)

		rec := h.do(t, http.MethodPost, "/auth/login/", "", map[string]any{"username": "alice", "password": testPassword})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body message
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
		assert.Equal(t, "Successfully logged in with user id 1", body.Message)
		assert.Equal(t, int64(1), u.ID)

		cookie := cookieNamed(t, rec.Result(), auth.SessionCookieName)
		assert.Equal(t, "token-1", cookie.Value)
		assert.True(t, cookie.HttpOnly)

		// the cookie authenticates later requests
		assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/users/1/", cookie.Value, nil).Code)
	})

	tests := []struct {
		name   string
		body   any
		status int
		detail string
	}{
		{
			name:   "wrong password",
			body:   map[string]any{"username": "alice", "password": "nope"},
			status: http.StatusUnauthorized,
			detail: "Invalid username or password.",
		},
		{
			name:   "unknown user",
			body:   map[string]any{"username": "nobody", "password": testPassword},
			status: http.StatusUnauthorized,
			detail: "Invalid username or password.",
		},
		{
			name:   "malformed body",
			body:   `{"username":`,
			status: http.StatusBadRequest,
			detail: "Invalid JSON format.",
		},
		{
			name:   "missing password",
			body:   map[string]any{"username": "alice"},
			status: http.StatusBadRequest,
			detail: "This field is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			h.createUser(t, "alice", false)

			rec := h.do(t, http.MethodPost, "/auth/login/", "", tt.body)
			requireError(t, rec, tt.status, tt.detail)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	_, token := h.authorToken(t, "alice")

	requireError(t, h.do(t, http.MethodPost, "/auth/logout/", "", nil), http.StatusForbidden, "User is not authenticated")

	rec := h.do(t, http.MethodPost, "/auth/logout/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body message
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	assert.Equal(t, "Successfully logged out", body.Message)
	assert.Equal(t, -1, cookieNamed(t, rec.Result(), auth.SessionCookieName).MaxAge)

	// the revoked session is anonymous from now on
	requireError(t, h.do(t, http.MethodGet, "/users/1/", token, nil), http.StatusUnauthorized,
		"User must be authenticated to access this resource.")
}

func TestAuthHandler_CSRFToken(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/auth/csrf-token/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Token string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	require.NotEmpty(t, body.Token)
	assert.Equal(t, body.Token, cookieNamed(t, rec.Result(), auth.CSRFCookieName).Value)

	// an existing token is reused
	req := request(t, http.MethodGet, "/auth/csrf-token/", "", nil)
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: body.Token})
	rec = h.serve(req)
	require.Equal(t, http.StatusOK, rec.Code)
	var again struct {
		Token string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &again))
	assert.Equal(t, body.Token, again.Token)
}

func TestAuthHandler_LoginRateLimit(t *testing.T) {
	t.Parallel()
	h := newHarness(t, func(o *RouterOptions) { o.LoginRatePerMinute = 1 })
	h.createUser(t, "alice", false)
	body := map[string]any{"username": "alice", "password": "wrong"}

	requireError(t, h.do(t, http.MethodPost, "/auth/login/", "", body), http.StatusUnauthorized, "Invalid username or password.")
	requireError(t, h.do(t, http.MethodPost, "/auth/login/", "", body), http.StatusTooManyRequests,
		"Too many login attempts. Please try again later.")
}

func TestCSRFEnforcement(t *testing.T) {
	t.Parallel()
	h := newHarness(t, func(o *RouterOptions) { o.CSRFEnforce = true })
	token := h.adminToken(t)
	body := map[string]any{"name": "Tech"}

	requireError(t, h.do(t, http.MethodPost, "/categories/", token, body), http.StatusForbidden, "CSRF verification failed.")

	req := request(t, http.MethodPost, "/categories/", token, body)
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: "abc123"})
	req.Header.Set(auth.CSRFHeaderName, "abc123")
	assert.Equal(t, http.StatusCreated, h.serve(req).Code)

	// reads are never checked
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/categories/", token, nil).Code)
}
