package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Fallbacks(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		detail string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/nowhere/", status: http.StatusNotFound, detail: "The requested resource was not found."},
		{name: "unknown nested path", method: http.MethodGet, path: "/posts/a/b/c/", status: http.StatusNotFound, detail: "The requested resource was not found."},
		{name: "unsupported method", method: http.MethodPut, path: "/categories/tech/", status: http.StatusMethodNotAllowed, detail: "Method PUT is not allowed for this endpoint."},
		{name: "unsupported method on collection", method: http.MethodDelete, path: "/tags/", status: http.StatusMethodNotAllowed, detail: "Method DELETE is not allowed for this endpoint."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			requireError(t, h.do(t, tt.method, tt.path, "", nil), tt.status, tt.detail)
		})
	}
}

func TestRouter_TrailingSlashOptional(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	for _, path := range []string{"/categories", "/categories/", "/tags", "/tags/", "/posts", "/posts/"} {
		rec := h.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), path)
	}
}
