package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("admin creates category", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		token := h.adminToken(t)

		rec := h.do(t, http.MethodPost, "/categories/", token, map[string]any{"name": "Tech", "description": "d"})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		env := decode(t, rec)
		res := env.resource(t)
		assert.Equal(t, "categories", res.Type)
		assert.Equal(t, "Tech", res.Attributes["name"])
		assert.Equal(t, "tech", res.Attributes["slug"])
		assert.Equal(t, "d", res.Attributes["description"])
		assert.NotEmpty(t, env.Meta["timestamp"])
	})

	tests := []struct {
		name   string
		role   string
		body   any
		status int
		detail string
	}{
		{name: "anonymous", role: "", body: map[string]any{"name": "Tech"}, status: http.StatusUnauthorized, detail: "User must be authenticated to access this resource."},
		{name: "author", role: "author", body: map[string]any{"name": "Tech"}, status: http.StatusForbidden, detail: "User does not have permission to access this resource."},
		{name: "missing name", role: "admin", body: map[string]any{"description": "d"}, status: http.StatusBadRequest, detail: "This field is required."},
		{name: "unknown field", role: "admin", body: map[string]any{"name": "Tech", "color": "red"}, status: http.StatusBadRequest, detail: "This field is not allowed."},
		{name: "blank name", role: "admin", body: map[string]any{"name": ""}, status: http.StatusBadRequest, detail: "This field cannot be blank."},
		{name: "whitespace name", role: "admin", body: map[string]any{"name": "   "}, status: http.StatusBadRequest, detail: "This field cannot be blank."},
		{name: "oversized body", role: "admin", body: map[string]any{"name": "Tech", "description": strings.Repeat("d", 2<<20)}, status: http.StatusRequestEntityTooLarge, detail: "Request body exceeds the size limit."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			token := ""
			switch tt.role {
			case "admin":
				token = h.adminToken(t)
			case "author":
				_, token = h.authorToken(t, "writer")
			}

			rec := h.do(t, http.MethodPost, "/categories", token, tt.body)
			requireError(t, rec, tt.status, tt.detail)
		})
	}
}

func TestCategoryHandler_CreateErrors(t *testing.T) {
	t.Parallel()

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		rec := h.do(t, http.MethodPost, "/categories/", h.adminToken(t), `{"name": `)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		require.Len(t, env.Errors, 1)
		assert.True(t, strings.HasPrefix(env.Errors[0].Detail, "Invalid JSON: "), env.Errors[0].Detail)
	})

	t.Run("duplicate name", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		token := h.adminToken(t)
		require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/categories/", token, map[string]any{"name": "Tech"}).Code)

		rec := h.do(t, http.MethodPost, "/categories/", token, map[string]any{"name": "Tech"})
		requireError(t, rec, http.StatusBadRequest, "Category with this Name already exists.")
		assert.Equal(t, "name", decode(t, rec).Errors[0].Meta["field"])
	})

	t.Run("unknown fields are reported sorted", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		rec := h.do(t, http.MethodPost, "/categories/", h.adminToken(t), map[string]any{"name": "x", "zeta": 1, "alpha": 2})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		require.Len(t, env.Errors, 2)
		assert.Equal(t, "alpha", env.Errors[0].Meta["field"])
		assert.Equal(t, "zeta", env.Errors[1].Meta["field"])
	})
}

func TestCategoryHandler_ReadUpdateDelete(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	admin := h.adminToken(t)

	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/categories/", admin, map[string]any{"name": "Tech"}).Code)
	rec := h.do(t, http.MethodPost, "/posts/", admin, map[string]any{"title": "Hello", "content": "c", "category": "tech"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// list is public
	rec = h.do(t, http.MethodGet, "/categories/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec).resources(t), 1)

	// detail side-loads posts
	rec = h.do(t, http.MethodGet, "/categories/tech/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Contains(t, env.resource(t).Relationships, "posts")
	require.Len(t, env.Included, 1)
	assert.Equal(t, "posts", env.Included[0]["type"])

	// rename re-slugs
	rec = h.do(t, http.MethodPatch, "/categories/tech/", admin, map[string]any{"name": "Science"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "science", decode(t, rec).resource(t).Attributes["slug"])

	requireError(t, h.do(t, http.MethodGet, "/categories/tech/", "", nil), http.StatusNotFound, "No Category matches the given query.")

	// delete cascades to posts
	rec = h.do(t, http.MethodDelete, "/categories/science/", admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, 0, h.stores.Counts()["posts"])
}
