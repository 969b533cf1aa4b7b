package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/serializer"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/validate"
)

var (
	categoryCreateSchema = validate.Schema{
		Allowed:  []string{"name", "description"},
		Required: []string{"name"},
		Types:    map[string]validate.Kind{"name": validate.KindString, "description": validate.KindString},
	}
	categoryUpdateSchema = validate.Schema{
		Allowed: []string{"name", "description"},
		Types:   map[string]validate.Kind{"name": validate.KindString, "description": validate.KindString},
	}
)

// CategoryHandler handles /categories requests.
type CategoryHandler struct {
	categories service.CategoryService
	serializer *serializer.Serializer
	logger     *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(
	categories service.CategoryService,
	s *serializer.Serializer,
	logger *slog.Logger,
) *CategoryHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CategoryHandler")
	}
	return &CategoryHandler{
		categories: categories,
		serializer: s,
		logger:     logger.With(slog.String("component", "category_handler")),
	}
}

// List handles GET /categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, serializer.Collection(categories, h.serializer.Category))
}

// Get handles GET /categories/{slug}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OKWithIncluded(w, r, h.serializer.Category(c), h.serializer.CategoryIncluded(c))
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeBody(w, r, categoryCreateSchema)
	if !ok {
		return
	}

	c, err := h.categories.Create(r.Context(), service.CategoryInput{
		Name:        optString(data, "name"),
		Description: optString(data, "description"),
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("category created",
		slog.Int64("category_id", c.ID),
		slog.String("slug", c.Slug))
	shared.Created(w, r, h.serializer.Category(c))
}

// Update handles PATCH /categories/{slug}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeBody(w, r, categoryUpdateSchema)
	if !ok {
		return
	}

	c, err := h.categories.Update(r.Context(), chi.URLParam(r, "slug"), service.CategoryInput{
		Name:        optString(data, "name"),
		Description: optString(data, "description"),
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, h.serializer.Category(c))
}

// Delete handles DELETE /categories/{slug}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.NoContent(w)
}
