package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/serializer"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/validate"
)

var (
	tagCreateSchema = validate.Schema{
		Allowed:  []string{"name"},
		Required: []string{"name"},
		Types:    map[string]validate.Kind{"name": validate.KindString},
	}
	tagUpdateSchema = validate.Schema{
		Allowed: []string{"name"},
		Types:   map[string]validate.Kind{"name": validate.KindString},
	}
)

// TagHandler handles /tags requests.
type TagHandler struct {
	tags       service.TagService
	serializer *serializer.Serializer
	logger     *slog.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tags service.TagService, s *serializer.Serializer, logger *slog.Logger) *TagHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TagHandler")
	}
	return &TagHandler{
		tags:       tags,
		serializer: s,
		logger:     logger.With(slog.String("component", "tag_handler")),
	}
}

// List handles GET /tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, serializer.Collection(tags, h.serializer.Tag))
}

// Get handles GET /tags/{slug}.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.tags.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OKWithIncluded(w, r, h.serializer.Tag(t), h.serializer.TagIncluded(t))
}

// Create handles POST /tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeBody(w, r, tagCreateSchema)
	if !ok {
		return
	}

	name, _ := validate.String(data, "name")
	t, err := h.tags.Create(r.Context(), name)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.Created(w, r, h.serializer.Tag(t))
}

// Update handles PATCH /tags/{slug}.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeBody(w, r, tagUpdateSchema)
	if !ok {
		return
	}

	t, err := h.tags.Update(r.Context(), chi.URLParam(r, "slug"), optString(data, "name"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, h.serializer.Tag(t))
}

// Delete handles DELETE /tags/{slug}.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tags.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.NoContent(w)
}
