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

var postFieldTypes = map[string]validate.Kind{
	"title":    validate.KindString,
	"content":  validate.KindString,
	"category": validate.KindString,
	"tags":     validate.KindStringList,
	"status":   validate.KindString,
}

var (
	postCreateSchema = validate.Schema{
		Allowed:  []string{"title", "content", "category", "tags"},
		Required: []string{"title", "content", "category"},
		Types:    postFieldTypes,
	}
	postUpdateSchema = validate.Schema{
		Allowed: []string{"title", "content", "category", "tags", "status"},
		Types:   postFieldTypes,
	}
)

// PostHandler handles /posts requests.
type PostHandler struct {
	posts      service.PostService
	serializer *serializer.Serializer
	logger     *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts service.PostService, s *serializer.Serializer, logger *slog.Logger) *PostHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PostHandler")
	}
	return &PostHandler{
		posts:      posts,
		serializer: s,
		logger:     logger.With(slog.String("component", "post_handler")),
	}
}

// List handles GET /posts. The category, tags and search query parameters
// narrow the posts visible to the caller.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context(), shared.GetPrincipal(r.Context()), r.URL.Query())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, serializer.Collection(posts, h.serializer.Post))
}

// Get handles GET /posts/{slug}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Get(r.Context(), shared.GetPrincipal(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OKWithIncluded(w, r, h.serializer.Post(p), h.serializer.PostIncluded(p))
}

// Create handles POST /posts. New posts always start as drafts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeBody(w, r, postCreateSchema)
	if !ok {
		return
	}

	viewer := shared.GetPrincipal(r.Context())
	p, err := h.posts.Create(r.Context(), viewer, postInput(data))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("post created",
		slog.Int64("post_id", p.ID),
		slog.Int64("author_id", viewer.UserID),
		slog.String("slug", p.Slug))
	shared.Created(w, r, h.serializer.Post(p))
}

// Update handles PATCH /posts/{slug}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeBody(w, r, postUpdateSchema)
	if !ok {
		return
	}

	p, err := h.posts.Update(r.Context(), shared.GetPrincipal(r.Context()), chi.URLParam(r, "slug"), postInput(data))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, h.serializer.Post(p))
}

// Delete handles DELETE /posts/{slug}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), shared.GetPrincipal(r.Context()), chi.URLParam(r, "slug")); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.NoContent(w)
}

func postInput(data validate.Data) service.PostInput {
	return service.PostInput{
		Title:    optString(data, "title"),
		Content:  optString(data, "content"),
		Category: optString(data, "category"),
		Tags:     optStringList(data, "tags"),
		Status:   optString(data, "status"),
	}
}
