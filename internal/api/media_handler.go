package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/serializer"
	"github.com/phrazzld/blog-api/internal/service"
)

// MediaHandler handles the media files of posts and the admin media index.
type MediaHandler struct {
	media          service.MediaService
	serializer     *serializer.Serializer
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewMediaHandler creates a new MediaHandler. Multipart bodies larger than
// maxUploadMB megabytes are rejected.
func NewMediaHandler(
	media service.MediaService,
	s *serializer.Serializer,
	maxUploadMB int,
	logger *slog.Logger,
) *MediaHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MediaHandler")
	}
	return &MediaHandler{
		media:          media,
		serializer:     s,
		maxUploadBytes: int64(maxUploadMB) << 20,
		logger:         logger.With(slog.String("component", "media_handler")),
	}
}

func (h *MediaHandler) render(view service.MediaView) func(*domain.MediaFile) serializer.ResourceObject {
	if view == service.ViewFull {
		return h.serializer.MediaFile
	}
	return h.serializer.PublicMediaFile
}

// ListForPost handles GET /posts/{slug}/media.
func (h *MediaHandler) ListForPost(w http.ResponseWriter, r *http.Request) {
	files, view, err := h.media.ListForPost(r.Context(), shared.GetPrincipal(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, serializer.Collection(files, h.render(view)))
}

// GetForPost handles GET /posts/{slug}/media/{id}.
func (h *MediaHandler) GetForPost(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	f, view, err := h.media.GetForPost(r.Context(), shared.GetPrincipal(r.Context()), chi.URLParam(r, "slug"), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, h.render(view)(f))
}

// Upload handles POST /posts/{slug}/media. Every part named "files" is one
// upload.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var uploads []service.Upload
	memory := int64(32 << 20)
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		memory = h.maxUploadBytes
	}
	err := r.ParseMultipartForm(memory)
	switch {
	case errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.Error(w, r, http.StatusBadRequest, "", "Upload exceeds the size limit.")
			return
		}
		shared.Error(w, r, http.StatusBadRequest, "", "Invalid multipart body: "+err.Error())
		return
	default:
		for _, fh := range r.MultipartForm.File["files"] {
			u, err := readUpload(fh)
			if err != nil {
				log.Error("failed to read uploaded file", slog.String("filename", fh.Filename), slog.Any("error", err))
				shared.ServerError(w, r, err)
				return
			}
			uploads = append(uploads, u)
		}
	}

	files, err := h.media.Upload(r.Context(), shared.GetPrincipal(r.Context()), chi.URLParam(r, "slug"), uploads)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	log.Info("media files uploaded",
		slog.String("post", chi.URLParam(r, "slug")),
		slog.Int("count", len(files)))
	shared.Created(w, r, serializer.Collection(files, h.serializer.MediaFile))
}

// Delete handles DELETE /posts/{slug}/media/{id}.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	if err := h.media.Delete(r.Context(), shared.GetPrincipal(r.Context()), chi.URLParam(r, "slug"), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.NoContent(w)
}

// List handles GET /media.
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.media.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, serializer.Collection(files, h.serializer.MediaFile))
}

// Get handles GET /media/{id}.
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	f, err := h.media.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, h.serializer.MediaFile(f))
}
