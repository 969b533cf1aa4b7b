package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/serializer"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/validate"
)

var socialAccountTypes = map[string]validate.Kind{
	"provider": validate.KindString,
	"username": validate.KindString,
	"url":      validate.KindString,
}

var (
	profileJSONSchema = validate.Schema{
		Allowed: []string{"bio"},
		Types:   map[string]validate.Kind{"bio": validate.KindString},
	}
	profileFormSchema = validate.Schema{
		Allowed: []string{"bio", "profile_picture"},
	}
	socialAccountCreateSchema = validate.Schema{
		Allowed:  []string{"profile", "provider", "username", "url"},
		Required: []string{"provider", "username", "url"},
		Types:    socialAccountTypes,
	}
	socialAccountUpdateSchema = validate.Schema{
		Allowed: []string{"provider", "username", "url"},
		Types:   socialAccountTypes,
	}
)

// ProfileHandler handles an author's profile and social accounts, nested
// under /users/{id}.
type ProfileHandler struct {
	profiles       service.ProfileService
	serializer     *serializer.Serializer
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(
	profiles service.ProfileService,
	s *serializer.Serializer,
	maxUploadMB int,
	logger *slog.Logger,
) *ProfileHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProfileHandler")
	}
	return &ProfileHandler{
		profiles:       profiles,
		serializer:     s,
		maxUploadBytes: int64(maxUploadMB) << 20,
		logger:         logger.With(slog.String("component", "profile_handler")),
	}
}

// readObject decodes a JSON or form body and checks it against schema.
func readObject(w http.ResponseWriter, r *http.Request, schema validate.Schema) (validate.Data, bool) {
	if !isForm(r) {
		return decodeBody(w, r, schema)
	}

	data, err := formData(r)
	if err != nil {
		shared.Error(w, r, http.StatusBadRequest, "", "Invalid form data: "+err.Error())
		return nil, false
	}
	if err := schema.Check(data); err != nil {
		respondWithServiceError(w, r, err)
		return nil, false
	}
	return data, true
}

// UpdateProfile handles PATCH /users/{id}/profile. It accepts a multipart
// body with bio and profile_picture, or a JSON body with bio.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	var in service.ProfileUpdate
	if isMultipart(r) {
		if h.maxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			shared.Error(w, r, http.StatusBadRequest, "", "Invalid multipart body: "+err.Error())
			return
		}

		data := validate.Data{}
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				data[key] = values[0]
			}
		}
		for key := range r.MultipartForm.File {
			data[key] = key
		}
		if err := profileFormSchema.Check(data); err != nil {
			respondWithServiceError(w, r, err)
			return
		}

		in.Bio = optString(data, "bio")
		if files := r.MultipartForm.File["profile_picture"]; len(files) > 0 {
			u, err := readUpload(files[0])
			if err != nil {
				shared.ServerError(w, r, err)
				return
			}
			in.Picture = &u
		}
	} else {
		data, ok := decodeBody(w, r, profileJSONSchema)
		if !ok {
			return
		}
		in.Bio = optString(data, "bio")
	}

	p, err := h.profiles.UpdateProfile(r.Context(), shared.GetPrincipal(r.Context()), userID, in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, h.serializer.Profile(p))
}

// CreateSocialAccount handles POST /users/{id}/social-accounts.
func (h *ProfileHandler) CreateSocialAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	data, ok := readObject(w, r, socialAccountCreateSchema)
	if !ok {
		return
	}

	a, err := h.profiles.CreateSocialAccount(r.Context(), shared.GetPrincipal(r.Context()), userID, socialAccountInput(data))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.Created(w, r, h.serializer.SocialAccount(a))
}

// UpdateSocialAccount handles PATCH /users/{id}/social-accounts/{sid}.
func (h *ProfileHandler) UpdateSocialAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	accountID, err := getPathID(r, "sid")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	data, ok := readObject(w, r, socialAccountUpdateSchema)
	if !ok {
		return
	}

	a, err := h.profiles.UpdateSocialAccount(r.Context(), shared.GetPrincipal(r.Context()), userID, accountID, socialAccountInput(data))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, h.serializer.SocialAccount(a))
}

// DeleteSocialAccount handles DELETE /users/{id}/social-accounts/{sid}.
func (h *ProfileHandler) DeleteSocialAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	accountID, err := getPathID(r, "sid")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	if err := h.profiles.DeleteSocialAccount(r.Context(), shared.GetPrincipal(r.Context()), userID, accountID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.NoContent(w)
}

func socialAccountInput(data validate.Data) service.SocialAccountInput {
	return service.SocialAccountInput{
		Provider: optString(data, "provider"),
		Username: optString(data, "username"),
		URL:      optString(data, "url"),
	}
}
