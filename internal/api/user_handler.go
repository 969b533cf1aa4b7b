package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/serializer"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/validate"
)

var userFields = []string{"username", "email", "password", "first_name", "last_name"}

var userFieldTypes = map[string]validate.Kind{
	"username":   validate.KindString,
	"email":      validate.KindString,
	"password":   validate.KindString,
	"first_name": validate.KindString,
	"last_name":  validate.KindString,
}

var (
	userCreateSchema = validate.Schema{
		Allowed:  userFields,
		Required: []string{"username", "email", "password"},
		Types:    userFieldTypes,
	}
	userUpdateSchema = validate.Schema{
		Allowed: userFields,
		Types:   userFieldTypes,
	}
)

// UserHandler handles /users requests.
type UserHandler struct {
	users      service.UserService
	serializer *serializer.Serializer
	logger     *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, s *serializer.Serializer, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		users:      users,
		serializer: s,
		logger:     logger.With(slog.String("component", "user_handler")),
	}
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, serializer.Collection(users, h.serializer.User))
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	u, err := h.users.Get(r.Context(), shared.GetPrincipal(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OKWithIncluded(w, r, h.serializer.User(u), h.serializer.UserIncluded(u))
}

// Create handles POST /users. New users are authors.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	data, ok := decodeBody(w, r, userCreateSchema)
	if !ok {
		return
	}

	u, err := h.users.Create(r.Context(), userInput(data))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user created",
		slog.Int64("user_id", u.ID),
		slog.String("username", u.Username))
	shared.Created(w, r, h.serializer.User(u))
}

// Update handles PATCH /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	data, ok := decodeBody(w, r, userUpdateSchema)
	if !ok {
		return
	}

	u, err := h.users.Update(r.Context(), shared.GetPrincipal(r.Context()), id, userInput(data))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	shared.OK(w, r, h.serializer.User(u))
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	if err := h.users.Delete(r.Context(), shared.GetPrincipal(r.Context()), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user deleted", slog.Int64("user_id", id))
	shared.NoContent(w)
}

func userInput(data validate.Data) service.UserInput {
	return service.UserInput{
		Username:  optString(data, "username"),
		Email:     optString(data, "email"),
		Password:  optString(data, "password"),
		FirstName: optString(data, "first_name"),
		LastName:  optString(data, "last_name"),
	}
}
