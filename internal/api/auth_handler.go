package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/config"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/service/auth"
	"github.com/phrazzld/blog-api/internal/validate"
)

var loginSchema = validate.Schema{
	Allowed:  []string{"username", "password"},
	Required: []string{"username", "password"},
	Types:    map[string]validate.Kind{"username": validate.KindString, "password": validate.KindString},
}

// AuthHandler handles login, logout and CSRF token requests.
type AuthHandler struct {
	authService service.AuthService
	authConfig  *config.AuthConfig
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	authService service.AuthService,
	authConfig *config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		authService: authService,
		authConfig:  authConfig,
		logger:      logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /auth/login. On success the session token is set as
// the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	data, err := shared.DecodeObject(r)
	switch {
	case errors.Is(err, shared.ErrBodyTooLarge):
		invalidJSON(w, r, err)
		return
	case err != nil:
		shared.Error(w, r, http.StatusBadRequest, "", "Invalid JSON format.")
		return
	}
	if err := loginSchema.Check(data); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	username, _ := validate.String(data, "username")
	password, _ := validate.String(data, "password")

	sess, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.Claims.ExpiresAt,
		HttpOnly: true,
		Secure:   h.authConfig.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("session cookie issued",
		slog.Int64("user_id", sess.User.ID))
	shared.OK(w, r, message{Message: fmt.Sprintf("Successfully logged in with user id %d", sess.User.ID)})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !shared.GetPrincipal(r.Context()).IsAuthenticated() {
		shared.Error(w, r, http.StatusForbidden, "", "User is not authenticated")
		return
	}

	if err := h.authService.Logout(r.Context(), shared.GetSessionID(r.Context())); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.authConfig.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	shared.OK(w, r, message{Message: "Successfully logged out"})
}

// csrfToken is the data of the CSRF token response.
type csrfToken struct {
	Token string `json:"csrfToken"`
}

// CSRFToken handles GET /auth/csrf-token. An existing token cookie is
// reused.
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(auth.CSRFCookieName); err == nil && c.Value != "" {
		token = c.Value
	} else {
		token = auth.NewCSRFToken()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		Secure:   h.authConfig.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	shared.OK(w, r, csrfToken{Token: token})
}
