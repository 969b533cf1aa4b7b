package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/redact"
	"github.com/phrazzld/blog-api/internal/service/auth"
)

// Authenticator resolves a session token to its principal and session ID.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, string, error)
}

// AuthMiddleware attaches the caller to each request.
type AuthMiddleware struct {
	authenticator Authenticator
	logger        *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authenticator Authenticator, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger.With(slog.String("component", "auth_middleware")),
	}
}

// sessionToken returns the token from the session cookie, falling back to an
// Authorization: Bearer header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(auth.SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Authenticate resolves the session token of the request and stores the
// principal in the request context. Requests without a usable session
// continue as anonymous; the permission middleware decides whether that is
// acceptable.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromContextOrDefault(r.Context(), m.logger)
		principal, sessionID, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken),
				errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrSessionRevoked),
				errors.Is(err, auth.ErrInvalidCredentials):
				log.Debug("ignoring unusable session", slog.String("reason", err.Error()))
			default:
				log.Error("failed to authenticate session", slog.String("error", redact.Error(err)))
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := shared.WithPrincipal(r.Context(), principal)
		ctx = shared.WithSessionID(ctx, sessionID)
		ctx = logger.WithLogger(ctx, log.With(slog.Int64("user_id", principal.UserID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
