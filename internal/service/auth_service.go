package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/session"
	"github.com/phrazzld/blog-api/internal/service/auth"
	"github.com/phrazzld/blog-api/internal/store"
)

// Session is an established login.
type Session struct {
	Token  string
	Claims *auth.Claims
	User   *domain.User
}

// AuthService logs users in and out and resolves session tokens.
type AuthService interface {
	// Login checks the credentials of an active user and opens a session.
	// Any failure is reported as the same unauthorized error.
	Login(ctx context.Context, username, password string) (*Session, error)

	// Logout ends the session with sessionID.
	Logout(ctx context.Context, sessionID string) error

	// Authenticate resolves a session token to the principal it belongs to
	// and the session ID. It fails for invalid tokens, revoked sessions and
	// inactive or deleted users.
	Authenticate(ctx context.Context, token string) (domain.Principal, string, error)
}

type authServiceImpl struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	tokens   auth.JWTService
	sessions session.Registry
	logger   *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	sessions session.Registry,
	logger *slog.Logger,
) (AuthService, error) {
	switch {
	case users == nil:
		return nil, nilDependency("users")
	case hasher == nil:
		return nil, nilDependency("hasher")
	case tokens == nil:
		return nil, nilDependency("tokens")
	case sessions == nil:
		return nil, nilDependency("sessions")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authServiceImpl{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "auth_service")),
	}, nil
}

// invalidCredentials is the single failure Login reports to callers.
func invalidCredentials() error {
	return &domain.Error{Kind: domain.ErrUnauthorized, Detail: "Invalid username or password."}
}

// Login implements AuthService.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.logger.Debug("login for unknown user", "username", username)
			return nil, invalidCredentials()
		}
		s.logger.Error("failed to load user for login", "error", err, "username", username)
		return nil, NewServiceError("auth", "login", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login with wrong password", "user_id", user.ID)
		return nil, invalidCredentials()
	}
	if !user.IsActive {
		s.logger.Debug("login for inactive user", "user_id", user.ID)
		return nil, invalidCredentials()
	}

	token, claims, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to generate session token", "error", err, "user_id", user.ID)
		return nil, NewServiceError("auth", "login", err)
	}
	if err := s.sessions.Register(ctx, claims.SessionID, user.ID, s.tokens.Lifetime()); err != nil {
		s.logger.Error("failed to register session", "error", err, "user_id", user.ID)
		return nil, NewServiceError("auth", "login", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &Session{Token: token, Claims: claims, User: user}, nil
}

// Logout implements AuthService.
func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		s.logger.Error("failed to revoke session", "error", err)
		return NewServiceError("auth", "logout", err)
	}
	s.logger.Debug("session revoked")
	return nil
}

// Authenticate implements AuthService.
func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (domain.Principal, string, error) {
	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return domain.Anonymous(), "", err
	}

	live, err := s.sessions.Exists(ctx, claims.SessionID)
	if err != nil {
		return domain.Anonymous(), "", fmt.Errorf("failed to check session: %w", err)
	}
	if !live {
		return domain.Anonymous(), "", auth.ErrSessionRevoked
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Anonymous(), "", auth.ErrInvalidCredentials
		}
		return domain.Anonymous(), "", fmt.Errorf("failed to load session user: %w", err)
	}
	if !user.IsActive {
		return domain.Anonymous(), "", auth.ErrInvalidCredentials
	}

	return domain.PrincipalFor(user), claims.SessionID, nil
}
