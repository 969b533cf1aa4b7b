package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/blog-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	// GenerateTokenFn allows test cases to mock the GenerateToken behavior
	GenerateTokenFn func(ctx context.Context, userID int64) (string, *auth.Claims, error)

	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token       string
	Err         error
	ValidateErr error
	Claims      *auth.Claims
	TTL         time.Duration
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, userID int64) (string, *auth.Claims, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	if m.Err != nil {
		return "", nil, m.Err
	}

	claims := m.Claims
	if claims == nil {
		now := time.Now()
		claims = &auth.Claims{
			UserID:    userID,
			SessionID: "session-" + m.Token,
			IssuedAt:  now,
			ExpiresAt: now.Add(m.Lifetime()),
		}
	}
	return m.Token, claims, nil
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// Lifetime implements the auth.JWTService interface
func (m *MockJWTService) Lifetime() time.Duration {
	if m.TTL == 0 {
		return time.Hour
	}
	return m.TTL
}
