package auth

import (
	"context"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "sessionid"

// JWTService issues and validates the signed session tokens carried in the
// session cookie.
type JWTService interface {
	// GenerateToken creates a signed token for userID. The returned claims
	// carry the new session ID, which callers register so the session can be
	// revoked before it expires.
	GenerateToken(ctx context.Context, userID int64) (string, *Claims, error)

	// ValidateToken checks the signature and time claims of tokenString and
	// returns its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// Lifetime reports how long issued tokens stay valid.
	Lifetime() time.Duration
}

// Claims is the decoded content of a session token.
type Claims struct {
	// UserID identifies the user the session belongs to.
	UserID int64 `json:"uid"`

	// SessionID is the token's jti.
	SessionID string `json:"jti"`

	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}
