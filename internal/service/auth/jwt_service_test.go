package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/blog-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{SessionSecret: "short", SessionLifetimeMinutes: 10})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{SessionSecret: testSecret})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{SessionSecret: testSecret, SessionLifetimeMinutes: 30})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, svc.Lifetime())
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newJWTService(testSecret, time.Hour, func() time.Time { return fixedTime })

	token, claims, err := svc.GenerateToken(context.Background(), 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Len(t, claims.SessionID, 36)

	parsed, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, claims.SessionID, parsed.SessionID)
	assert.Equal(t, int64(42), parsed.UserID)
	assert.Equal(t, fixedTime.Unix(), parsed.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), parsed.ExpiresAt.Unix())

	_, second, err := svc.GenerateToken(context.Background(), 42)
	require.NoError(t, err)
	assert.NotEqual(t, claims.SessionID, second.SessionID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := newJWTService(testSecret, time.Hour, func() time.Time { return fixedTime })
	token, _, err := issuer.GenerateToken(context.Background(), 7)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": 7, "jti": "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		svc     *hmacJWTService
		token   string
		wantErr error
	}{
		{
			name:  "valid",
			svc:   issuer,
			token: token,
		},
		{
			name:    "expired",
			svc:     newJWTService(testSecret, time.Hour, func() time.Time { return fixedTime.Add(2 * time.Hour) }),
			token:   token,
			wantErr: ErrExpiredToken,
		},
		{
			name:  "within clock skew",
			svc:   newJWTService(testSecret, time.Hour, func() time.Time { return fixedTime.Add(time.Hour + time.Minute) }),
			token: token,
		},
		{
			name:    "wrong secret",
			svc:     newJWTService("another-secret-that-is-long-enough-too", time.Hour, func() time.Time { return fixedTime }),
			token:   token,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed",
			svc:     issuer,
			token:   "not.a.token",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "unsigned",
			svc:     issuer,
			token:   noneToken,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "empty",
			svc:     issuer,
			token:   "",
			wantErr: ErrMissingToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := tt.svc.ValidateToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), claims.UserID)
		})
	}
}
