package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "session:abc", sessionKey("abc"))
	assert.Equal(t, "user_sessions:42", userKey(42))
}

func TestMemoryRegistry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewMemoryRegistry()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Register(ctx, "a", 1, time.Hour))
	require.NoError(t, r.Register(ctx, "b", 1, time.Hour))
	require.NoError(t, r.Register(ctx, "c", 2, time.Minute))

	ok, err := r.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.Revoke(ctx, "a"))
	ok, _ = r.Exists(ctx, "a")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = r.Exists(ctx, "c")
	assert.False(t, ok, "expired session")
	ok, _ = r.Exists(ctx, "b")
	assert.True(t, ok)

	require.NoError(t, r.RevokeUser(ctx, 1))
	ok, _ = r.Exists(ctx, "b")
	assert.False(t, ok)
}
