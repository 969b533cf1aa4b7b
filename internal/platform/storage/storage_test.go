package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableKey(t *testing.T) {
	t.Parallel()

	taken := map[string]bool{
		"7/image/a.png":         true,
		"7/image/a_aaaaaaa.png": true,
		"7/image/README":        true,
		"7/image/a.tar.gz":      true,
	}
	exists := func(_ context.Context, key string) (bool, error) { return taken[key], nil }

	tests := []struct {
		name     string
		key      string
		suffixes []string
		want     string
	}{
		{name: "free key", key: "7/image/b.png", want: "7/image/b.png"},
		{name: "first retry free", key: "7/image/a.png", suffixes: []string{"bbbbbbb"}, want: "7/image/a_bbbbbbb.png"},
		{name: "collision on retry", key: "7/image/a.png", suffixes: []string{"aaaaaaa", "ccccccc"}, want: "7/image/a_ccccccc.png"},
		{name: "no extension", key: "7/image/README", suffixes: []string{"ddddddd"}, want: "7/image/README_ddddddd"},
		{name: "last extension only", key: "7/image/a.tar.gz", suffixes: []string{"aaaaaaa"}, want: "7/image/a.tar_aaaaaaa.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			i := 0
			suffix := func() string {
				s := tt.suffixes[i]
				i++
				return s
			}
			got, err := availableKey(context.Background(), tt.key, exists, suffix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvailableKey_PropagatesErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("stat failed")
	_, err := availableKey(context.Background(), "k", func(context.Context, string) (bool, error) {
		return false, boom
	}, randomSuffix)
	assert.ErrorIs(t, err, boom)
}

func TestRandomSuffix(t *testing.T) {
	t.Parallel()
	s := randomSuffix()
	assert.Len(t, s, 7)
	assert.Regexp(t, `^[0-9a-f]{7}$`, s)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore("http://localhost:8080/media/")

	key, err := s.Save(ctx, "1/image/a.png", []byte("one"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "1/image/a.png", key)

	second, err := s.Save(ctx, "1/image/a.png", []byte("two"), "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, key, second)
	assert.Regexp(t, `^1/image/a_[0-9a-f]{7}\.png$`, second)
	assert.Equal(t, 2, s.Len())

	data, err := s.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)

	assert.Equal(t, "http://localhost:8080/media/1/image/a.png", s.URL(key))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(key)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}
