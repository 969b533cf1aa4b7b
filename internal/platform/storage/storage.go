// Package storage keeps uploaded media blobs. The MinIO implementation backs
// production deployments; the in-memory store serves local runs and tests.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrBlobNotFound is returned when a key does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore saves and removes media blobs by key.
type BlobStore interface {
	// Save stores data under key, or under an available variant of key when
	// key is taken, and returns the key actually used.
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public address of key.
	URL(key string) string
}

// maxNameAttempts bounds the search for a free key.
const maxNameAttempts = 100

// randomSuffix returns seven random lowercase alphanumerics.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
}

// availableKey returns key, or key with "_xxxxxxx" inserted before the
// extension, choosing the first candidate for which exists reports false.
func availableKey(
	ctx context.Context,
	key string,
	exists func(ctx context.Context, key string) (bool, error),
	suffix func() string,
) (string, error) {
	dir, file := path.Split(key)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)

	candidate := key
	for i := 0; i < maxNameAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = dir + stem + "_" + suffix() + ext
	}
	return "", errors.New("no available name for " + key)
}
