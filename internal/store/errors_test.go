package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("failed: %w", ErrNotFound), expected: true},
		{name: "ErrPostNotFound", err: ErrPostNotFound, expected: true},
		{name: "wrapped ErrCategoryNotFound", err: fmt.Errorf("lookup: %w", ErrCategoryNotFound), expected: true},
		{name: "duplicate", err: ErrDuplicate, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestDuplicateError(t *testing.T) {
	cause := errors.New("pq: duplicate key")
	err := fmt.Errorf("create: %w", NewDuplicateError("category", "name", cause))

	assert.True(t, IsDuplicateError(err))
	assert.ErrorIs(t, err, cause)

	var dup *DuplicateError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, "category", dup.Entity)
	assert.Equal(t, "name", dup.Field)
	assert.Equal(t, "tag with this slug already exists", NewDuplicateError("tag", "slug", nil).Error())
}

func TestStoreError(t *testing.T) {
	err := NewStoreError("post", "create", "insert failed", ErrInvalidEntity)
	assert.Equal(t, "create operation on post failed: insert failed: invalid entity", err.Error())
	assert.ErrorIs(t, err, ErrInvalidEntity)

	noCause := NewStoreError("post", "delete", "nothing to delete", nil)
	assert.Equal(t, "delete operation on post failed: nothing to delete", noCause.Error())
}
