package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		service  string
		op       string
		err      error
		expected string
	}{
		{
			name:     "with underlying error",
			service:  "user",
			op:       "create",
			err:      errors.New("database connection failed"),
			expected: "user service create operation failed: database connection failed",
		},
		{
			name:     "without underlying error",
			service:  "post",
			op:       "delete",
			err:      nil,
			expected: "post service delete operation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceErr := NewServiceError(tt.service, tt.op, tt.err)
			assert.Equal(t, tt.expected, serviceErr.Error())
		})
	}
}

func TestServiceError_ErrorsIs(t *testing.T) {
	underlyingErr := errors.New("database connection failed")
	serviceErr := &ServiceError{Service: "user", Op: "create", Err: underlyingErr}

	assert.True(t, errors.Is(serviceErr, underlyingErr))
	assert.False(t, errors.Is(serviceErr, errors.New("different error")))
}

func TestTranslateStoreError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantKind   error
		wantDetail string
		wantField  string
	}{
		{
			name:       "not found names the model",
			err:        store.ErrCategoryNotFound,
			wantKind:   domain.ErrNotFound,
			wantDetail: "No Category matches the given query.",
		},
		{
			name:       "duplicate becomes field error",
			err:        store.NewDuplicateError("category", "name", nil),
			wantKind:   domain.ErrBadRequest,
			wantDetail: "name: Category with this Name already exists.",
			wantField:  "name",
		},
		{
			name:       "social account url",
			err:        fmt.Errorf("insert: %w", store.NewDuplicateError("social account", "url", nil)),
			wantKind:   domain.ErrBadRequest,
			wantDetail: "url: Social account with this Url already exists.",
			wantField:  "url",
		},
		{
			name:       "username uses the user form message",
			err:        store.NewDuplicateError("user", "username", nil),
			wantKind:   domain.ErrBadRequest,
			wantDetail: "username: A user with that username already exists.",
			wantField:  "username",
		},
		{
			name:       "domain error passes through",
			err:        domain.Forbidden("nope"),
			wantKind:   domain.ErrForbidden,
			wantDetail: "nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := translateStoreError("category", "get", "Category", tt.err)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantDetail, err.Error())
			if tt.wantField != "" {
				var fe domain.FieldErrors
				require.ErrorAs(t, err, &fe)
				assert.True(t, fe.HasField(tt.wantField))
			}
		})
	}
}

func TestTranslateStoreError_Unexpected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, translateStoreError("tag", "list", "Tag", nil))

	boom := errors.New("connection reset")
	err := translateStoreError("tag", "list", "Tag", boom)
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "tag", se.Service)
	assert.ErrorIs(t, err, boom)
}

func TestPasswordPolicyError(t *testing.T) {
	t.Parallel()
	err := &PasswordPolicyError{Messages: []string{"a.", "b."}}
	assert.Equal(t, "a. b.", err.Error())
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}
