package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/blog-api/internal/platform/postgres"
	"github.com/phrazzld/blog-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		SchemaName:     "public",
		TableName:      "test_table",
		ColumnName:     "test_column",
		ConstraintName: constraint,
	}
}

// MockResult implements sql.Result for testing
type MockResult struct {
	rowsAffected int64
	err          error
}

func (m MockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m MockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.False(t, postgres.IsUniqueViolation(nil))
	assert.False(t, postgres.IsUniqueViolation(errors.New("generic error")))
	assert.True(t, postgres.IsUniqueViolation(newPgError("23505", "x")))
	assert.True(t, postgres.IsUniqueViolation(fmt.Errorf("wrapped: %w", newPgError("23505", "x"))))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503", "x")))
	assert.True(t, postgres.IsForeignKeyViolation(newPgError("23503", "x")))
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "no rows", err: sql.ErrNoRows, target: store.ErrNotFound},
		{name: "unknown unique", err: newPgError("23505", "other_key"), target: store.ErrDuplicate},
		{name: "foreign key", err: newPgError("23503", "posts_category_id_fkey"), target: store.ErrInvalidEntity},
		{name: "check", err: newPgError("23514", "posts_status_check"), target: store.ErrInvalidEntity},
		{name: "not null", err: newPgError("23502", ""), target: store.ErrInvalidEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, postgres.MapError(tt.err), tt.target)
		})
	}

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, postgres.MapError(nil))
	})

	t.Run("unmapped error passes through", func(t *testing.T) {
		t.Parallel()
		orig := errors.New("boom")
		assert.Same(t, orig, postgres.MapError(orig))
	})

	t.Run("known unique constraint names the field", func(t *testing.T) {
		t.Parallel()
		err := postgres.MapError(newPgError("23505", "categories_name_key"))
		var dup *store.DuplicateError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "category", dup.Entity)
		assert.Equal(t, "name", dup.Field)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 1}, nil))
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{}, nil), store.ErrNotFound)
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{}, store.ErrTagNotFound), store.ErrTagNotFound)
	assert.Error(t, postgres.CheckRowsAffected(MockResult{err: errors.New("driver")}, nil))
	assert.Error(t, postgres.CheckRowsAffected(nil, nil))
}
