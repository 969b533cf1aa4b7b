package postgres

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// arrayConverter lets []int64 and []string arguments reach the mock driver
// the way pgx's stdlib driver accepts them.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	switch v.(type) {
	case []int64, []string:
		return v, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() {
		mock.ExpectClose()
		_ = db.Close()
	})
	return db, mock
}

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func plainPostRows(keyColumn string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		keyColumn, "id", "title", "slug", "content", "status", "author_id", "category_id", "created_at", "updated_at",
	})
}
