package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostQuery(t *testing.T) {
	t.Parallel()

	author := domain.Principal{UserID: 7, Username: "ann", Role: domain.RoleAuthor}
	admin := domain.Principal{UserID: 1, Username: "root", Role: domain.RoleAdmin}

	tests := []struct {
		name     string
		filter   store.PostFilter
		contains []string
		excludes []string
		args     []any
	}{
		{
			name:     "anonymous sees published only",
			filter:   store.PostFilter{Viewer: domain.Anonymous()},
			contains: []string{"p.status = $1", "ORDER BY p.created_at DESC, p.id DESC"},
			args:     []any{"published"},
		},
		{
			name:     "admin sees everything",
			filter:   store.PostFilter{Viewer: admin},
			excludes: []string{"WHERE"},
		},
		{
			name:     "author sees own first",
			filter:   store.PostFilter{Viewer: author},
			contains: []string{"(p.author_id = $1 OR p.status = $2)", "ORDER BY (p.author_id = $3) DESC"},
			args:     []any{int64(7), "published", int64(7)},
		},
		{
			name: "category tags and keywords",
			filter: store.PostFilter{
				Viewer:   admin,
				Category: "go",
				Tags:     []string{"web", "db"},
				Keywords: []string{"50%_off"},
			},
			contains: []string{"c.slug = $1", "t.slug = ANY($2)", "p.title ILIKE $3"},
			args:     []any{"go", []string{"web", "db"}, `%50\%\_off%`},
		},
		{
			name:     "keywords are ORed",
			filter:   store.PostFilter{Viewer: admin, Keywords: []string{"a", "b"}},
			contains: []string{"(p.title ILIKE $1 OR p.title ILIKE $2)"},
			args:     []any{"%a%", "%b%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			query, args := buildPostQuery(tt.filter)
			for _, s := range tt.contains {
				assert.Contains(t, query, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, query, s)
			}
			assert.Equal(t, tt.args, args)
		})
	}
}

func postRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "slug", "content", "status", "author_id", "category_id", "created_at", "updated_at",
		"username", "email", "first_name", "last_name", "role", "is_active", "date_joined", "u_updated_at",
		"c_name", "c_description", "c_slug", "c_created_at", "c_updated_at",
		"share_count", "like_count", "comment_count",
	})
}

func TestPostgresPostStore_GetBySlug(t *testing.T) {
	t.Parallel()

	t.Run("loads relations", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresPostStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.slug = $1")).
			WithArgs("hello-world").
			WillReturnRows(postRows().AddRow(
				int64(3), "Hello World", "hello-world", "body", "published", int64(7), int64(2), testTime, testTime,
				"ann", "ann@example.com", "Ann", "Lee", "author", true, testTime, testTime,
				"Go", "", "go", testTime, testTime,
				int64(1), int64(2), int64(3),
			))
		mock.ExpectQuery(regexp.QuoteMeta("FROM post_tags pt")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"post_id", "id", "name", "slug", "created_at", "updated_at"}).
				AddRow(int64(3), int64(9), "Web", "web", testTime, testTime))
		mock.ExpectQuery(regexp.QuoteMeta("FROM media_files WHERE post_id = ANY($1)")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "post_id", "file", "name", "type", "size", "width", "height", "created_at", "updated_at",
			}).AddRow(int64(4), int64(3), "7/hello-world/a.png", "a.png", "image", int64(10), int64(640), int64(480), testTime, testTime))

		p, err := s.GetBySlug(context.Background(), "hello-world")
		require.NoError(t, err)
		assert.Equal(t, int64(3), p.ID)
		assert.Equal(t, domain.StatusPublished, p.Status)
		require.NotNil(t, p.Author)
		assert.Equal(t, "ann", p.Author.Username)
		assert.Equal(t, int64(7), p.Author.ID)
		require.NotNil(t, p.Category)
		assert.Equal(t, "go", p.Category.Slug)
		assert.Equal(t, 2, p.Statistics.LikeCount)
		require.Len(t, p.Tags, 1)
		assert.Equal(t, "web", p.Tags[0].Slug)
		require.Len(t, p.MediaFiles, 1)
		require.NotNil(t, p.MediaFiles[0].Width)
		assert.Equal(t, 640, *p.MediaFiles[0].Width)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresPostStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.slug = $1")).
			WithArgs("missing").
			WillReturnRows(postRows())

		_, err := s.GetBySlug(context.Background(), "missing")
		assert.ErrorIs(t, err, store.ErrPostNotFound)
		assert.True(t, store.IsNotFoundError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func newTestPost() *domain.Post {
	author := &domain.User{ID: 7, Username: "ann", Role: domain.RoleAuthor}
	category := &domain.Category{ID: 2, Name: "Go", Slug: "go"}
	p := domain.NewPost(author, category, "Hello World", "body")
	p.Tags = []*domain.Tag{{ID: 9, Name: "Web", Slug: "web"}}
	return p
}

func TestPostgresPostStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("writes post statistics and tags in one transaction", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresPostStore(db, nil)
		p := newTestPost()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
			WithArgs("Hello World", "hello-world", "body", "draft", int64(7), int64(2), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO post_statistics")).
			WithArgs(int64(11), int64(0), int64(0), int64(0)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO post_tags")).
			WithArgs(int64(11), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Create(context.Background(), p))
		assert.Equal(t, int64(11), p.ID)
		assert.Equal(t, int64(11), p.Statistics.PostID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate slug rolls back", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresPostStore(db, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "posts_slug_key"})
		mock.ExpectRollback()

		err := s.Create(context.Background(), newTestPost())
		var dup *store.DuplicateError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "post", dup.Entity)
		assert.Equal(t, "slug", dup.Field)
		assert.ErrorIs(t, err, store.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid post never reaches the database", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresPostStore(db, nil)
		p := newTestPost()
		p.Content = "   "

		err := s.Create(context.Background(), p)
		var fe domain.FieldErrors
		require.True(t, errors.As(err, &fe))
		assert.True(t, fe.HasField("content"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresPostStore_Update(t *testing.T) {
	t.Parallel()

	t.Run("replaces tag links", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresPostStore(db, nil)
		p := newTestPost()
		p.ID = 11
		p.Status = domain.StatusPublished

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE posts")).
			WithArgs("Hello World", "hello-world", "body", "published", int64(2), sqlmock.AnyArg(), int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM post_tags WHERE post_id = $1")).
			WithArgs(int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO post_tags")).
			WithArgs(int64(11), int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Update(context.Background(), p))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresPostStore(db, nil)
		p := newTestPost()
		p.ID = 99

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE posts")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.Update(context.Background(), p)
		assert.ErrorIs(t, err, store.ErrPostNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresPostStore_Delete(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)
	s := NewPostgresPostStore(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM posts WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), 5), store.ErrPostNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\d`, escapeLike(`c:\d`))
}
