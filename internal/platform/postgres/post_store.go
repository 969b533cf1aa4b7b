package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/store"
)

// PostgresPostStore implements the store.PostStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPostStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPostStore creates a new PostgreSQL implementation of the PostStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresPostStore(db *sql.DB, logger *slog.Logger) *PostgresPostStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPostStore{
		db:     db,
		logger: logger.With(slog.String("component", "post_store")),
	}
}

// Ensure PostgresPostStore implements store.PostStore interface
var _ store.PostStore = (*PostgresPostStore)(nil)

const postSelect = `
	SELECT p.id, p.title, p.slug, p.content, p.status, p.author_id, p.category_id, p.created_at, p.updated_at,
	       u.username, u.email, u.first_name, u.last_name, u.role, u.is_active, u.date_joined, u.updated_at,
	       c.name, c.description, c.slug, c.created_at, c.updated_at,
	       COALESCE(s.share_count, 0), COALESCE(s.like_count, 0), COALESCE(s.comment_count, 0)
	FROM posts p
	JOIN users u ON u.id = p.author_id
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN post_statistics s ON s.post_id = p.id
`

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		p        domain.Post
		u        domain.User
		c        domain.Category
		status   string
		userRole string
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &status, &p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
		&u.Username, &u.Email, &u.FirstName, &u.LastName, &userRole, &u.IsActive, &u.DateJoined, &u.UpdatedAt,
		&c.Name, &c.Description, &c.Slug, &c.CreatedAt, &c.UpdatedAt,
		&p.Statistics.ShareCount, &p.Statistics.LikeCount, &p.Statistics.CommentCount,
	); err != nil {
		return nil, err
	}
	p.Status = domain.PostStatus(status)
	u.ID = p.AuthorID
	u.Role = domain.Role(userRole)
	c.ID = p.CategoryID
	p.Author = &u
	p.Category = &c
	p.Statistics.PostID = p.ID
	return &p, nil
}

// buildPostQuery translates f into SQL over postSelect.
func buildPostQuery(f store.PostFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	isAuthor := f.Viewer.IsAuthenticated() && f.Viewer.Role == domain.RoleAuthor
	switch {
	case f.Viewer.IsAdmin():
	case isAuthor:
		where = append(where, fmt.Sprintf("(p.author_id = %s OR p.status = %s)",
			arg(f.Viewer.UserID), arg(string(domain.StatusPublished))))
	default:
		where = append(where, "p.status = "+arg(string(domain.StatusPublished)))
	}

	if f.Category != "" {
		where = append(where, "c.slug = "+arg(f.Category))
	}

	if len(f.Tags) > 0 {
		where = append(where, `EXISTS (
		SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = p.id AND t.slug = ANY(`+arg(f.Tags)+`))`)
	}

	if len(f.Keywords) > 0 {
		ors := make([]string, 0, len(f.Keywords))
		for _, kw := range f.Keywords {
			ors = append(ors, "p.title ILIKE "+arg("%"+escapeLike(kw)+"%"))
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	query := postSelect
	if len(where) > 0 {
		query += "\tWHERE " + strings.Join(where, "\n\t  AND ") + "\n"
	}
	if isAuthor {
		query += fmt.Sprintf("\tORDER BY (p.author_id = %s) DESC, p.created_at DESC, p.id DESC", arg(f.Viewer.UserID))
	} else {
		query += "\tORDER BY p.created_at DESC, p.id DESC"
	}
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// List implements store.PostStore.List
func (s *PostgresPostStore) List(ctx context.Context, f store.PostFilter) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args := buildPostQuery(f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	if err := loadPostRelations(ctx, s.db, posts); err != nil {
		log.Error("failed to load post relations", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("posts listed", slog.Int("count", len(posts)))
	return posts, nil
}

// GetBySlug implements store.PostStore.GetBySlug
func (s *PostgresPostStore) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p, err := scanPost(s.db.QueryRowContext(ctx, postSelect+"\tWHERE p.slug = $1", slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("post not found", slog.String("slug", slug))
			return nil, store.ErrPostNotFound
		}
		log.Error("failed to get post", slog.String("error", err.Error()), slog.String("slug", slug))
		return nil, MapError(err)
	}

	if err := loadPostRelations(ctx, s.db, []*domain.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// Create implements store.PostStore.Create
// The post row, its statistics row and its tag links are written in one transaction.
func (s *PostgresPostStore) Create(ctx context.Context, p *domain.Post) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		return err
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO posts (title, slug, content, status, author_id, category_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			p.Title, p.Slug, p.Content, string(p.Status), p.AuthorID, p.CategoryID, p.CreatedAt, p.UpdatedAt,
		).Scan(&p.ID)
		if err != nil {
			return MapError(err)
		}

		p.Statistics.PostID = p.ID
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO post_statistics (post_id, share_count, like_count, comment_count)
			VALUES ($1, $2, $3, $4)`,
			p.ID, p.Statistics.ShareCount, p.Statistics.LikeCount, p.Statistics.CommentCount,
		); err != nil {
			return MapError(err)
		}

		return insertPostTags(ctx, tx, p)
	})
	if err != nil {
		log.Warn("failed to create post", slog.String("error", err.Error()), slog.String("slug", p.Slug))
		return err
	}

	log.Info("post created", slog.Int64("post_id", p.ID), slog.Int64("author_id", p.AuthorID))
	return nil
}

// Update implements store.PostStore.Update
func (s *PostgresPostStore) Update(ctx context.Context, p *domain.Post) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE posts
			SET title = $1, slug = $2, content = $3, status = $4, category_id = $5, updated_at = $6
			WHERE id = $7`,
			p.Title, p.Slug, p.Content, string(p.Status), p.CategoryID, p.UpdatedAt, p.ID,
		)
		if err != nil {
			return MapError(err)
		}
		if err := CheckRowsAffected(result, store.ErrPostNotFound); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, p.ID); err != nil {
			return MapError(err)
		}
		return insertPostTags(ctx, tx, p)
	})
	if err != nil {
		log.Warn("failed to update post", slog.String("error", err.Error()), slog.Int64("post_id", p.ID))
		return err
	}

	log.Info("post updated", slog.Int64("post_id", p.ID))
	return nil
}

// Delete implements store.PostStore.Delete
func (s *PostgresPostStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete post", slog.String("error", err.Error()), slog.Int64("post_id", id))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrPostNotFound); err != nil {
		return err
	}

	log.Info("post deleted", slog.Int64("post_id", id))
	return nil
}

func insertPostTags(ctx context.Context, tx store.DBTX, p *domain.Post) error {
	for _, t := range p.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			p.ID, t.ID,
		); err != nil {
			return MapError(err)
		}
	}
	return nil
}

// loadPostRelations attaches tags and media files to posts with two batched
// queries.
func loadPostRelations(ctx context.Context, db store.DBTX, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	byID := make(map[int64]*domain.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	tagRows, err := db.QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at, t.updated_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY t.id`, ids)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = tagRows.Close() }()
	for tagRows.Next() {
		var (
			postID int64
			t      domain.Tag
		)
		if err := tagRows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan tag row: %w", err)
		}
		if p := byID[postID]; p != nil {
			p.Tags = append(p.Tags, &t)
		}
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("error iterating tag rows: %w", err)
	}

	mediaRows, err := db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media_files WHERE post_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = mediaRows.Close() }()
	for mediaRows.Next() {
		m, err := scanMediaFile(mediaRows)
		if err != nil {
			return fmt.Errorf("failed to scan media file row: %w", err)
		}
		if p := byID[m.PostID]; p != nil {
			p.MediaFiles = append(p.MediaFiles, m)
		}
	}
	if err := mediaRows.Err(); err != nil {
		return fmt.Errorf("error iterating media file rows: %w", err)
	}
	return nil
}
