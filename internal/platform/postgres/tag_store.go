package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/store"
)

// PostgresTagStore implements the store.TagStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the TagStore interface.
func NewPostgresTagStore(db store.DBTX, logger *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTagStore{
		db:     db,
		logger: logger.With(slog.String("component", "tag_store")),
	}
}

var _ store.TagStore = (*PostgresTagStore)(nil)

const tagColumns = `id, name, slug, created_at, updated_at`

func scanTag(row rowScanner) (*domain.Tag, error) {
	var t domain.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresTagStore) queryTags(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return tags, nil
}

// List implements store.TagStore.List
func (s *PostgresTagStore) List(ctx context.Context) ([]*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tags, err := s.queryTags(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY id`)
	if err != nil {
		log.Error("failed to list tags", slog.String("error", err.Error()))
		return nil, err
	}
	if err := s.loadPosts(ctx, tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetBySlug implements store.TagStore.GetBySlug
func (s *PostgresTagStore) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	t, err := scanTag(s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("tag not found", slog.String("slug", slug))
			return nil, store.ErrTagNotFound
		}
		return nil, MapError(err)
	}
	if err := s.loadPosts(ctx, []*domain.Tag{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// GetBySlugs implements store.TagStore.GetBySlugs
func (s *PostgresTagStore) GetBySlugs(ctx context.Context, slugs []string) ([]*domain.Tag, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	return s.queryTags(ctx, `SELECT `+tagColumns+` FROM tags WHERE slug = ANY($1) ORDER BY id`, slugs)
}

func (s *PostgresTagStore) loadPosts(ctx context.Context, tags []*domain.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	ids := make([]int64, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	byTag, err := queryPlainPosts(ctx, s.db, `
		SELECT pt.tag_id, `+plainPostColumns+`
		FROM post_tags pt
		JOIN posts p ON p.id = pt.post_id
		WHERE pt.tag_id = ANY($1)
		ORDER BY p.created_at DESC, p.id DESC`, ids)
	if err != nil {
		return err
	}
	for _, t := range tags {
		t.Posts = byTag[t.ID]
	}
	return nil
}

// Create implements store.TagStore.Create
func (s *PostgresTagStore) Create(ctx context.Context, t *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := t.Clean(); err != nil {
		return err
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		t.Name, t.Slug, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		log.Warn("failed to create tag", slog.String("error", err.Error()), slog.String("name", t.Name))
		return MapError(err)
	}

	log.Info("tag created", slog.Int64("tag_id", t.ID), slog.String("slug", t.Slug))
	return nil
}

// Update implements store.TagStore.Update
func (s *PostgresTagStore) Update(ctx context.Context, t *domain.Tag) error {
	if err := t.Clean(); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`UPDATE tags SET name = $1, slug = $2, updated_at = $3 WHERE id = $4`,
		t.Name, t.Slug, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTagNotFound)
}

// Delete implements store.TagStore.Delete
func (s *PostgresTagStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTagNotFound); err != nil {
		return err
	}

	log.Info("tag deleted", slog.Int64("tag_id", id))
	return nil
}
