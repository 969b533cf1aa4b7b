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

// PostgresCategoryStore implements the store.CategoryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCategoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCategoryStore creates a new PostgreSQL implementation of the CategoryStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCategoryStore(db store.DBTX, logger *slog.Logger) *PostgresCategoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCategoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "category_store")),
	}
}

// Ensure PostgresCategoryStore implements store.CategoryStore interface
var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

const categoryColumns = `id, name, description, slug, created_at, updated_at`

func scanCategory(row rowScanner) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List implements store.CategoryStore.List
func (s *PostgresCategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		log.Error("failed to list categories", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	if err := s.loadPosts(ctx, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetBySlug implements store.CategoryStore.GetBySlug
func (s *PostgresCategoryStore) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("category not found", slog.String("slug", slug))
			return nil, store.ErrCategoryNotFound
		}
		log.Error("failed to get category", slog.String("error", err.Error()), slog.String("slug", slug))
		return nil, MapError(err)
	}

	if err := s.loadPosts(ctx, []*domain.Category{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresCategoryStore) loadPosts(ctx context.Context, categories []*domain.Category) error {
	if len(categories) == 0 {
		return nil
	}
	ids := make([]int64, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	byCategory, err := queryPlainPosts(ctx, s.db, `
		SELECT p.category_id, `+plainPostColumns+`
		FROM posts p
		WHERE p.category_id = ANY($1)
		ORDER BY p.created_at DESC, p.id DESC`, ids)
	if err != nil {
		return err
	}
	for _, c := range categories {
		c.Posts = byCategory[c.ID]
	}
	return nil
}

// Create implements store.CategoryStore.Create
func (s *PostgresCategoryStore) Create(ctx context.Context, c *domain.Category) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Clean(); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, description, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		c.Name, c.Description, c.Slug, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		log.Warn("failed to create category", slog.String("error", err.Error()), slog.String("name", c.Name))
		return MapError(err)
	}

	log.Info("category created", slog.Int64("category_id", c.ID), slog.String("slug", c.Slug))
	return nil
}

// Update implements store.CategoryStore.Update
func (s *PostgresCategoryStore) Update(ctx context.Context, c *domain.Category) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Clean(); err != nil {
		return err
	}
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = $1, description = $2, slug = $3, updated_at = $4
		WHERE id = $5`,
		c.Name, c.Description, c.Slug, c.UpdatedAt, c.ID,
	)
	if err != nil {
		log.Warn("failed to update category", slog.String("error", err.Error()), slog.Int64("category_id", c.ID))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCategoryNotFound)
}

// Delete implements store.CategoryStore.Delete
func (s *PostgresCategoryStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete category", slog.String("error", err.Error()), slog.Int64("category_id", id))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrCategoryNotFound); err != nil {
		return err
	}

	log.Info("category deleted", slog.Int64("category_id", id))
	return nil
}
