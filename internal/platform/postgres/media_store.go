package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/store"
)

// PostgresMediaFileStore implements the store.MediaFileStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMediaFileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMediaFileStore creates a new PostgreSQL implementation of the MediaFileStore interface.
func NewPostgresMediaFileStore(db store.DBTX, logger *slog.Logger) *PostgresMediaFileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMediaFileStore{
		db:     db,
		logger: logger.With(slog.String("component", "media_file_store")),
	}
}

var _ store.MediaFileStore = (*PostgresMediaFileStore)(nil)

func (s *PostgresMediaFileStore) query(ctx context.Context, query string, args ...any) ([]*domain.MediaFile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var files []*domain.MediaFile
	for rows.Next() {
		m, err := scanMediaFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media file row: %w", err)
		}
		files = append(files, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media file rows: %w", err)
	}
	return files, nil
}

// List implements store.MediaFileStore.List
func (s *PostgresMediaFileStore) List(ctx context.Context) ([]*domain.MediaFile, error) {
	return s.query(ctx, `SELECT `+mediaColumns+` FROM media_files ORDER BY id`)
}

// ListByPost implements store.MediaFileStore.ListByPost
func (s *PostgresMediaFileStore) ListByPost(ctx context.Context, postID int64) ([]*domain.MediaFile, error) {
	return s.query(ctx, `SELECT `+mediaColumns+` FROM media_files WHERE post_id = $1 ORDER BY id`, postID)
}

// ListByAuthor implements store.MediaFileStore.ListByAuthor
func (s *PostgresMediaFileStore) ListByAuthor(ctx context.Context, authorID int64) ([]*domain.MediaFile, error) {
	return s.query(ctx, `
		SELECT m.id, m.post_id, m.file, m.name, m.type, m.size, m.width, m.height, m.created_at, m.updated_at
		FROM media_files m
		JOIN posts p ON p.id = m.post_id
		WHERE p.author_id = $1
		ORDER BY m.id`, authorID)
}

// GetByID implements store.MediaFileStore.GetByID
func (s *PostgresMediaFileStore) GetByID(ctx context.Context, id int64) (*domain.MediaFile, error) {
	m, err := scanMediaFile(s.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media_files WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMediaFileNotFound
		}
		return nil, MapError(err)
	}
	return m, nil
}

// Create implements store.MediaFileStore.Create
func (s *PostgresMediaFileStore) Create(ctx context.Context, m *domain.MediaFile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var width, height sql.NullInt32
	if m.Width != nil && m.Height != nil {
		width = sql.NullInt32{Int32: int32(*m.Width), Valid: true}
		height = sql.NullInt32{Int32: int32(*m.Height), Valid: true}
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO media_files (post_id, file, name, type, size, width, height, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		m.PostID, m.File, m.Name, string(m.Type), m.Size, width, height, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		log.Warn("failed to create media file", slog.String("error", err.Error()), slog.String("name", m.Name))
		return MapError(err)
	}

	log.Info("media file created",
		slog.Int64("media_file_id", m.ID),
		slog.Int64("post_id", m.PostID),
		slog.String("type", string(m.Type)))
	return nil
}

// Delete implements store.MediaFileStore.Delete
func (s *PostgresMediaFileStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrMediaFileNotFound)
}
