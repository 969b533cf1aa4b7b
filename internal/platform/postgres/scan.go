package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/store"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const mediaColumns = `id, post_id, file, name, type, size, width, height, created_at, updated_at`

func scanMediaFile(row rowScanner) (*domain.MediaFile, error) {
	var (
		m             domain.MediaFile
		mediaType     string
		width, height sql.NullInt32
	)
	if err := row.Scan(
		&m.ID, &m.PostID, &m.File, &m.Name, &mediaType, &m.Size,
		&width, &height, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.Type = domain.MediaType(mediaType)
	if width.Valid && height.Valid {
		m.SetDimensions(int(width.Int32), int(height.Int32))
	}
	return &m, nil
}

const plainPostColumns = `p.id, p.title, p.slug, p.content, p.status, p.author_id, p.category_id, p.created_at, p.updated_at`

// queryPlainPosts runs query and groups the resulting posts by the int64 key
// selected in the first column.
func queryPlainPosts(ctx context.Context, db store.DBTX, query string, args ...any) (map[int64][]*domain.Post, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64][]*domain.Post)
	for rows.Next() {
		var (
			key    int64
			p      domain.Post
			status string
		)
		if err := rows.Scan(
			&key, &p.ID, &p.Title, &p.Slug, &p.Content, &status,
			&p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		p.Status = domain.PostStatus(status)
		out[key] = append(out[key], &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return out, nil
}
