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

// PostgresProfileStore implements store.ProfileStore and
// store.SocialAccountStore on PostgreSQL.
type PostgresProfileStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProfileStore creates a new PostgreSQL profile and social account store.
func NewPostgresProfileStore(db store.DBTX, logger *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProfileStore{
		db:     db,
		logger: logger.With(slog.String("component", "profile_store")),
	}
}

var (
	_ store.ProfileStore       = (*PostgresProfileStore)(nil)
	_ store.SocialAccountStore = (*PostgresSocialAccountStore)(nil)
)

// GetByUserID implements store.ProfileStore.GetByUserID
func (s *PostgresProfileStore) GetByUserID(ctx context.Context, userID int64) (*domain.AuthorProfile, error) {
	var (
		p       domain.AuthorProfile
		picture sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, bio, profile_picture, created_at, updated_at
		FROM author_profiles
		WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.Bio, &picture, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, MapError(err)
	}
	if picture.Valid {
		key := picture.String
		p.ProfilePicture = &key
	}

	p.SocialAccounts, err = querySocialAccounts(ctx, s.db,
		`SELECT `+socialAccountColumns+` FROM social_accounts WHERE profile_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update implements store.ProfileStore.Update
func (s *PostgresProfileStore) Update(ctx context.Context, p *domain.AuthorProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	p.UpdatedAt = time.Now().UTC()
	var picture sql.NullString
	if p.ProfilePicture != nil {
		picture = sql.NullString{String: *p.ProfilePicture, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE author_profiles
		SET bio = $1, profile_picture = $2, updated_at = $3
		WHERE user_id = $4`,
		p.Bio, picture, p.UpdatedAt, p.UserID,
	)
	if err != nil {
		log.Warn("failed to update profile", slog.String("error", err.Error()), slog.Int64("user_id", p.UserID))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrProfileNotFound)
}

// PostgresSocialAccountStore implements store.SocialAccountStore.
type PostgresSocialAccountStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSocialAccountStore creates a new PostgreSQL social account store.
func NewPostgresSocialAccountStore(db store.DBTX, logger *slog.Logger) *PostgresSocialAccountStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSocialAccountStore{
		db:     db,
		logger: logger.With(slog.String("component", "social_account_store")),
	}
}

const socialAccountColumns = `id, profile_id, provider, username, url, created_at, updated_at`

func scanSocialAccount(row rowScanner) (*domain.SocialAccount, error) {
	var a domain.SocialAccount
	if err := row.Scan(&a.ID, &a.ProfileID, &a.Provider, &a.Username, &a.URL, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func querySocialAccounts(ctx context.Context, db store.DBTX, query string, args ...any) ([]*domain.SocialAccount, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.SocialAccount
	for rows.Next() {
		a, err := scanSocialAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan social account row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating social account rows: %w", err)
	}
	return out, nil
}

// GetByID implements store.SocialAccountStore.GetByID
func (s *PostgresSocialAccountStore) GetByID(ctx context.Context, id int64) (*domain.SocialAccount, error) {
	a, err := scanSocialAccount(s.db.QueryRowContext(ctx,
		`SELECT `+socialAccountColumns+` FROM social_accounts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSocialAccountNotFound
		}
		return nil, MapError(err)
	}
	return a, nil
}

// Create implements store.SocialAccountStore.Create
func (s *PostgresSocialAccountStore) Create(ctx context.Context, a *domain.SocialAccount) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		return err
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO social_accounts (profile_id, provider, username, url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		a.ProfileID, a.Provider, a.Username, a.URL, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		log.Warn("failed to create social account", slog.String("error", err.Error()))
		return MapError(err)
	}
	log.Info("social account created", slog.Int64("social_account_id", a.ID), slog.Int64("profile_id", a.ProfileID))
	return nil
}

// Update implements store.SocialAccountStore.Update
func (s *PostgresSocialAccountStore) Update(ctx context.Context, a *domain.SocialAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE social_accounts
		SET provider = $1, username = $2, url = $3, updated_at = $4
		WHERE id = $5`,
		a.Provider, a.Username, a.URL, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrSocialAccountNotFound)
}

// Delete implements store.SocialAccountStore.Delete
func (s *PostgresSocialAccountStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM social_accounts WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrSocialAccountNotFound)
}
