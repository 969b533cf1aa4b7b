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

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection that should be initialized and managed by the caller.
func NewPostgresUserStore(db *sql.DB, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

const userSelect = `
	SELECT u.id, u.username, u.email, u.hashed_password, u.first_name, u.last_name,
	       u.role, u.is_active, u.date_joined, u.updated_at,
	       ap.user_id, ap.bio, ap.profile_picture, ap.created_at, ap.updated_at
	FROM users u
	LEFT JOIN author_profiles ap ON ap.user_id = u.id
`

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u          domain.User
		role       string
		profileID  sql.NullInt64
		bio        sql.NullString
		picture    sql.NullString
		pCreatedAt sql.NullTime
		pUpdatedAt sql.NullTime
	)
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName,
		&role, &u.IsActive, &u.DateJoined, &u.UpdatedAt,
		&profileID, &bio, &picture, &pCreatedAt, &pUpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	if profileID.Valid {
		u.Profile = &domain.AuthorProfile{
			UserID:    profileID.Int64,
			Bio:       bio.String,
			CreatedAt: pCreatedAt.Time,
			UpdatedAt: pUpdatedAt.Time,
		}
		if picture.Valid {
			key := picture.String
			u.Profile.ProfilePicture = &key
		}
	}
	return &u, nil
}

// List implements store.UserStore.List
func (s *PostgresUserStore) List(ctx context.Context) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, userSelect+"\tORDER BY u.id")
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	if err := s.loadRelations(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create implements store.UserStore.Create
// Authors get their profile row in the same transaction.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return err
	}
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: hashed password is required", store.ErrInvalidEntity)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (username, email, hashed_password, first_name, last_name, role, is_active, date_joined, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			user.Username, user.Email, user.HashedPassword, user.FirstName, user.LastName,
			string(user.Role), user.IsActive, user.DateJoined, user.UpdatedAt,
		).Scan(&user.ID)
		if err != nil {
			return MapError(err)
		}

		if !user.IsAuthor() {
			return nil
		}
		profile := domain.NewAuthorProfile(user.ID)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO author_profiles (user_id, bio, created_at, updated_at)
			VALUES ($1, $2, $3, $4)`,
			profile.UserID, profile.Bio, profile.CreatedAt, profile.UpdatedAt,
		); err != nil {
			return MapError(err)
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		log.Warn("failed to create user", slog.String("error", err.Error()), slog.String("username", user.Username))
		return err
	}

	user.Password = ""
	log.Info("user created", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	u, err := scanUser(s.db.QueryRowContext(ctx, userSelect+"\tWHERE u.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.Int64("user_id", id))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()), slog.Int64("user_id", id))
		return nil, MapError(err)
	}

	if err := s.loadRelations(ctx, []*domain.User{u}); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, userSelect+"\tWHERE u.username = $1", username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}
	return u, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}
	user.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET username = $1, email = $2, hashed_password = $3, first_name = $4, last_name = $5,
		    is_active = $6, updated_at = $7
		WHERE id = $8`,
		user.Username, user.Email, user.HashedPassword, user.FirstName, user.LastName,
		user.IsActive, user.UpdatedAt, user.ID,
	)
	if err != nil {
		log.Warn("failed to update user", slog.String("error", err.Error()), slog.Int64("user_id", user.ID))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	user.Password = ""
	log.Info("user updated", slog.Int64("user_id", user.ID))
	return nil
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user", slog.String("error", err.Error()), slog.Int64("user_id", id))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

// loadRelations attaches social accounts and posts to users.
func (s *PostgresUserStore) loadRelations(ctx context.Context, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	accounts, err := querySocialAccounts(ctx, s.db,
		`SELECT `+socialAccountColumns+` FROM social_accounts WHERE profile_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	byProfile := make(map[int64][]*domain.SocialAccount)
	for _, a := range accounts {
		byProfile[a.ProfileID] = append(byProfile[a.ProfileID], a)
	}

	byAuthor, err := queryPlainPosts(ctx, s.db, `
		SELECT p.author_id, `+plainPostColumns+`
		FROM posts p
		WHERE p.author_id = ANY($1)
		ORDER BY p.created_at DESC, p.id DESC`, ids)
	if err != nil {
		return err
	}

	for _, u := range users {
		if u.Profile != nil {
			u.Profile.SocialAccounts = byProfile[u.ID]
		}
		u.Posts = byAuthor[u.ID]
	}
	return nil
}
