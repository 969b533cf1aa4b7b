package store

import (
	"context"

	"github.com/phrazzld/blog-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// List returns all users ordered by ID, fully loaded.
	List(ctx context.Context) ([]*domain.User, error)

	// Create saves a new user. HashedPassword must already be set. An author
	// gets an empty profile in the same transaction.
	// Returns a *DuplicateError if the username or email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user with its profile, social accounts and posts.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user without relations.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update saves the user's columns, including HashedPassword.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user and, by cascade, everything the user owns.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id int64) error
}

// ProfileStore defines the interface for author profile persistence.
type ProfileStore interface {
	// GetByUserID returns the profile with its social accounts.
	// Returns ErrProfileNotFound if the user has no profile.
	GetByUserID(ctx context.Context, userID int64) (*domain.AuthorProfile, error)

	// Update saves bio and profile picture.
	Update(ctx context.Context, p *domain.AuthorProfile) error
}

// SocialAccountStore defines the interface for social account persistence.
type SocialAccountStore interface {
	// GetByID returns ErrSocialAccountNotFound if the account does not exist.
	GetByID(ctx context.Context, id int64) (*domain.SocialAccount, error)

	// Create inserts a and sets its ID. Returns a *DuplicateError if the URL
	// is already registered.
	Create(ctx context.Context, a *domain.SocialAccount) error

	Update(ctx context.Context, a *domain.SocialAccount) error
	Delete(ctx context.Context, id int64) error
}
