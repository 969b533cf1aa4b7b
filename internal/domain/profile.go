package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AuthorProfile holds the public profile of an author. It is keyed by the
// author's user ID.
type AuthorProfile struct {
	UserID         int64            `json:"user_id"`
	Bio            string           `json:"bio"`
	ProfilePicture *string          `json:"profile_picture"` // blob key
	SocialAccounts []*SocialAccount `json:"-"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewAuthorProfile returns an empty profile for userID.
func NewAuthorProfile(userID int64) *AuthorProfile {
	now := time.Now().UTC()
	return &AuthorProfile{UserID: userID, CreatedAt: now, UpdatedAt: now}
}

// SocialAccount links an author profile to an external account.
type SocialAccount struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"profile_id"`
	Provider  string    `json:"provider"`
	Username  string    `json:"username"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the social account's field rules.
func (s *SocialAccount) Validate() error {
	var errs FieldErrors
	check(&errs, "provider", s.Provider, notBlank, maxLength(50))
	check(&errs, "username", s.Username, notBlank, maxLength(255))
	check(&errs, "url", s.URL, append([]validation.Rule{notBlank, maxLength(200)}, urlRules...)...)
	return errs.Err()
}
