package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Role identifies what a user may do.
type Role string

const (
	// RoleAdmin users may manage every resource.
	RoleAdmin Role = "admin"

	// RoleAuthor users may manage their own posts, media and profile.
	RoleAuthor Role = "author"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAuthor
}

// User is an account that can log in. Authors additionally own an
// AuthorProfile.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // plaintext, only set while creating or changing the password
	HashedPassword string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           Role      `json:"role"`
	IsActive       bool      `json:"is_active"`
	DateJoined     time.Time `json:"date_joined"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Loaded relations. Profile is nil for admins.
	Profile *AuthorProfile `json:"-"`
	Posts   []*Post        `json:"-"`
}

// NewAuthor returns an active author with the given credentials. The profile
// is provisioned by the store in the same transaction as the user row.
func NewAuthor(username, email, password string) *User {
	now := time.Now().UTC()
	return &User{
		Username:   username,
		Email:      email,
		Password:   password,
		Role:       RoleAuthor,
		IsActive:   true,
		DateJoined: now,
		UpdatedAt:  now,
	}
}

// NewAdmin returns an active admin with the given credentials.
func NewAdmin(username, email, password string) *User {
	u := NewAuthor(username, email, password)
	u.Role = RoleAdmin
	return u
}

// IsAuthor reports whether the user has the author role.
func (u *User) IsAuthor() bool {
	return u.Role == RoleAuthor
}

// Validate checks the user's field rules and returns FieldErrors on failure.
func (u *User) Validate() error {
	var errs FieldErrors
	check(&errs, "username", u.Username, append([]validation.Rule{notBlank, maxLength(150)}, usernameRules...)...)
	check(&errs, "email", u.Email, append([]validation.Rule{notBlank, maxLength(254)}, emailRules...)...)
	check(&errs, "first_name", u.FirstName, maxLength(150))
	check(&errs, "last_name", u.LastName, maxLength(150))
	check(&errs, "role", string(u.Role), oneOf(string(RoleAdmin), string(RoleAuthor)))
	return errs.Err()
}

// Principal is the caller a request is executed on behalf of. The zero value
// is an anonymous caller.
type Principal struct {
	UserID   int64
	Username string
	Role     Role
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal {
	return Principal{}
}

// PrincipalFor returns the principal for an authenticated user.
func PrincipalFor(u *User) Principal {
	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// IsAuthenticated reports whether the caller has logged in.
func (p Principal) IsAuthenticated() bool {
	return p.UserID != 0
}

// IsAdmin reports whether the caller is an authenticated admin.
func (p Principal) IsAdmin() bool {
	return p.IsAuthenticated() && p.Role == RoleAdmin
}

// HasRole reports whether the caller holds one of roles.
func (p Principal) HasRole(roles ...Role) bool {
	if !p.IsAuthenticated() {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// CanManage reports whether the caller may mutate a resource owned by
// ownerID. Admins may manage everything.
func (p Principal) CanManage(ownerID int64) bool {
	return p.IsAdmin() || (p.IsAuthenticated() && p.UserID == ownerID)
}
