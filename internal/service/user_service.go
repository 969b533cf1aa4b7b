package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/events"
	"github.com/phrazzld/blog-api/internal/platform/session"
	"github.com/phrazzld/blog-api/internal/service/auth"
	"github.com/phrazzld/blog-api/internal/store"
)

// UserInput carries the writable user fields. Nil fields are left unchanged
// on update.
type UserInput struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
}

// UserService provides user management. Roles cannot be changed through it.
type UserService interface {
	// List returns every user. Callers gate it to admins.
	List(ctx context.Context) ([]*domain.User, error)

	// Get returns the user with id, fully loaded, to an admin or the user.
	Get(ctx context.Context, viewer domain.Principal, id int64) (*domain.User, error)

	// Create registers a new author after the password policy passes.
	Create(ctx context.Context, in UserInput) (*domain.User, error)

	// CreateAdmin registers an admin; used by the startup bootstrap.
	CreateAdmin(ctx context.Context, in UserInput) (*domain.User, error)

	// Update applies in to the user. A new password goes through the policy
	// and is rehashed.
	Update(ctx context.Context, viewer domain.Principal, id int64, in UserInput) (*domain.User, error)

	// Delete removes the user with everything they own and ends their
	// sessions.
	Delete(ctx context.Context, viewer domain.Principal, id int64) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users    store.UserStore
	media    store.MediaFileStore
	hasher   auth.PasswordHasher
	sessions session.Registry
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewUserService creates a new UserService. The session registry and the
// emitter may be nil.
func NewUserService(
	users store.UserStore,
	media store.MediaFileStore,
	hasher auth.PasswordHasher,
	sessions session.Registry,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	switch {
	case users == nil:
		return nil, nilDependency("users")
	case media == nil:
		return nil, nilDependency("media")
	case hasher == nil:
		return nil, nilDependency("hasher")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		users:    users,
		media:    media,
		hasher:   hasher,
		sessions: sessions,
		emitter:  emitter,
		logger:   logger.With("component", "user_service"),
	}, nil
}

var _ UserService = (*UserServiceImpl)(nil)

func (s *UserServiceImpl) fail(op string, err error) error {
	return translateStoreError("user", op, "User", err)
}

// List retrieves all users
func (s *UserServiceImpl) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, s.fail("list", err)
	}
	return users, nil
}

// Get retrieves a user by their ID
func (s *UserServiceImpl) Get(ctx context.Context, viewer domain.Principal, id int64) (*domain.User, error) {
	if !viewer.CanManage(id) {
		return nil, domain.Forbidden("You do not have permission to view this user.")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		s.logger.Debug("failed to retrieve user", "error", err, "user_id", id)
		return nil, s.fail("get", err)
	}
	return user, nil
}

// Create registers an author.
func (s *UserServiceImpl) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	return s.create(ctx, domain.NewAuthor(deref(in.Username), deref(in.Email), deref(in.Password)), in)
}

// CreateAdmin registers an admin.
func (s *UserServiceImpl) CreateAdmin(ctx context.Context, in UserInput) (*domain.User, error) {
	return s.create(ctx, domain.NewAdmin(deref(in.Username), deref(in.Email), deref(in.Password)), in)
}

func (s *UserServiceImpl) create(ctx context.Context, user *domain.User, in UserInput) (*domain.User, error) {
	user.FirstName = deref(in.FirstName)
	user.LastName = deref(in.LastName)

	if err := s.checkPassword(user); err != nil {
		return nil, err
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.setPassword(user); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Debug("failed to create user", "error", err, "username", user.Username)
		return nil, s.fail("create", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return s.reload(ctx, "create", user.ID)
}

// Update modifies the user's fields
// Following the pattern of getting the complete user first, then updating the specific fields
func (s *UserServiceImpl) Update(ctx context.Context, viewer domain.Principal, id int64, in UserInput) (*domain.User, error) {
	if !viewer.CanManage(id) {
		return nil, domain.Forbidden("You do not have permission to edit this user.")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("update", err)
	}

	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Password != nil {
		user.Password = *in.Password
		if err := s.checkPassword(user); err != nil {
			return nil, err
		}
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if in.Password != nil {
		if err := s.setPassword(user); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Debug("failed to update user", "error", err, "user_id", id)
		return nil, s.fail("update", err)
	}

	s.logger.Info("user updated", "user_id", id, "password_changed", in.Password != nil)
	return s.reload(ctx, "update", id)
}

// Delete removes a user by their ID
func (s *UserServiceImpl) Delete(ctx context.Context, viewer domain.Principal, id int64) error {
	if !viewer.CanManage(id) {
		return domain.Forbidden("You do not have permission to delete this user.")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return s.fail("delete", err)
	}

	files, err := s.media.ListByAuthor(ctx, id)
	if err != nil {
		return s.fail("delete", err)
	}
	keys := blobKeys(files)
	if user.Profile != nil && user.Profile.ProfilePicture != nil {
		keys = append(keys, *user.Profile.ProfilePicture)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return s.fail("delete", err)
	}

	if s.sessions != nil {
		if err := s.sessions.RevokeUser(ctx, id); err != nil {
			s.logger.Warn("failed to revoke sessions of deleted user", "error", err, "user_id", id)
		}
	}

	s.logger.Info("user deleted", "user_id", id, "released_blobs", len(keys))
	_ = events.Emit(ctx, s.emitter, events.UserDeleted, events.UserPayload{
		UserID:   id,
		Username: user.Username,
		BlobKeys: keys,
	})
	return nil
}

func (s *UserServiceImpl) reload(ctx context.Context, op string, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(op, err)
	}
	return user, nil
}

// checkPassword runs the password policy against the user's plaintext
// password and attributes.
func (s *UserServiceImpl) checkPassword(user *domain.User) error {
	problems := auth.ValidatePassword(user.Password, auth.UserAttributes{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	})
	if len(problems) > 0 {
		return &PasswordPolicyError{Messages: problems}
	}
	return nil
}

func (s *UserServiceImpl) setPassword(user *domain.User) error {
	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err, "username", user.Username)
		return NewServiceError("user", "hash password", err)
	}
	user.HashedPassword = hash
	user.Password = ""
	return nil
}
