package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/events"
	"github.com/phrazzld/blog-api/internal/platform/storage"
	"github.com/phrazzld/blog-api/internal/store"
)

// ProfileUpdate carries the writable profile fields. An empty or nil Bio
// keeps the stored bio; a nil Picture keeps the stored picture.
type ProfileUpdate struct {
	Bio     *string
	Picture *Upload
}

// SocialAccountInput carries the writable social account fields.
type SocialAccountInput struct {
	Provider *string
	Username *string
	URL      *string
}

// ProfileService manages author profiles and their social accounts. Every
// operation is limited to the profile's author and admins.
type ProfileService interface {
	UpdateProfile(ctx context.Context, viewer domain.Principal, userID int64, in ProfileUpdate) (*domain.AuthorProfile, error)

	CreateSocialAccount(ctx context.Context, viewer domain.Principal, userID int64, in SocialAccountInput) (*domain.SocialAccount, error)
	UpdateSocialAccount(ctx context.Context, viewer domain.Principal, userID, accountID int64, in SocialAccountInput) (*domain.SocialAccount, error)
	DeleteSocialAccount(ctx context.Context, viewer domain.Principal, userID, accountID int64) error
}

type profileServiceImpl struct {
	profiles store.ProfileStore
	accounts store.SocialAccountStore
	blobs    storage.BlobStore
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewProfileService creates a ProfileService. The emitter may be nil.
func NewProfileService(
	profiles store.ProfileStore,
	accounts store.SocialAccountStore,
	blobs storage.BlobStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (ProfileService, error) {
	switch {
	case profiles == nil:
		return nil, nilDependency("profiles")
	case accounts == nil:
		return nil, nilDependency("accounts")
	case blobs == nil:
		return nil, nilDependency("blobs")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &profileServiceImpl{
		profiles: profiles,
		accounts: accounts,
		blobs:    blobs,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "profile_service")),
	}, nil
}

var errPermissionDenied = domain.Forbidden("Permission denied")

// ProfilePictureKey is the blob key of an author's profile picture.
func ProfilePictureKey(userID int64, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	return fmt.Sprintf("%d/%s/profile/%s", userID, domain.MediaImage, name)
}

func (s *profileServiceImpl) profile(ctx context.Context, op string, viewer domain.Principal, userID int64) (*domain.AuthorProfile, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, translateStoreError("profile", op, "AuthorProfile", err)
	}
	if !viewer.CanManage(userID) {
		return nil, errPermissionDenied
	}
	return p, nil
}

// UpdateProfile implements ProfileService.
func (s *profileServiceImpl) UpdateProfile(ctx context.Context, viewer domain.Principal, userID int64, in ProfileUpdate) (*domain.AuthorProfile, error) {
	p, err := s.profile(ctx, "update", viewer, userID)
	if err != nil {
		return nil, err
	}

	if in.Bio != nil && *in.Bio != "" {
		p.Bio = *in.Bio
	}

	var released string
	if in.Picture != nil {
		t, err := domain.InferMediaType(in.Picture.Filename)
		if err != nil {
			return nil, err
		}
		if t != domain.MediaImage {
			return nil, domain.BadRequest("Invalid file type: .%s is not allowed.", domain.Extension(in.Picture.Filename))
		}

		key, err := s.blobs.Save(ctx, ProfilePictureKey(userID, in.Picture.Filename), in.Picture.Data, in.Picture.ContentType)
		if err != nil {
			s.logger.Error("failed to store profile picture", "error", err, "user_id", userID)
			return nil, NewServiceError("profile", "update", err)
		}
		if p.ProfilePicture != nil {
			released = *p.ProfilePicture
		}
		p.ProfilePicture = &key
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		s.logger.Error("failed to update profile", "error", err, "user_id", userID)
		return nil, translateStoreError("profile", "update", "AuthorProfile", err)
	}

	s.logger.Info("profile updated", "user_id", userID, "picture_changed", in.Picture != nil)
	if released != "" && released != *p.ProfilePicture {
		_ = events.Emit(ctx, s.emitter, events.BlobReleased, events.BlobPayload{Keys: []string{released}})
	}
	return p, nil
}

func applySocialAccount(a *domain.SocialAccount, in SocialAccountInput) {
	if in.Provider != nil {
		a.Provider = *in.Provider
	}
	if in.Username != nil {
		a.Username = *in.Username
	}
	if in.URL != nil {
		a.URL = *in.URL
	}
}

// CreateSocialAccount implements ProfileService.
func (s *profileServiceImpl) CreateSocialAccount(ctx context.Context, viewer domain.Principal, userID int64, in SocialAccountInput) (*domain.SocialAccount, error) {
	if _, err := s.profile(ctx, "create social account", viewer, userID); err != nil {
		return nil, err
	}

	a := &domain.SocialAccount{ProfileID: userID}
	applySocialAccount(a, in)
	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, translateStoreError("profile", "create social account", "SocialAccount", err)
	}
	s.logger.Info("social account created", "user_id", userID, "social_account_id", a.ID, "provider", a.Provider)
	return a, nil
}

func (s *profileServiceImpl) account(ctx context.Context, op string, viewer domain.Principal, userID, accountID int64) (*domain.SocialAccount, error) {
	if _, err := s.profile(ctx, op, viewer, userID); err != nil {
		return nil, err
	}
	a, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, translateStoreError("profile", op, "SocialAccount", err)
	}
	if a.ProfileID != userID {
		return nil, domain.NoMatch("SocialAccount")
	}
	return a, nil
}

// UpdateSocialAccount implements ProfileService.
func (s *profileServiceImpl) UpdateSocialAccount(ctx context.Context, viewer domain.Principal, userID, accountID int64, in SocialAccountInput) (*domain.SocialAccount, error) {
	a, err := s.account(ctx, "update social account", viewer, userID, accountID)
	if err != nil {
		return nil, err
	}

	applySocialAccount(a, in)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.accounts.Update(ctx, a); err != nil {
		return nil, translateStoreError("profile", "update social account", "SocialAccount", err)
	}
	s.logger.Info("social account updated", "user_id", userID, "social_account_id", a.ID)
	return a, nil
}

// DeleteSocialAccount implements ProfileService.
func (s *profileServiceImpl) DeleteSocialAccount(ctx context.Context, viewer domain.Principal, userID, accountID int64) error {
	a, err := s.account(ctx, "delete social account", viewer, userID, accountID)
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, a.ID); err != nil {
		return translateStoreError("profile", "delete social account", "SocialAccount", err)
	}
	s.logger.Info("social account deleted", "user_id", userID, "social_account_id", a.ID)
	return nil
}
