package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/events"
	"github.com/phrazzld/blog-api/internal/store"
)

// CategoryInput carries the writable category fields. Nil fields are left
// unchanged on update.
type CategoryInput struct {
	Name        *string
	Description *string
}

// CategoryService manages categories. Callers gate every mutation to admins.
type CategoryService interface {
	// List returns every category with its posts.
	List(ctx context.Context) ([]*domain.Category, error)

	// Get returns the category with slug and its posts.
	Get(ctx context.Context, slug string) (*domain.Category, error)

	// Create validates and stores a new category.
	Create(ctx context.Context, in CategoryInput) (*domain.Category, error)

	// Update applies in to the category with slug. A rename re-derives the
	// slug.
	Update(ctx context.Context, slug string, in CategoryInput) (*domain.Category, error)

	// Delete removes the category and its posts, releasing their media blobs.
	Delete(ctx context.Context, slug string) error
}

type categoryServiceImpl struct {
	categories store.CategoryStore
	media      store.MediaFileStore
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// NewCategoryService creates a CategoryService. The emitter may be nil.
func NewCategoryService(
	categories store.CategoryStore,
	media store.MediaFileStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (CategoryService, error) {
	if categories == nil {
		return nil, nilDependency("categories")
	}
	if media == nil {
		return nil, nilDependency("media")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &categoryServiceImpl{
		categories: categories,
		media:      media,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "category_service")),
	}, nil
}

func (s *categoryServiceImpl) fail(op string, err error) error {
	return translateStoreError("category", op, "Category", err)
}

// List implements CategoryService.
func (s *categoryServiceImpl) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err)
		return nil, s.fail("list", err)
	}
	return categories, nil
}

// Get implements CategoryService.
func (s *categoryServiceImpl) Get(ctx context.Context, slug string) (*domain.Category, error) {
	c, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, s.fail("get", err)
	}
	return c, nil
}

// Create implements CategoryService.
func (s *categoryServiceImpl) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	c := domain.NewCategory(deref(in.Name), deref(in.Description))
	if err := c.Clean(); err != nil {
		return nil, err
	}

	if err := s.categories.Create(ctx, c); err != nil {
		s.logger.Debug("failed to create category", "error", err, "name", c.Name)
		return nil, s.fail("create", err)
	}

	s.logger.Info("category created", "category_id", c.ID, "slug", c.Slug)
	return c, nil
}

// Update implements CategoryService.
func (s *categoryServiceImpl) Update(ctx context.Context, slug string, in CategoryInput) (*domain.Category, error) {
	c, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, s.fail("update", err)
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if err := c.Clean(); err != nil {
		return nil, err
	}

	if err := s.categories.Update(ctx, c); err != nil {
		s.logger.Debug("failed to update category", "error", err, "category_id", c.ID)
		return nil, s.fail("update", err)
	}

	s.logger.Info("category updated", "category_id", c.ID, "slug", c.Slug)
	return c, nil
}

// Delete implements CategoryService.
func (s *categoryServiceImpl) Delete(ctx context.Context, slug string) error {
	c, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return s.fail("delete", err)
	}

	var keys []string
	for _, p := range c.Posts {
		files, err := s.media.ListByPost(ctx, p.ID)
		if err != nil {
			return s.fail("delete", err)
		}
		keys = append(keys, blobKeys(files)...)
	}

	if err := s.categories.Delete(ctx, c.ID); err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", c.ID)
		return s.fail("delete", err)
	}

	s.logger.Info("category deleted", "category_id", c.ID, "post_count", len(c.Posts))
	if len(keys) > 0 {
		_ = events.Emit(ctx, s.emitter, events.BlobReleased, events.BlobPayload{Keys: keys})
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func blobKeys(files []*domain.MediaFile) []string {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		if f.File != "" {
			keys = append(keys, f.File)
		}
	}
	return keys
}
