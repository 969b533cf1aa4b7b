package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/store"
)

// TagService manages tags. Callers gate every mutation to admins.
type TagService interface {
	List(ctx context.Context) ([]*domain.Tag, error)
	Get(ctx context.Context, slug string) (*domain.Tag, error)
	Create(ctx context.Context, name string) (*domain.Tag, error)

	// Update renames the tag with slug; nil leaves it unchanged.
	Update(ctx context.Context, slug string, name *string) (*domain.Tag, error)

	// Delete removes the tag. Posts keep existing without it.
	Delete(ctx context.Context, slug string) error
}

type tagServiceImpl struct {
	tags   store.TagStore
	logger *slog.Logger
}

// NewTagService creates a TagService.
func NewTagService(tags store.TagStore, logger *slog.Logger) (TagService, error) {
	if tags == nil {
		return nil, nilDependency("tags")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &tagServiceImpl{
		tags:   tags,
		logger: logger.With(slog.String("component", "tag_service")),
	}, nil
}

func (s *tagServiceImpl) fail(op string, err error) error {
	return translateStoreError("tag", op, "Tag", err)
}

func (s *tagServiceImpl) List(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		s.logger.Error("failed to list tags", "error", err)
		return nil, s.fail("list", err)
	}
	return tags, nil
}

func (s *tagServiceImpl) Get(ctx context.Context, slug string) (*domain.Tag, error) {
	t, err := s.tags.GetBySlug(ctx, slug)
	if err != nil {
		return nil, s.fail("get", err)
	}
	return t, nil
}

func (s *tagServiceImpl) Create(ctx context.Context, name string) (*domain.Tag, error) {
	t := domain.NewTag(name)
	if err := t.Clean(); err != nil {
		return nil, err
	}
	if err := s.tags.Create(ctx, t); err != nil {
		return nil, s.fail("create", err)
	}
	s.logger.Info("tag created", "tag_id", t.ID, "slug", t.Slug)
	return t, nil
}

func (s *tagServiceImpl) Update(ctx context.Context, slug string, name *string) (*domain.Tag, error) {
	t, err := s.tags.GetBySlug(ctx, slug)
	if err != nil {
		return nil, s.fail("update", err)
	}
	if name != nil {
		t.Name = *name
	}
	if err := t.Clean(); err != nil {
		return nil, err
	}
	if err := s.tags.Update(ctx, t); err != nil {
		return nil, s.fail("update", err)
	}
	s.logger.Info("tag updated", "tag_id", t.ID, "slug", t.Slug)
	return t, nil
}

func (s *tagServiceImpl) Delete(ctx context.Context, slug string) error {
	t, err := s.tags.GetBySlug(ctx, slug)
	if err != nil {
		return s.fail("delete", err)
	}
	if err := s.tags.Delete(ctx, t.ID); err != nil {
		s.logger.Error("failed to delete tag", "error", err, "tag_id", t.ID)
		return s.fail("delete", err)
	}
	s.logger.Info("tag deleted", "tag_id", t.ID)
	return nil
}
