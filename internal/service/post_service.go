package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/events"
	"github.com/phrazzld/blog-api/internal/service/query"
	"github.com/phrazzld/blog-api/internal/store"
)

// PostInput carries the writable post fields. Nil fields are left unchanged
// on update; Status is ignored on create.
type PostInput struct {
	Title    *string
	Content  *string
	Category *string // category slug
	Tags     *[]string
	Status   *string
}

// PostService manages posts on behalf of an explicit principal.
type PostService interface {
	// List applies the role filter for viewer and the category, tags and
	// search parameters in values.
	List(ctx context.Context, viewer domain.Principal, values url.Values) ([]*domain.Post, error)

	// Get returns a published post to anyone, and any post to its author or
	// an admin.
	Get(ctx context.Context, viewer domain.Principal, slug string) (*domain.Post, error)

	// Create stores a draft post authored by viewer.
	Create(ctx context.Context, viewer domain.Principal, in PostInput) (*domain.Post, error)

	// Update applies in to a post viewer may manage.
	Update(ctx context.Context, viewer domain.Principal, slug string, in PostInput) (*domain.Post, error)

	// Delete removes a post viewer may manage, with its media.
	Delete(ctx context.Context, viewer domain.Principal, slug string) error
}

type postServiceImpl struct {
	posts      store.PostStore
	categories store.CategoryStore
	tags       store.TagStore
	emitter    events.EventEmitter
	logger     *slog.Logger
}

// NewPostService creates a PostService. The emitter may be nil.
func NewPostService(
	posts store.PostStore,
	categories store.CategoryStore,
	tags store.TagStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (PostService, error) {
	if posts == nil {
		return nil, nilDependency("posts")
	}
	if categories == nil {
		return nil, nilDependency("categories")
	}
	if tags == nil {
		return nil, nilDependency("tags")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &postServiceImpl{
		posts:      posts,
		categories: categories,
		tags:       tags,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "post_service")),
	}, nil
}

func (s *postServiceImpl) fail(op string, err error) error {
	return translateStoreError("post", op, "Post", err)
}

// List implements PostService.
func (s *postServiceImpl) List(ctx context.Context, viewer domain.Principal, values url.Values) ([]*domain.Post, error) {
	filter, err := query.ParsePostFilter(ctx, values, viewer, s.categories, s.tags)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, NewServiceError("post", "list", err)
	}

	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list posts", "error", err)
		return nil, s.fail("list", err)
	}

	s.logger.Debug("listed posts",
		"count", len(posts),
		"category", filter.Category,
		"tags", filter.Tags,
		"keywords", filter.Keywords)
	return posts, nil
}

// Get implements PostService.
func (s *postServiceImpl) Get(ctx context.Context, viewer domain.Principal, slug string) (*domain.Post, error) {
	p, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, s.fail("get", err)
	}
	if !p.IsPublic() && !viewer.CanManage(p.AuthorID) {
		return nil, domain.Forbidden("You do not have permission to view this post")
	}
	return p, nil
}

// Create implements PostService.
func (s *postServiceImpl) Create(ctx context.Context, viewer domain.Principal, in PostInput) (*domain.Post, error) {
	author := &domain.User{ID: viewer.UserID, Username: viewer.Username, Role: viewer.Role}
	p := domain.NewPost(author, nil, deref(in.Title), deref(in.Content))
	if err := p.Clean(); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, deref(in.Category))
	if err != nil {
		return nil, err
	}
	p.Category, p.CategoryID = category, category.ID

	if in.Tags != nil {
		if p.Tags, err = s.resolveTags(ctx, *in.Tags); err != nil {
			return nil, err
		}
	}

	if err := s.posts.Create(ctx, p); err != nil {
		s.logger.Debug("failed to create post", "error", err, "slug", p.Slug)
		return nil, s.fail("create", err)
	}

	s.logger.Info("post created", "post_id", p.ID, "slug", p.Slug, "author_id", p.AuthorID)
	_ = events.Emit(ctx, s.emitter, events.PostCreated, events.PostPayload{
		PostID:   p.ID,
		Slug:     p.Slug,
		AuthorID: p.AuthorID,
		Status:   string(p.Status),
	})

	return s.reload(ctx, "create", p.Slug)
}

// Update implements PostService.
func (s *postServiceImpl) Update(ctx context.Context, viewer domain.Principal, slug string, in PostInput) (*domain.Post, error) {
	p, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, s.fail("update", err)
	}
	if !viewer.CanManage(p.AuthorID) {
		return nil, domain.Forbidden("You do not have permission to edit this post")
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Status != nil {
		p.Status = domain.PostStatus(*in.Status)
	}
	if err := p.Clean(); err != nil {
		return nil, err
	}

	if in.Category != nil {
		category, err := s.resolveCategory(ctx, *in.Category)
		if err != nil {
			return nil, err
		}
		p.Category, p.CategoryID = category, category.ID
	}
	if in.Tags != nil {
		if p.Tags, err = s.resolveTags(ctx, *in.Tags); err != nil {
			return nil, err
		}
	}

	if err := s.posts.Update(ctx, p); err != nil {
		s.logger.Debug("failed to update post", "error", err, "post_id", p.ID)
		return nil, s.fail("update", err)
	}

	s.logger.Info("post updated", "post_id", p.ID, "slug", p.Slug, "status", p.Status)
	_ = events.Emit(ctx, s.emitter, events.PostUpdated, events.PostPayload{
		PostID:   p.ID,
		Slug:     p.Slug,
		AuthorID: p.AuthorID,
		Status:   string(p.Status),
	})

	return s.reload(ctx, "update", p.Slug)
}

// Delete implements PostService.
func (s *postServiceImpl) Delete(ctx context.Context, viewer domain.Principal, slug string) error {
	p, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return s.fail("delete", err)
	}
	if !viewer.CanManage(p.AuthorID) {
		return domain.Forbidden("You do not have permission to delete this post")
	}

	if err := s.posts.Delete(ctx, p.ID); err != nil {
		s.logger.Error("failed to delete post", "error", err, "post_id", p.ID)
		return s.fail("delete", err)
	}

	s.logger.Info("post deleted", "post_id", p.ID, "media_count", len(p.MediaFiles))
	for _, m := range p.MediaFiles {
		_ = events.Emit(ctx, s.emitter, events.MediaDeleted, events.MediaPayload{
			MediaFileID: m.ID,
			PostID:      p.ID,
			File:        m.File,
		})
	}
	_ = events.Emit(ctx, s.emitter, events.PostDeleted, events.PostPayload{
		PostID:   p.ID,
		Slug:     p.Slug,
		AuthorID: p.AuthorID,
	})
	return nil
}

func (s *postServiceImpl) reload(ctx context.Context, op, slug string) (*domain.Post, error) {
	p, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, s.fail(op, err)
	}
	return p, nil
}

func (s *postServiceImpl) resolveCategory(ctx context.Context, slug string) (*domain.Category, error) {
	c, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, domain.NotFound("Category \"%s\" not found.", slug)
		}
		return nil, NewServiceError("post", "resolve category", err)
	}
	return c, nil
}

// resolveTags looks up every slug and names all unknown ones in request
// order.
func (s *postServiceImpl) resolveTags(ctx context.Context, slugs []string) ([]*domain.Tag, error) {
	slugs = uniqueStrings(slugs)
	if len(slugs) == 0 {
		return nil, nil
	}

	found, err := s.tags.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, NewServiceError("post", "resolve tags", err)
	}

	have := make(map[string]struct{}, len(found))
	for _, t := range found {
		have[t.Slug] = struct{}{}
	}
	var missing []string
	for _, slug := range slugs {
		if _, ok := have[slug]; !ok {
			missing = append(missing, slug)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NotFound("The following tags were not found: %s.", strings.Join(missing, ", "))
	}
	return found, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
