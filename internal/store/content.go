package store

import (
	"context"

	"github.com/phrazzld/blog-api/internal/domain"
)

// CategoryStore defines the interface for category persistence.
type CategoryStore interface {
	// List returns all categories ordered by ID, each with its posts.
	List(ctx context.Context) ([]*domain.Category, error)

	// GetBySlug returns the category with its posts.
	// Returns ErrCategoryNotFound if no category has the slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)

	// Create inserts c and sets its ID.
	// Returns a *DuplicateError on a name or slug collision.
	Create(ctx context.Context, c *domain.Category) error

	// Update saves name, description and slug of c.
	Update(ctx context.Context, c *domain.Category) error

	// Delete removes the category and, by cascade, its posts.
	Delete(ctx context.Context, id int64) error
}

// TagStore defines the interface for tag persistence.
type TagStore interface {
	// List returns all tags ordered by ID, each with its posts.
	List(ctx context.Context) ([]*domain.Tag, error)

	// GetBySlug returns the tag with its posts.
	// Returns ErrTagNotFound if no tag has the slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Tag, error)

	// GetBySlugs returns the tags whose slug is in slugs, ordered by ID.
	// Unknown slugs are silently skipped.
	GetBySlugs(ctx context.Context, slugs []string) ([]*domain.Tag, error)

	Create(ctx context.Context, t *domain.Tag) error
	Update(ctx context.Context, t *domain.Tag) error
	Delete(ctx context.Context, id int64) error
}

// PostFilter restricts a post listing. The zero value with an anonymous
// viewer lists published posts only.
type PostFilter struct {
	// Viewer decides visibility: anonymous callers see published posts,
	// authors see their own posts and published ones, admins see all.
	Viewer domain.Principal

	// Category is a category slug; empty means any category.
	Category string

	// Tags matches posts carrying any of these tag slugs.
	Tags []string

	// Keywords matches posts whose title contains any keyword,
	// case-insensitively.
	Keywords []string
}

// PostStore defines the interface for post persistence.
type PostStore interface {
	// List returns fully loaded posts visible under f. Posts are ordered by
	// creation time, newest first; an author's own posts come first.
	List(ctx context.Context, f PostFilter) ([]*domain.Post, error)

	// GetBySlug returns the fully loaded post.
	// Returns ErrPostNotFound if no post has the slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)

	// Create inserts p, its statistics row and its tag links in one
	// transaction. Returns a *DuplicateError on a slug collision.
	Create(ctx context.Context, p *domain.Post) error

	// Update saves p's columns and replaces its tag links.
	Update(ctx context.Context, p *domain.Post) error

	// Delete removes the post and, by cascade, its statistics, tag links
	// and media rows.
	Delete(ctx context.Context, id int64) error
}

// MediaFileStore defines the interface for media file persistence.
type MediaFileStore interface {
	// List returns every media file ordered by ID.
	List(ctx context.Context) ([]*domain.MediaFile, error)

	// ListByPost returns the files attached to postID ordered by ID.
	ListByPost(ctx context.Context, postID int64) ([]*domain.MediaFile, error)

	// ListByAuthor returns the files attached to any post of authorID.
	ListByAuthor(ctx context.Context, authorID int64) ([]*domain.MediaFile, error)

	// GetByID returns ErrMediaFileNotFound if the file does not exist.
	GetByID(ctx context.Context, id int64) (*domain.MediaFile, error)

	// Create inserts m and sets its ID. Returns a *DuplicateError when the
	// post already has a file with the same name.
	Create(ctx context.Context, m *domain.MediaFile) error

	Delete(ctx context.Context, id int64) error
}
