package domain

import (
	"time"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
	StatusDeleted   PostStatus = "deleted"
)

// PostStatuses lists the valid statuses in declaration order.
var PostStatuses = []PostStatus{StatusDraft, StatusPublished, StatusArchived, StatusDeleted}

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	for _, v := range PostStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// PostStatistics holds engagement counters. Each post has exactly one row.
type PostStatistics struct {
	PostID       int64 `json:"-"`
	ShareCount   int   `json:"share_count"`
	LikeCount    int   `json:"like_count"`
	CommentCount int   `json:"comment_count"`
}

// Post is a blog article written by an author.
type Post struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Content    string     `json:"content"`
	Status     PostStatus `json:"status"`
	AuthorID   int64      `json:"author_id"`
	CategoryID int64      `json:"category_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Loaded relations.
	Author     *User          `json:"-"`
	Category   *Category      `json:"-"`
	Tags       []*Tag         `json:"-"`
	MediaFiles []*MediaFile   `json:"-"`
	Statistics PostStatistics `json:"-"`
}

// NewPost builds a draft post with a derived slug.
func NewPost(author *User, category *Category, title, content string) *Post {
	now := time.Now().UTC()
	p := &Post{
		Title:     title,
		Slug:      Slugify(title),
		Content:   content,
		Status:    StatusDraft,
		Author:    author,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if author != nil {
		p.AuthorID = author.ID
	}
	if category != nil {
		p.CategoryID = category.ID
	}
	return p
}

// IsPublic reports whether the post is visible to everyone.
func (p *Post) IsPublic() bool {
	return p.Status == StatusPublished
}

// HasTag reports whether the post carries the tag with the given slug.
func (p *Post) HasTag(slug string) bool {
	for _, t := range p.Tags {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

// Clean re-derives the slug and validates the post.
func (p *Post) Clean() error {
	p.Slug = Slugify(p.Title)
	return p.Validate()
}

// Validate checks the post's field rules.
func (p *Post) Validate() error {
	var errs FieldErrors
	check(&errs, "title", p.Title, notBlank, maxLength(50))
	if !errs.HasField("title") {
		check(&errs, "slug", p.Slug, notBlank, maxLength(50))
	}
	check(&errs, "content", p.Content, notBlank)
	check(&errs, "status", string(p.Status), oneOf(statusChoices()...))
	return errs.Err()
}

func statusChoices() []string {
	out := make([]string, len(PostStatuses))
	for i, s := range PostStatuses {
		out[i] = string(s)
	}
	return out
}
