// Package serializer renders domain entities as JSON:API style resource
// objects with relationships and side-loaded included data.
package serializer

import (
	"strconv"

	"github.com/phrazzld/blog-api/internal/domain"
)

// Resource type names.
const (
	TypeCategories     = "categories"
	TypeTags           = "tags"
	TypePosts          = "posts"
	TypeMediaFiles     = "media_files"
	TypeUsers          = "users"
	TypeAuthorProfiles = "author-profiles"
	TypeSocialAccounts = "social-accounts"
)

// Ref identifies a resource inside a relationship.
type Ref struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship holds a Ref for to-one links or a []Ref for to-many links.
type Relationship struct {
	Data any `json:"data"`
}

// Attributes are the fields of a resource object.
type Attributes map[string]any

// ResourceObject is the rendered form of one entity.
type ResourceObject struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    Attributes              `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// URLResolver maps a stored blob key to its public URL.
type URLResolver interface {
	URL(key string) string
}

// Serializer renders entities. Media file URLs come from blobs.
type Serializer struct {
	blobs URLResolver
}

// New returns a Serializer resolving media URLs through blobs. A nil
// resolver renders raw keys.
func New(blobs URLResolver) *Serializer {
	return &Serializer{blobs: blobs}
}

func (s *Serializer) url(key string) string {
	if s.blobs == nil || key == "" {
		return key
	}
	return s.blobs.URL(key)
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

func ref(typ string, n int64) Ref {
	return Ref{Type: typ, ID: id(n)}
}

func toOne(typ string, n int64) Relationship {
	return Relationship{Data: ref(typ, n)}
}

func toMany[T any](typ string, items []T, idOf func(T) int64) (Relationship, bool) {
	if len(items) == 0 {
		return Relationship{}, false
	}
	refs := make([]Ref, 0, len(items))
	for _, item := range items {
		refs = append(refs, ref(typ, idOf(item)))
	}
	return Relationship{Data: refs}, true
}

func postID(p *domain.Post) int64            { return p.ID }
func tagID(t *domain.Tag) int64              { return t.ID }
func mediaID(m *domain.MediaFile) int64      { return m.ID }
func socialID(a *domain.SocialAccount) int64 { return a.ID }

// Collection renders each item with render.
func Collection[T any](items []T, render func(T) ResourceObject) []ResourceObject {
	out := make([]ResourceObject, 0, len(items))
	for _, item := range items {
		out = append(out, render(item))
	}
	return out
}

// Category renders a category with its posts relationship.
func (s *Serializer) Category(c *domain.Category) ResourceObject {
	obj := ResourceObject{
		Type: TypeCategories,
		ID:   id(c.ID),
		Attributes: Attributes{
			"name":        c.Name,
			"description": c.Description,
			"slug":        c.Slug,
			"created_at":  c.CreatedAt,
			"updated_at":  c.UpdatedAt,
		},
		Relationships: map[string]Relationship{},
	}
	if rel, ok := toMany(TypePosts, c.Posts, postID); ok {
		obj.Relationships["posts"] = rel
	}
	return obj
}

// CategoryIncluded returns the category's posts.
func (s *Serializer) CategoryIncluded(c *domain.Category) []any {
	return plainPosts(c.Posts)
}

// Tag renders a tag with its posts relationship.
func (s *Serializer) Tag(t *domain.Tag) ResourceObject {
	obj := ResourceObject{
		Type:          TypeTags,
		ID:            id(t.ID),
		Attributes:    tagAttributes(t),
		Relationships: map[string]Relationship{},
	}
	if rel, ok := toMany(TypePosts, t.Posts, postID); ok {
		obj.Relationships["posts"] = rel
	}
	return obj
}

// TagIncluded returns the tag's posts.
func (s *Serializer) TagIncluded(t *domain.Tag) []any {
	return plainPosts(t.Posts)
}

func tagAttributes(t *domain.Tag) Attributes {
	return Attributes{
		"name":       t.Name,
		"slug":       t.Slug,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
}

// plainPost renders a post without statistics or relationships, as it
// appears in the included data of its owners.
func plainPost(p *domain.Post) ResourceObject {
	return ResourceObject{
		Type: TypePosts,
		ID:   id(p.ID),
		Attributes: Attributes{
			"title":      p.Title,
			"slug":       p.Slug,
			"content":    p.Content,
			"status":     p.Status,
			"created_at": p.CreatedAt,
			"updated_at": p.UpdatedAt,
		},
	}
}

func plainPosts(posts []*domain.Post) []any {
	out := make([]any, 0, len(posts))
	for _, p := range posts {
		out = append(out, plainPost(p))
	}
	return out
}

// Post renders a post with statistics and its author, category, tags and
// media relationships.
func (s *Serializer) Post(p *domain.Post) ResourceObject {
	obj := ResourceObject{
		Type: TypePosts,
		ID:   id(p.ID),
		Attributes: Attributes{
			"title":   p.Title,
			"slug":    p.Slug,
			"content": p.Content,
			"status":  p.Status,
			"post_statistics": map[string]int{
				"share_count":   p.Statistics.ShareCount,
				"like_count":    p.Statistics.LikeCount,
				"comment_count": p.Statistics.CommentCount,
			},
			"created_at": p.CreatedAt,
			"updated_at": p.UpdatedAt,
		},
		Relationships: map[string]Relationship{
			"author":   toOne(TypeUsers, p.AuthorID),
			"category": toOne(TypeCategories, p.CategoryID),
		},
	}
	if rel, ok := toMany(TypeTags, p.Tags, tagID); ok {
		obj.Relationships["tags"] = rel
	}
	if rel, ok := toMany(TypeMediaFiles, p.MediaFiles, mediaID); ok {
		obj.Relationships["media_files"] = rel
	}
	return obj
}

// PostIncluded returns the author, the category, the tags and the media
// files of p, in that order.
func (s *Serializer) PostIncluded(p *domain.Post) []any {
	included := make([]any, 0, 2+len(p.Tags)+len(p.MediaFiles))
	if p.Author != nil {
		included = append(included, ResourceObject{
			Type: TypeUsers,
			ID:   id(p.AuthorID),
			Attributes: Attributes{
				"username": p.Author.Username,
				"role":     p.Author.Role,
			},
		})
	}
	if p.Category != nil {
		cat := s.Category(p.Category)
		cat.Relationships = nil
		included = append(included, cat)
	}
	for _, t := range p.Tags {
		included = append(included, ResourceObject{Type: TypeTags, ID: id(t.ID), Attributes: tagAttributes(t)})
	}
	for _, m := range p.MediaFiles {
		media := s.MediaFile(m)
		media.Relationships = nil
		included = append(included, media)
	}
	return included
}

// MediaFile renders the full view of a media file.
func (s *Serializer) MediaFile(m *domain.MediaFile) ResourceObject {
	return ResourceObject{
		Type: TypeMediaFiles,
		ID:   id(m.ID),
		Attributes: Attributes{
			"name":       m.Name,
			"file":       s.url(m.File),
			"type":       m.Type,
			"size":       m.Size,
			"width":      m.Width,
			"height":     m.Height,
			"created_at": m.CreatedAt,
			"updated_at": m.UpdatedAt,
		},
		Relationships: map[string]Relationship{
			"post": toOne(TypePosts, m.PostID),
		},
	}
}

// PublicMediaFile renders the reduced view shown to anonymous readers.
func (s *Serializer) PublicMediaFile(m *domain.MediaFile) ResourceObject {
	return ResourceObject{
		Type: TypeMediaFiles,
		ID:   id(m.ID),
		Attributes: Attributes{
			"file":       s.url(m.File),
			"type":       m.Type,
			"created_at": m.CreatedAt,
			"updated_at": m.UpdatedAt,
		},
		Relationships: map[string]Relationship{
			"post": toOne(TypePosts, m.PostID),
		},
	}
}

// User renders a user with profile, social account and post relationships.
func (s *Serializer) User(u *domain.User) ResourceObject {
	obj := ResourceObject{
		Type: TypeUsers,
		ID:   id(u.ID),
		Attributes: Attributes{
			"username":    u.Username,
			"email":       u.Email,
			"first_name":  u.FirstName,
			"last_name":   u.LastName,
			"role":        u.Role,
			"is_active":   u.IsActive,
			"date_joined": u.DateJoined,
		},
		Relationships: map[string]Relationship{},
	}
	if u.Profile != nil {
		obj.Relationships["profile"] = toOne(TypeAuthorProfiles, u.ID)
		if rel, ok := toMany(TypeSocialAccounts, u.Profile.SocialAccounts, socialID); ok {
			obj.Relationships["social-accounts"] = rel
		}
	}
	if rel, ok := toMany(TypePosts, u.Posts, postID); ok {
		obj.Relationships["posts"] = rel
	}
	return obj
}

// UserIncluded returns the profile, the social accounts and the posts of u,
// in that order.
func (s *Serializer) UserIncluded(u *domain.User) []any {
	var included []any
	if u.Profile != nil {
		included = append(included, s.Profile(u.Profile))
		for _, a := range u.Profile.SocialAccounts {
			sa := s.SocialAccount(a)
			sa.Relationships = nil
			included = append(included, sa)
		}
	}
	return append(included, plainPosts(u.Posts)...)
}

// Profile renders an author profile. Its ID is the user ID.
func (s *Serializer) Profile(p *domain.AuthorProfile) ResourceObject {
	var picture any
	if p.ProfilePicture != nil {
		picture = *p.ProfilePicture
	}
	obj := ResourceObject{
		Type: TypeAuthorProfiles,
		ID:   id(p.UserID),
		Attributes: Attributes{
			"bio":             p.Bio,
			"profile_picture": picture,
		},
		Relationships: map[string]Relationship{},
	}
	if rel, ok := toMany(TypeSocialAccounts, p.SocialAccounts, socialID); ok {
		obj.Relationships["social-accounts"] = rel
	}
	return obj
}

// SocialAccount renders a social account with its profile relationship.
func (s *Serializer) SocialAccount(a *domain.SocialAccount) ResourceObject {
	return ResourceObject{
		Type: TypeSocialAccounts,
		ID:   id(a.ID),
		Attributes: Attributes{
			"provider":   a.Provider,
			"username":   a.Username,
			"url":        a.URL,
			"created_at": a.CreatedAt,
			"updated_at": a.UpdatedAt,
		},
		Relationships: map[string]Relationship{
			"profile": toOne(TypeAuthorProfiles, a.ProfileID),
		},
	}
}
