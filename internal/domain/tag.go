package domain

import "time"

// Tag labels posts. Tags are ordered by ID.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Posts []*Post `json:"-"`
}

// NewTag builds a tag with a derived slug.
func NewTag(name string) *Tag {
	now := time.Now().UTC()
	return &Tag{Name: name, Slug: Slugify(name), CreatedAt: now, UpdatedAt: now}
}

// Clean re-derives the slug and validates the tag.
func (t *Tag) Clean() error {
	t.Slug = Slugify(t.Name)
	return t.Validate()
}

// Validate checks the tag's field rules.
func (t *Tag) Validate() error {
	var errs FieldErrors
	check(&errs, "name", t.Name, notBlank, maxLength(50))
	if !errs.HasField("name") {
		check(&errs, "slug", t.Slug, notBlank, maxLength(50))
	}
	return errs.Err()
}
