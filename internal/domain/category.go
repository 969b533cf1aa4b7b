package domain

import "time"

// Category groups posts. Its slug is derived from the name on every save.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Posts []*Post `json:"-"`
}

// NewCategory builds a category with a derived slug.
func NewCategory(name, description string) *Category {
	now := time.Now().UTC()
	c := &Category{Name: name, Description: description, CreatedAt: now, UpdatedAt: now}
	c.Slug = Slugify(name)
	return c
}

// Clean re-derives the slug and validates the category.
func (c *Category) Clean() error {
	c.Slug = Slugify(c.Name)
	return c.Validate()
}

// Validate checks the category's field rules.
func (c *Category) Validate() error {
	var errs FieldErrors
	check(&errs, "name", c.Name, notBlank, maxLength(50))
	check(&errs, "description", c.Description, maxLength(255))
	if !errs.HasField("name") {
		check(&errs, "slug", c.Slug, notBlank, maxLength(51))
	}
	return errs.Err()
}
