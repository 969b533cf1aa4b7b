// Package query turns post list query parameters into a store.PostFilter and
// holds the reference in-memory implementation of that filter.
package query

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/store"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugParamRegex  = regexp.MustCompile(`^[-\w]+$`)
	nonWordRegex    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	searchCharRegex = regexp.MustCompile(`^[\p{L}\p{N}_\s\-]*$`)
	keywordRegex    = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// CategoryLookup resolves a category slug.
type CategoryLookup interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

// TagLookup resolves tag slugs, skipping unknown ones.
type TagLookup interface {
	GetBySlugs(ctx context.Context, slugs []string) ([]*domain.Tag, error)
}

// ParsePostFilter validates the category, tags and search parameters and
// builds the filter for viewer. Referenced categories and tags must exist.
func ParsePostFilter(
	ctx context.Context,
	values url.Values,
	viewer domain.Principal,
	categories CategoryLookup,
	tags TagLookup,
) (store.PostFilter, error) {
	f := store.PostFilter{Viewer: viewer}

	if category := values.Get("category"); category != "" {
		if !slugParamRegex.MatchString(category) {
			return f, domain.BadRequest("Invalid category slug format")
		}
		if _, err := categories.GetBySlug(ctx, category); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return f, domain.NotFound("Category \"%s\" not found.", category)
			}
			return f, fmt.Errorf("failed to look up category: %w", err)
		}
		f.Category = category
	}

	if raw := values.Get("tags"); raw != "" {
		slugs := splitTags(raw)
		for _, slug := range slugs {
			if !slugParamRegex.MatchString(slug) {
				return f, domain.BadRequest("Invalid tag slug format: \"%s\"", slug)
			}
		}
		if len(slugs) > 0 {
			found, err := tags.GetBySlugs(ctx, slugs)
			if err != nil {
				return f, fmt.Errorf("failed to look up tags: %w", err)
			}
			if missing := missingSlugs(slugs, found); len(missing) > 0 {
				return f, domain.NotFound("Tags not found: %s", strings.Join(missing, ", "))
			}
			f.Tags = slugs
		}
	}

	if search := values.Get("search"); search != "" {
		normalized := NormalizeSearch(search)
		if !searchCharRegex.MatchString(normalized) {
			return f, domain.BadRequest("Search string contains invalid characters.")
		}
		f.Keywords = Keywords(normalized)
	}

	return f, nil
}

// splitTags splits a comma separated list, dropping empty items and
// repeats.
func splitTags(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range strings.Split(raw, ",") {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// missingSlugs returns the slugs with no matching tag, in request order.
func missingSlugs(slugs []string, found []*domain.Tag) []string {
	have := make(map[string]struct{}, len(found))
	for _, t := range found {
		have[t.Slug] = struct{}{}
	}
	var missing []string
	for _, s := range slugs {
		if _, ok := have[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// NormalizeSearch lowercases s, strips combining marks, replaces
// punctuation with spaces and pads the result with one space on each side.
func NormalizeSearch(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		stripped = strings.ToLower(s)
	}
	stripped = nonWordRegex.ReplaceAllString(stripped, " ")
	return " " + strings.TrimSpace(stripped) + " "
}

// Keywords returns the word tokens of a normalized search string.
func Keywords(normalized string) []string {
	return keywordRegex.FindAllString(normalized, -1)
}

// FilterPosts applies f to posts in memory, including role visibility and
// ordering. The PostgreSQL store expresses the same rules in SQL.
func FilterPosts(posts []*domain.Post, f store.PostFilter) []*domain.Post {
	out := make([]*domain.Post, 0, len(posts))
	for _, p := range posts {
		if visible(p, f.Viewer) && matches(p, f) {
			out = append(out, p)
		}
	}

	ownFirst := f.Viewer.IsAuthenticated() && f.Viewer.Role == domain.RoleAuthor
	sort.SliceStable(out, func(i, j int) bool {
		if ownFirst {
			mi, mj := out[i].AuthorID == f.Viewer.UserID, out[j].AuthorID == f.Viewer.UserID
			if mi != mj {
				return mi
			}
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func visible(p *domain.Post, viewer domain.Principal) bool {
	switch {
	case viewer.IsAdmin():
		return true
	case viewer.HasRole(domain.RoleAuthor):
		return p.AuthorID == viewer.UserID || p.IsPublic()
	default:
		return p.IsPublic()
	}
}

func matches(p *domain.Post, f store.PostFilter) bool {
	if f.Category != "" && (p.Category == nil || p.Category.Slug != f.Category) {
		return false
	}

	if len(f.Tags) > 0 {
		tagged := false
		for _, slug := range f.Tags {
			if p.HasTag(slug) {
				tagged = true
				break
			}
		}
		if !tagged {
			return false
		}
	}

	if len(f.Keywords) > 0 {
		title := strings.ToLower(p.Title)
		for _, k := range f.Keywords {
			if strings.Contains(title, strings.ToLower(k)) {
				return true
			}
		}
		return false
	}
	return true
}
