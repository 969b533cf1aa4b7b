package service_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/events"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreateForcesDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	alice := f.author(t, "alice")
	f.category(t, "Tech")
	f.tag(t, "Go")
	f.tag(t, "Web")

	tags := []string{"web", "go", "web"}
	p, err := f.posts.Create(ctx, alice, service.PostInput{
		Title:    ptr("Hello World"),
		Content:  ptr("body"),
		Category: ptr("tech"),
		Tags:     &tags,
		Status:   ptr("published"),
	})
	require.NoError(t, err)

	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, domain.StatusDraft, p.Status)
	assert.Equal(t, alice.UserID, p.AuthorID)
	require.NotNil(t, p.Author)
	assert.Equal(t, "alice", p.Author.Username)
	require.NotNil(t, p.Category)
	assert.Equal(t, "tech", p.Category.Slug)
	assert.Len(t, p.Tags, 2)
	assert.Equal(t, p.ID, p.Statistics.PostID)
	assert.Equal(t, []string{events.PostCreated}, f.emitter.Types())
}

func TestPostService_CreateErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	alice := f.author(t, "alice")
	f.category(t, "Tech")
	f.tag(t, "Go")
	f.post(t, alice, "tech", "Taken", false)

	tests := []struct {
		name     string
		in       service.PostInput
		wantKind error
		wantErr  string
	}{
		{
			name:     "unknown category",
			in:       service.PostInput{Title: ptr("T"), Content: ptr("c"), Category: ptr("nope")},
			wantKind: domain.ErrNotFound,
			wantErr:  `Category "nope" not found.`,
		},
		{
			name:     "unknown tags in request order",
			in:       service.PostInput{Title: ptr("T"), Content: ptr("c"), Category: ptr("tech"), Tags: &[]string{"zeta", "go", "alpha"}},
			wantKind: domain.ErrNotFound,
			wantErr:  "The following tags were not found: zeta, alpha.",
		},
		{
			name:     "blank content",
			in:       service.PostInput{Title: ptr("T"), Content: ptr(""), Category: ptr("tech")},
			wantKind: domain.ErrBadRequest,
			wantErr:  "content: This field cannot be blank.",
		},
		{
			name:     "duplicate slug",
			in:       service.PostInput{Title: ptr("Taken!"), Content: ptr("c"), Category: ptr("tech")},
			wantKind: domain.ErrBadRequest,
			wantErr:  "slug: Post with this Slug already exists.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.posts.Create(ctx, alice, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestPostService_GetVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	alice := f.author(t, "alice")
	bob := f.author(t, "bob")
	root := f.admin(t, "root")
	f.category(t, "Tech")
	draft := f.post(t, alice, "tech", "Draft", false)
	public := f.post(t, alice, "tech", "Public", true)

	tests := []struct {
		name    string
		viewer  domain.Principal
		slug    string
		wantErr bool
	}{
		{name: "anonymous sees published", viewer: domain.Anonymous(), slug: public.Slug},
		{name: "anonymous denied draft", viewer: domain.Anonymous(), slug: draft.Slug, wantErr: true},
		{name: "other author denied draft", viewer: bob, slug: draft.Slug, wantErr: true},
		{name: "owner sees draft", viewer: alice, slug: draft.Slug},
		{name: "admin sees draft", viewer: root, slug: draft.Slug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.posts.Get(ctx, tt.viewer, tt.slug)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrForbidden)
				assert.Equal(t, "You do not have permission to view this post", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.slug, p.Slug)
		})
	}

	_, err := f.posts.Get(ctx, root, "missing")
	require.Error(t, err)
	assert.Equal(t, "No Post matches the given query.", err.Error())
}

func TestPostService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	alice := f.author(t, "alice")
	bob := f.author(t, "bob")
	root := f.admin(t, "root")
	f.category(t, "Tech")
	f.category(t, "Life")
	f.tag(t, "Go")
	p := f.post(t, alice, "tech", "Original", false, "go")

	_, err := f.posts.Update(ctx, bob, p.Slug, service.PostInput{Title: ptr("Hijacked")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "You do not have permission to edit this post", err.Error())

	_, err = f.posts.Update(ctx, alice, p.Slug, service.PostInput{Status: ptr("live")})
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.FieldErrors{{Field: "status", Message: "Value 'live' is not a valid choice."}}, fe)

	empty := []string{}
	updated, err := f.posts.Update(ctx, root, p.Slug, service.PostInput{
		Title:    ptr("Renamed"),
		Category: ptr("life"),
		Tags:     &empty,
		Status:   ptr("archived"),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Slug)
	assert.Equal(t, "life", updated.Category.Slug)
	assert.Empty(t, updated.Tags)
	assert.Equal(t, domain.StatusArchived, updated.Status)
	assert.Equal(t, alice.UserID, updated.AuthorID, "admin edits keep the author")
}

func TestPostService_DeleteEmitsMediaEvents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	alice := f.author(t, "alice")
	bob := f.author(t, "bob")
	f.category(t, "Tech")
	p := f.post(t, alice, "tech", "With media", true)

	_, err := f.media.Upload(ctx, alice, p.Slug, []service.Upload{
		{Filename: "a.mp3", Data: []byte("a")},
		{Filename: "b.mp3", Data: []byte("b")},
	})
	require.NoError(t, err)

	err = f.posts.Delete(ctx, bob, p.Slug)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "You do not have permission to delete this post", err.Error())

	require.NoError(t, f.posts.Delete(ctx, alice, p.Slug))
	assert.Len(t, f.emitter.OfType(events.MediaDeleted), 2)
	assert.Len(t, f.emitter.OfType(events.PostDeleted), 1)
	assert.Equal(t, 0, f.stores.Counts()["media_files"])
}

func TestPostService_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	alice := f.author(t, "alice")
	bob := f.author(t, "bob")
	f.category(t, "Tech")
	f.category(t, "Life")
	f.tag(t, "Go")
	f.post(t, alice, "tech", "Alice Draft", false)
	f.post(t, alice, "tech", "Learning Go", true, "go")
	f.post(t, bob, "life", "Bob Garden", true)
	f.post(t, bob, "life", "Bob Draft", false)

	slugs := func(posts []*domain.Post) []string {
		out := make([]string, len(posts))
		for i, p := range posts {
			out[i] = p.Slug
		}
		return out
	}

	tests := []struct {
		name    string
		viewer  domain.Principal
		query   string
		want    []string
		wantErr string
	}{
		{name: "anonymous sees published", viewer: domain.Anonymous(), want: []string{"bob-garden", "learning-go"}},
		{name: "author sees own first", viewer: alice, want: []string{"learning-go", "alice-draft", "bob-garden"}},
		{name: "category filter", viewer: domain.Anonymous(), query: "category=life", want: []string{"bob-garden"}},
		{name: "tag filter", viewer: domain.Anonymous(), query: "tags=go", want: []string{"learning-go"}},
		{name: "search", viewer: domain.Anonymous(), query: "search=GARDEN", want: []string{"bob-garden"}},
		{name: "unknown category", viewer: domain.Anonymous(), query: "category=nope", wantErr: `Category "nope" not found.`},
		{name: "unknown tags", viewer: domain.Anonymous(), query: "tags=go,x,y", wantErr: "Tags not found: x, y"},
		{name: "bad slug", viewer: domain.Anonymous(), query: "category=a%20b", wantErr: "Invalid category slug format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			posts, err := f.posts.List(ctx, tt.viewer, values)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, slugs(posts))
		})
	}
}
