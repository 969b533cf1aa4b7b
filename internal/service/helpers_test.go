package service_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/mocks"
	"github.com/phrazzld/blog-api/internal/platform/storage"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/stretchr/testify/require"
)

const testPassword = "Lighthouse-Harbor-42"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixture wires every service over one in-memory dataset.
type fixture struct {
	stores  *mocks.Stores
	blobs   *storage.MemoryStore
	emitter *mocks.RecordingEmitter
	decoder *mocks.MockDecoder
	hasher  *mocks.MockPasswordHasher

	categories service.CategoryService
	tags       service.TagService
	posts      service.PostService
	media      service.MediaService
	users      *service.UserServiceImpl
	profiles   service.ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := testLogger()

	f := &fixture{
		stores:  mocks.NewStores(),
		blobs:   storage.NewMemoryStore("http://blobs.test"),
		emitter: &mocks.RecordingEmitter{},
		decoder: &mocks.MockDecoder{Width: 640, Height: 480},
		hasher:  &mocks.MockPasswordHasher{},
	}

	var err error
	f.categories, err = service.NewCategoryService(f.stores.Categories, f.stores.MediaFiles, f.emitter, logger)
	require.NoError(t, err)
	f.tags, err = service.NewTagService(f.stores.Tags, logger)
	require.NoError(t, err)
	f.posts, err = service.NewPostService(f.stores.Posts, f.stores.Categories, f.stores.Tags, f.emitter, logger)
	require.NoError(t, err)
	f.media, err = service.NewMediaService(f.stores.Posts, f.stores.MediaFiles, f.blobs, f.decoder, f.emitter, logger)
	require.NoError(t, err)
	f.users, err = service.NewUserService(f.stores.Users, f.stores.MediaFiles, f.hasher, nil, f.emitter, logger)
	require.NoError(t, err)
	f.profiles, err = service.NewProfileService(f.stores.Profiles, f.stores.SocialAccounts, f.blobs, f.emitter, logger)
	require.NoError(t, err)
	return f
}

func ptr[T any](v T) *T {
	return &v
}

func (f *fixture) author(t *testing.T, username string) domain.Principal {
	t.Helper()
	u, err := f.users.Create(context.Background(), service.UserInput{
		Username: ptr(username),
		Email:    ptr(username + "@example.com"),
		Password: ptr(testPassword),
	})
	require.NoError(t, err)
	return domain.PrincipalFor(u)
}

func (f *fixture) admin(t *testing.T, username string) domain.Principal {
	t.Helper()
	u, err := f.users.CreateAdmin(context.Background(), service.UserInput{
		Username: ptr(username),
		Email:    ptr(username + "@example.com"),
		Password: ptr(testPassword),
	})
	require.NoError(t, err)
	return domain.PrincipalFor(u)
}

func (f *fixture) category(t *testing.T, name string) *domain.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), service.CategoryInput{Name: ptr(name)})
	require.NoError(t, err)
	return c
}

func (f *fixture) tag(t *testing.T, name string) *domain.Tag {
	t.Helper()
	tag, err := f.tags.Create(context.Background(), name)
	require.NoError(t, err)
	return tag
}

// post creates a post by author and optionally publishes it.
func (f *fixture) post(t *testing.T, author domain.Principal, category, title string, published bool, tags ...string) *domain.Post {
	t.Helper()
	ctx := context.Background()
	in := service.PostInput{Title: ptr(title), Content: ptr("Body of " + title), Category: ptr(category)}
	if len(tags) > 0 {
		in.Tags = &tags
	}
	p, err := f.posts.Create(ctx, author, in)
	require.NoError(t, err)
	if published {
		p, err = f.posts.Update(ctx, author, p.Slug, service.PostInput{Status: ptr(string(domain.StatusPublished))})
		require.NoError(t, err)
	}
	return p
}
