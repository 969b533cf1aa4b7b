package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/service/query"
	"github.com/phrazzld/blog-api/internal/store"
)

// Stores is an in-memory implementation of every store interface sharing
// one dataset, so cascades and relation loading behave like the PostgreSQL
// stores. Entities are copied on the way in and out.
type Stores struct {
	mu     sync.Mutex
	nextID int64

	users      map[int64]domain.User
	profiles   map[int64]domain.AuthorProfile
	socials    map[int64]domain.SocialAccount
	categories map[int64]domain.Category
	tags       map[int64]domain.Tag
	posts      map[int64]domain.Post
	postTags   map[int64][]int64
	media      map[int64]domain.MediaFile

	Users          *MemoryUserStore
	Profiles       *MemoryProfileStore
	SocialAccounts *MemorySocialAccountStore
	Categories     *MemoryCategoryStore
	Tags           *MemoryTagStore
	Posts          *MemoryPostStore
	MediaFiles     *MemoryMediaFileStore
}

// NewStores returns an empty dataset.
func NewStores() *Stores {
	s := &Stores{
		users:      make(map[int64]domain.User),
		profiles:   make(map[int64]domain.AuthorProfile),
		socials:    make(map[int64]domain.SocialAccount),
		categories: make(map[int64]domain.Category),
		tags:       make(map[int64]domain.Tag),
		posts:      make(map[int64]domain.Post),
		postTags:   make(map[int64][]int64),
		media:      make(map[int64]domain.MediaFile),
	}
	s.Users = &MemoryUserStore{s}
	s.Profiles = &MemoryProfileStore{s}
	s.SocialAccounts = &MemorySocialAccountStore{s}
	s.Categories = &MemoryCategoryStore{s}
	s.Tags = &MemoryTagStore{s}
	s.Posts = &MemoryPostStore{s}
	s.MediaFiles = &MemoryMediaFileStore{s}
	return s
}

var (
	_ store.UserStore          = (*MemoryUserStore)(nil)
	_ store.ProfileStore       = (*MemoryProfileStore)(nil)
	_ store.SocialAccountStore = (*MemorySocialAccountStore)(nil)
	_ store.CategoryStore      = (*MemoryCategoryStore)(nil)
	_ store.TagStore           = (*MemoryTagStore)(nil)
	_ store.PostStore          = (*MemoryPostStore)(nil)
	_ store.MediaFileStore     = (*MemoryMediaFileStore)(nil)
)

func (s *Stores) id() int64 {
	s.nextID++
	return s.nextID
}

func now() time.Time {
	return time.Now().UTC()
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// plainPost returns a post without relations.
func (s *Stores) plainPost(id int64) *domain.Post {
	p := s.posts[id]
	return &p
}

// postsWhere returns matching posts newest first.
func (s *Stores) postsWhere(keep func(p domain.Post) bool) []*domain.Post {
	var out []*domain.Post
	ids := sortedIDs(s.posts)
	for i := len(ids) - 1; i >= 0; i-- {
		if keep(s.posts[ids[i]]) {
			out = append(out, s.plainPost(ids[i]))
		}
	}
	return out
}

// fullPost returns a post with author, category, tags, media and statistics.
func (s *Stores) fullPost(id int64) *domain.Post {
	p := s.plainPost(id)
	if u, ok := s.users[p.AuthorID]; ok {
		u.Profile, u.Posts = nil, nil
		p.Author = &u
	}
	if c, ok := s.categories[p.CategoryID]; ok {
		c.Posts = nil
		p.Category = &c
	}
	p.Tags = nil
	tagIDs := append([]int64(nil), s.postTags[id]...)
	sort.Slice(tagIDs, func(i, j int) bool { return tagIDs[i] < tagIDs[j] })
	for _, tid := range tagIDs {
		t := s.tags[tid]
		t.Posts = nil
		p.Tags = append(p.Tags, &t)
	}
	p.MediaFiles = s.mediaWhere(func(m domain.MediaFile) bool { return m.PostID == id })
	return p
}

func (s *Stores) mediaWhere(keep func(m domain.MediaFile) bool) []*domain.MediaFile {
	var out []*domain.MediaFile
	for _, id := range sortedIDs(s.media) {
		if m := s.media[id]; keep(m) {
			out = append(out, &m)
		}
	}
	return out
}

func (s *Stores) profileWithAccounts(userID int64) *domain.AuthorProfile {
	p, ok := s.profiles[userID]
	if !ok {
		return nil
	}
	p.SocialAccounts = nil
	for _, id := range sortedIDs(s.socials) {
		if a := s.socials[id]; a.ProfileID == userID {
			p.SocialAccounts = append(p.SocialAccounts, &a)
		}
	}
	return &p
}

func (s *Stores) fullUser(id int64) *domain.User {
	u := s.users[id]
	u.Profile = s.profileWithAccounts(id)
	u.Posts = s.postsWhere(func(p domain.Post) bool { return p.AuthorID == id })
	return &u
}

func (s *Stores) deletePost(id int64) {
	delete(s.posts, id)
	delete(s.postTags, id)
	for mid, m := range s.media {
		if m.PostID == id {
			delete(s.media, mid)
		}
	}
}

// MemoryUserStore implements store.UserStore.
type MemoryUserStore struct{ s *Stores }

// List implements store.UserStore.
func (m *MemoryUserStore) List(_ context.Context) ([]*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*domain.User, 0, len(m.s.users))
	for _, id := range sortedIDs(m.s.users) {
		out = append(out, m.s.fullUser(id))
	}
	return out, nil
}

func (m *MemoryUserStore) checkUnique(u *domain.User) error {
	for id, other := range m.s.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			return store.NewDuplicateError("user", "username", nil)
		}
		if other.Email == u.Email {
			return store.NewDuplicateError("user", "email", nil)
		}
	}
	return nil
}

// Create implements store.UserStore.
func (m *MemoryUserStore) Create(_ context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.HashedPassword == "" {
		return fmt.Errorf("%w: hashed password is required", store.ErrInvalidEntity)
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.checkUnique(u); err != nil {
		return err
	}
	u.ID = m.s.id()
	row := *u
	row.Password, row.Profile, row.Posts = "", nil, nil
	m.s.users[u.ID] = row

	if u.IsAuthor() {
		p := domain.NewAuthorProfile(u.ID)
		m.s.profiles[u.ID] = *p
		u.Profile = p
	}
	u.Password = ""
	return nil
}

// GetByID implements store.UserStore.
func (m *MemoryUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[id]; !ok {
		return nil, store.ErrUserNotFound
	}
	return m.s.fullUser(id), nil
}

// GetByUsername implements store.UserStore.
func (m *MemoryUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements store.UserStore.
func (m *MemoryUserStore) Update(_ context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	old, ok := m.s.users[u.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if err := m.checkUnique(u); err != nil {
		return err
	}
	u.UpdatedAt = now()
	row := *u
	row.Password, row.Profile, row.Posts = "", nil, nil
	row.Role, row.DateJoined = old.Role, old.DateJoined
	m.s.users[u.ID] = row
	u.Password = ""
	return nil
}

// Delete implements store.UserStore. Posts, media, the profile and social
// accounts go with the user.
func (m *MemoryUserStore) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.s.users, id)
	delete(m.s.profiles, id)
	for sid, a := range m.s.socials {
		if a.ProfileID == id {
			delete(m.s.socials, sid)
		}
	}
	for pid, p := range m.s.posts {
		if p.AuthorID == id {
			m.s.deletePost(pid)
		}
	}
	return nil
}

// MemoryProfileStore implements store.ProfileStore.
type MemoryProfileStore struct{ s *Stores }

// GetByUserID implements store.ProfileStore.
func (m *MemoryProfileStore) GetByUserID(_ context.Context, userID int64) (*domain.AuthorProfile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p := m.s.profileWithAccounts(userID)
	if p == nil {
		return nil, store.ErrProfileNotFound
	}
	return p, nil
}

// Update implements store.ProfileStore.
func (m *MemoryProfileStore) Update(_ context.Context, p *domain.AuthorProfile) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.profiles[p.UserID]; !ok {
		return store.ErrProfileNotFound
	}
	p.UpdatedAt = now()
	row := *p
	row.SocialAccounts = nil
	m.s.profiles[p.UserID] = row
	return nil
}

// MemorySocialAccountStore implements store.SocialAccountStore.
type MemorySocialAccountStore struct{ s *Stores }

// GetByID implements store.SocialAccountStore.
func (m *MemorySocialAccountStore) GetByID(_ context.Context, id int64) (*domain.SocialAccount, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.socials[id]
	if !ok {
		return nil, store.ErrSocialAccountNotFound
	}
	return &a, nil
}

func (m *MemorySocialAccountStore) save(a *domain.SocialAccount) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, ok := m.s.profiles[a.ProfileID]; !ok {
		return fmt.Errorf("%w: profile %d does not exist", store.ErrInvalidEntity, a.ProfileID)
	}
	for id, other := range m.s.socials {
		if id != a.ID && other.URL == a.URL {
			return store.NewDuplicateError("social account", "url", nil)
		}
	}
	m.s.socials[a.ID] = *a
	return nil
}

// Create implements store.SocialAccountStore.
func (m *MemorySocialAccountStore) Create(_ context.Context, a *domain.SocialAccount) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a.ID = m.s.nextID + 1
	a.CreatedAt, a.UpdatedAt = now(), now()
	if err := m.save(a); err != nil {
		a.ID = 0
		return err
	}
	m.s.nextID++
	return nil
}

// Update implements store.SocialAccountStore.
func (m *MemorySocialAccountStore) Update(_ context.Context, a *domain.SocialAccount) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.socials[a.ID]; !ok {
		return store.ErrSocialAccountNotFound
	}
	a.UpdatedAt = now()
	return m.save(a)
}

// Delete implements store.SocialAccountStore.
func (m *MemorySocialAccountStore) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.socials[id]; !ok {
		return store.ErrSocialAccountNotFound
	}
	delete(m.s.socials, id)
	return nil
}

// MemoryCategoryStore implements store.CategoryStore.
type MemoryCategoryStore struct{ s *Stores }

func (m *MemoryCategoryStore) withPosts(id int64) *domain.Category {
	c := m.s.categories[id]
	c.Posts = m.s.postsWhere(func(p domain.Post) bool { return p.CategoryID == id })
	return &c
}

// List implements store.CategoryStore.
func (m *MemoryCategoryStore) List(_ context.Context) ([]*domain.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*domain.Category, 0, len(m.s.categories))
	for _, id := range sortedIDs(m.s.categories) {
		out = append(out, m.withPosts(id))
	}
	return out, nil
}

// GetBySlug implements store.CategoryStore.
func (m *MemoryCategoryStore) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, c := range m.s.categories {
		if c.Slug == slug {
			return m.withPosts(id), nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (m *MemoryCategoryStore) save(c *domain.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for id, other := range m.s.categories {
		if id == c.ID {
			continue
		}
		if other.Name == c.Name {
			return store.NewDuplicateError("category", "name", nil)
		}
		if other.Slug == c.Slug {
			return store.NewDuplicateError("category", "slug", nil)
		}
	}
	row := *c
	row.Posts = nil
	m.s.categories[c.ID] = row
	return nil
}

// Create implements store.CategoryStore.
func (m *MemoryCategoryStore) Create(_ context.Context, c *domain.Category) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c.ID = m.s.nextID + 1
	if err := m.save(c); err != nil {
		c.ID = 0
		return err
	}
	m.s.nextID++
	return nil
}

// Update implements store.CategoryStore.
func (m *MemoryCategoryStore) Update(_ context.Context, c *domain.Category) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.categories[c.ID]; !ok {
		return store.ErrCategoryNotFound
	}
	c.UpdatedAt = now()
	return m.save(c)
}

// Delete implements store.CategoryStore. Posts in the category go with it.
func (m *MemoryCategoryStore) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.categories[id]; !ok {
		return store.ErrCategoryNotFound
	}
	delete(m.s.categories, id)
	for pid, p := range m.s.posts {
		if p.CategoryID == id {
			m.s.deletePost(pid)
		}
	}
	return nil
}

// MemoryTagStore implements store.TagStore.
type MemoryTagStore struct{ s *Stores }

func (m *MemoryTagStore) withPosts(id int64) *domain.Tag {
	t := m.s.tags[id]
	t.Posts = m.s.postsWhere(func(p domain.Post) bool {
		for _, tid := range m.s.postTags[p.ID] {
			if tid == id {
				return true
			}
		}
		return false
	})
	return &t
}

// List implements store.TagStore.
func (m *MemoryTagStore) List(_ context.Context) ([]*domain.Tag, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*domain.Tag, 0, len(m.s.tags))
	for _, id := range sortedIDs(m.s.tags) {
		out = append(out, m.withPosts(id))
	}
	return out, nil
}

// GetBySlug implements store.TagStore.
func (m *MemoryTagStore) GetBySlug(_ context.Context, slug string) (*domain.Tag, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, t := range m.s.tags {
		if t.Slug == slug {
			return m.withPosts(id), nil
		}
	}
	return nil, store.ErrTagNotFound
}

// GetBySlugs implements store.TagStore.
func (m *MemoryTagStore) GetBySlugs(_ context.Context, slugs []string) ([]*domain.Tag, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	wanted := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		wanted[s] = struct{}{}
	}
	var out []*domain.Tag
	for _, id := range sortedIDs(m.s.tags) {
		if t := m.s.tags[id]; hasKey(wanted, t.Slug) {
			out = append(out, &t)
		}
	}
	return out, nil
}

func hasKey(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}

func (m *MemoryTagStore) save(t *domain.Tag) error {
	if err := t.Validate(); err != nil {
		return err
	}
	for id, other := range m.s.tags {
		if id != t.ID && other.Slug == t.Slug {
			return store.NewDuplicateError("tag", "slug", nil)
		}
	}
	row := *t
	row.Posts = nil
	m.s.tags[t.ID] = row
	return nil
}

// Create implements store.TagStore.
func (m *MemoryTagStore) Create(_ context.Context, t *domain.Tag) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t.ID = m.s.nextID + 1
	if err := m.save(t); err != nil {
		t.ID = 0
		return err
	}
	m.s.nextID++
	return nil
}

// Update implements store.TagStore.
func (m *MemoryTagStore) Update(_ context.Context, t *domain.Tag) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.tags[t.ID]; !ok {
		return store.ErrTagNotFound
	}
	t.UpdatedAt = now()
	return m.save(t)
}

// Delete implements store.TagStore. Only the post links go with the tag.
func (m *MemoryTagStore) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.tags[id]; !ok {
		return store.ErrTagNotFound
	}
	delete(m.s.tags, id)
	for pid, ids := range m.s.postTags {
		kept := ids[:0]
		for _, tid := range ids {
			if tid != id {
				kept = append(kept, tid)
			}
		}
		m.s.postTags[pid] = kept
	}
	return nil
}

// MemoryPostStore implements store.PostStore with query.FilterPosts.
type MemoryPostStore struct{ s *Stores }

// List implements store.PostStore.
func (m *MemoryPostStore) List(_ context.Context, f store.PostFilter) ([]*domain.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := make([]*domain.Post, 0, len(m.s.posts))
	for _, id := range sortedIDs(m.s.posts) {
		all = append(all, m.s.fullPost(id))
	}
	return query.FilterPosts(all, f), nil
}

// GetBySlug implements store.PostStore.
func (m *MemoryPostStore) GetBySlug(_ context.Context, slug string) (*domain.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, p := range m.s.posts {
		if p.Slug == slug {
			return m.s.fullPost(id), nil
		}
	}
	return nil, store.ErrPostNotFound
}

func (m *MemoryPostStore) save(p *domain.Post) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, ok := m.s.users[p.AuthorID]; !ok {
		return fmt.Errorf("%w: author %d does not exist", store.ErrInvalidEntity, p.AuthorID)
	}
	if _, ok := m.s.categories[p.CategoryID]; !ok {
		return fmt.Errorf("%w: category %d does not exist", store.ErrInvalidEntity, p.CategoryID)
	}
	for id, other := range m.s.posts {
		if id != p.ID && other.Slug == p.Slug {
			return store.NewDuplicateError("post", "slug", nil)
		}
	}

	row := *p
	row.Author, row.Category, row.Tags, row.MediaFiles = nil, nil, nil, nil
	m.s.posts[p.ID] = row

	ids := make([]int64, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	m.s.postTags[p.ID] = ids
	return nil
}

// Create implements store.PostStore. Statistics start at zero.
func (m *MemoryPostStore) Create(_ context.Context, p *domain.Post) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p.ID = m.s.nextID + 1
	p.Statistics.PostID = p.ID
	if err := m.save(p); err != nil {
		p.ID = 0
		return err
	}
	m.s.nextID++
	return nil
}

// Update implements store.PostStore. Tag links are replaced.
func (m *MemoryPostStore) Update(_ context.Context, p *domain.Post) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	old, ok := m.s.posts[p.ID]
	if !ok {
		return store.ErrPostNotFound
	}
	p.UpdatedAt = now()
	p.Statistics = old.Statistics
	return m.save(p)
}

// Delete implements store.PostStore.
func (m *MemoryPostStore) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.posts[id]; !ok {
		return store.ErrPostNotFound
	}
	m.s.deletePost(id)
	return nil
}

// MemoryMediaFileStore implements store.MediaFileStore.
type MemoryMediaFileStore struct{ s *Stores }

// List implements store.MediaFileStore.
func (m *MemoryMediaFileStore) List(_ context.Context) ([]*domain.MediaFile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.mediaWhere(func(domain.MediaFile) bool { return true }), nil
}

// ListByPost implements store.MediaFileStore.
func (m *MemoryMediaFileStore) ListByPost(_ context.Context, postID int64) ([]*domain.MediaFile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.mediaWhere(func(mf domain.MediaFile) bool { return mf.PostID == postID }), nil
}

// ListByAuthor implements store.MediaFileStore.
func (m *MemoryMediaFileStore) ListByAuthor(_ context.Context, authorID int64) ([]*domain.MediaFile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.mediaWhere(func(mf domain.MediaFile) bool {
		return m.s.posts[mf.PostID].AuthorID == authorID
	}), nil
}

// GetByID implements store.MediaFileStore.
func (m *MemoryMediaFileStore) GetByID(_ context.Context, id int64) (*domain.MediaFile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	mf, ok := m.s.media[id]
	if !ok {
		return nil, store.ErrMediaFileNotFound
	}
	return &mf, nil
}

// Create implements store.MediaFileStore.
func (m *MemoryMediaFileStore) Create(_ context.Context, mf *domain.MediaFile) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.posts[mf.PostID]; !ok {
		return fmt.Errorf("%w: post %d does not exist", store.ErrInvalidEntity, mf.PostID)
	}
	for _, other := range m.s.media {
		if other.PostID == mf.PostID && other.Name == mf.Name {
			return store.NewDuplicateError("media file", "name", nil)
		}
	}
	mf.ID = m.s.id()
	m.s.media[mf.ID] = *mf
	return nil
}

// Delete implements store.MediaFileStore.
func (m *MemoryMediaFileStore) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.media[id]; !ok {
		return store.ErrMediaFileNotFound
	}
	delete(m.s.media, id)
	return nil
}

// Counts reports how many rows each table holds, for cascade assertions.
func (s *Stores) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]int{
		"users":           len(s.users),
		"profiles":        len(s.profiles),
		"social_accounts": len(s.socials),
		"categories":      len(s.categories),
		"tags":            len(s.tags),
		"posts":           len(s.posts),
		"media_files":     len(s.media),
	}
}
