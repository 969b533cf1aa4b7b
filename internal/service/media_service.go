package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/events"
	"github.com/phrazzld/blog-api/internal/platform/imaging"
	"github.com/phrazzld/blog-api/internal/platform/storage"
	"github.com/phrazzld/blog-api/internal/store"
)

// MediaView selects how much of a media file a caller may see.
type MediaView int

const (
	// ViewPublic exposes file, type and timestamps only.
	ViewPublic MediaView = iota + 1

	// ViewFull exposes every attribute.
	ViewFull
)

// Upload is one file received in a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaService manages the files attached to posts.
type MediaService interface {
	// ListForPost returns the files of the post with slug and the view the
	// caller is entitled to.
	ListForPost(ctx context.Context, viewer domain.Principal, slug string) ([]*domain.MediaFile, MediaView, error)

	// GetForPost returns one file of the post with slug.
	GetForPost(ctx context.Context, viewer domain.Principal, slug string, id int64) (*domain.MediaFile, MediaView, error)

	// Upload validates every file, then stores them all.
	Upload(ctx context.Context, viewer domain.Principal, slug string, files []Upload) ([]*domain.MediaFile, error)

	// Delete removes one file of the post; the blob is released afterwards.
	Delete(ctx context.Context, viewer domain.Principal, slug string, id int64) error

	// List returns every media file. Callers gate it to admins.
	List(ctx context.Context) ([]*domain.MediaFile, error)

	// Get returns any media file by ID. Callers gate it to admins.
	Get(ctx context.Context, id int64) (*domain.MediaFile, error)
}

type mediaServiceImpl struct {
	posts   store.PostStore
	media   store.MediaFileStore
	blobs   storage.BlobStore
	decoder imaging.Decoder
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewMediaService creates a MediaService. The emitter may be nil.
func NewMediaService(
	posts store.PostStore,
	media store.MediaFileStore,
	blobs storage.BlobStore,
	decoder imaging.Decoder,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (MediaService, error) {
	switch {
	case posts == nil:
		return nil, nilDependency("posts")
	case media == nil:
		return nil, nilDependency("media")
	case blobs == nil:
		return nil, nilDependency("blobs")
	case decoder == nil:
		return nil, nilDependency("decoder")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &mediaServiceImpl{
		posts:   posts,
		media:   media,
		blobs:   blobs,
		decoder: decoder,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "media_service")),
	}, nil
}

func (s *mediaServiceImpl) fail(op string, err error) error {
	return translateStoreError("media", op, "MediaFile", err)
}

func (s *mediaServiceImpl) post(ctx context.Context, op, slug string) (*domain.Post, error) {
	p, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, translateStoreError("media", op, "Post", err)
	}
	return p, nil
}

// viewFor decides the view on the files of p: anonymous callers see public
// posts' files publicly, the owning author and admins see everything.
func viewFor(viewer domain.Principal, p *domain.Post) (MediaView, bool) {
	if !viewer.IsAuthenticated() {
		if p.IsPublic() {
			return ViewPublic, true
		}
		return 0, false
	}
	if viewer.CanManage(p.AuthorID) {
		return ViewFull, true
	}
	return 0, false
}

// ListForPost implements MediaService.
func (s *mediaServiceImpl) ListForPost(ctx context.Context, viewer domain.Principal, slug string) ([]*domain.MediaFile, MediaView, error) {
	p, err := s.post(ctx, "list", slug)
	if err != nil {
		return nil, 0, err
	}
	view, ok := viewFor(viewer, p)
	if !ok {
		return nil, 0, domain.Forbidden("You do not have permission to view these media files")
	}

	files, err := s.media.ListByPost(ctx, p.ID)
	if err != nil {
		s.logger.Error("failed to list media files", "error", err, "post_id", p.ID)
		return nil, 0, s.fail("list", err)
	}
	return files, view, nil
}

// GetForPost implements MediaService.
func (s *mediaServiceImpl) GetForPost(ctx context.Context, viewer domain.Principal, slug string, id int64) (*domain.MediaFile, MediaView, error) {
	p, err := s.post(ctx, "get", slug)
	if err != nil {
		return nil, 0, err
	}
	m, err := s.fileOf(ctx, "get", p, id)
	if err != nil {
		return nil, 0, err
	}
	view, ok := viewFor(viewer, p)
	if !ok {
		return nil, 0, domain.Forbidden("You do not have permission to view this media file")
	}
	return m, view, nil
}

func (s *mediaServiceImpl) fileOf(ctx context.Context, op string, p *domain.Post, id int64) (*domain.MediaFile, error) {
	m, err := s.media.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if m.PostID != p.ID {
		return nil, domain.NoMatch("MediaFile")
	}
	return m, nil
}

// Upload implements MediaService.
func (s *mediaServiceImpl) Upload(ctx context.Context, viewer domain.Principal, slug string, files []Upload) ([]*domain.MediaFile, error) {
	p, err := s.post(ctx, "upload", slug)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(p.AuthorID) {
		return nil, domain.Forbidden("You do not have permission to add media files")
	}
	if len(files) == 0 {
		return nil, domain.BadRequest("No files provided")
	}

	existing, err := s.media.ListByPost(ctx, p.ID)
	if err != nil {
		return nil, s.fail("upload", err)
	}

	accepted := make([]*domain.MediaFile, 0, len(files))
	names := make(map[string]struct{}, len(files))
	for _, f := range files {
		m, err := s.prepare(p, f, existing)
		if err == nil {
			if _, dup := names[m.Name]; dup {
				err = domain.BadRequest("A file with name '%s' already exists for this post.", m.Name)
			}
		}
		if err != nil {
			s.logger.Debug("rejected upload", "error", err, "post_id", p.ID, "filename", f.Filename)
			return nil, err
		}
		names[m.Name] = struct{}{}
		accepted = append(accepted, m)
	}

	for i, m := range accepted {
		if err := s.store(ctx, p, m, files[i]); err != nil {
			return nil, err
		}
	}

	s.logger.Info("media uploaded", "post_id", p.ID, "count", len(accepted))
	return accepted, nil
}

func (s *mediaServiceImpl) prepare(p *domain.Post, f Upload, existing []*domain.MediaFile) (*domain.MediaFile, error) {
	m, err := domain.NewMediaFile(p.ID, f.Filename, int64(len(f.Data)))
	if err != nil {
		return nil, err
	}
	if err := m.CheckUniqueName(existing); err != nil {
		return nil, err
	}
	if m.IsImage() {
		w, h, err := s.decoder.Dimensions(m.Name, f.Data)
		if err != nil {
			return nil, domain.ImageMetadataError(err)
		}
		m.SetDimensions(w, h)
	}
	return m, nil
}

func (s *mediaServiceImpl) store(ctx context.Context, p *domain.Post, m *domain.MediaFile, f Upload) error {
	key, err := s.blobs.Save(ctx, m.BlobKey(p.AuthorID), f.Data, f.ContentType)
	if err != nil {
		s.logger.Error("failed to store blob", "error", err, "post_id", p.ID, "name", m.Name)
		return NewServiceError("media", "upload", err)
	}
	m.File = key

	if err := s.media.Create(ctx, m); err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			s.logger.Warn("failed to remove orphaned blob", "error", derr, "key", key)
		}
		return s.fail("upload", err)
	}

	_ = events.Emit(ctx, s.emitter, events.MediaCreated, events.MediaPayload{
		MediaFileID: m.ID,
		PostID:      p.ID,
		File:        m.File,
	})
	return nil
}

// Delete implements MediaService.
func (s *mediaServiceImpl) Delete(ctx context.Context, viewer domain.Principal, slug string, id int64) error {
	p, err := s.post(ctx, "delete", slug)
	if err != nil {
		return err
	}
	m, err := s.fileOf(ctx, "delete", p, id)
	if err != nil {
		return err
	}
	if !viewer.CanManage(p.AuthorID) {
		return domain.Forbidden("You do not have permission to delete this media file")
	}

	if err := s.media.Delete(ctx, m.ID); err != nil {
		s.logger.Error("failed to delete media file", "error", err, "media_file_id", m.ID)
		return s.fail("delete", err)
	}

	s.logger.Info("media file deleted", "media_file_id", m.ID, "post_id", p.ID)
	_ = events.Emit(ctx, s.emitter, events.MediaDeleted, events.MediaPayload{
		MediaFileID: m.ID,
		PostID:      p.ID,
		File:        m.File,
	})
	return nil
}

// List implements MediaService.
func (s *mediaServiceImpl) List(ctx context.Context) ([]*domain.MediaFile, error) {
	files, err := s.media.List(ctx)
	if err != nil {
		s.logger.Error("failed to list media files", "error", err)
		return nil, s.fail("list", err)
	}
	return files, nil
}

// Get implements MediaService.
func (s *mediaServiceImpl) Get(ctx context.Context, id int64) (*domain.MediaFile, error) {
	m, err := s.media.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail("get", err)
	}
	return m, nil
}
