package domain

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// MediaType classifies an uploaded file.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

var mediaExtensions = map[MediaType][]string{
	MediaImage: {"jpg", "jpeg", "png", "gif", "webp", "svg"},
	MediaVideo: {"mp4", "webm"},
	MediaAudio: {"mp3", "aac", "wav", "ogg"},
}

// MediaFile is a file attached to a post. File holds the blob key.
type MediaFile struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	File      string    `json:"file"`
	Name      string    `json:"name"`
	Type      MediaType `json:"type"`
	Size      int64     `json:"size"`
	Width     *int      `json:"width"`
	Height    *int      `json:"height"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Extension returns the lowercased text after the last dot of name. A name
// without a dot is its own extension.
func Extension(name string) string {
	parts := strings.Split(name, ".")
	return strings.ToLower(strings.TrimLeft(parts[len(parts)-1], "."))
}

// InferMediaType maps the extension of filename to a media type.
func InferMediaType(filename string) (MediaType, error) {
	ext := Extension(filename)
	for _, t := range []MediaType{MediaImage, MediaVideo, MediaAudio} {
		for _, e := range mediaExtensions[t] {
			if e == ext {
				return t, nil
			}
		}
	}
	return "", BadRequest("Invalid file type: .%s is not allowed.", ext)
}

// NewMediaFile derives name, type and size for an upload to post. Image
// dimensions are filled in by the caller.
func NewMediaFile(postID int64, filename string, size int64) (*MediaFile, error) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	mediaType, err := InferMediaType(name)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &MediaFile{
		PostID:    postID,
		Name:      name,
		Type:      mediaType,
		Size:      size,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// BlobKey is the storage key for an upload by authorID.
func (m *MediaFile) BlobKey(authorID int64) string {
	return fmt.Sprintf("%d/%s/%s", authorID, m.Type, m.Name)
}

// IsImage reports whether dimensions should be extracted.
func (m *MediaFile) IsImage() bool {
	return m.Type == MediaImage
}

// SetDimensions records the pixel size of an image.
func (m *MediaFile) SetDimensions(width, height int) {
	m.Width = &width
	m.Height = &height
}

// CheckUniqueName rejects a name already used by another file of the same post.
func (m *MediaFile) CheckUniqueName(existing []*MediaFile) error {
	for _, e := range existing {
		if e.ID != m.ID && e.Name == m.Name {
			return BadRequest("A file with name '%s' already exists for this post.", m.Name)
		}
	}
	return nil
}

// ImageMetadataError wraps a decoder failure in the user-facing message.
func ImageMetadataError(err error) error {
	return BadRequest("Error extracting image metadata: %v", err)
}
