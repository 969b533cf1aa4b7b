package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	PostCreated  = "post.created"
	PostUpdated  = "post.updated"
	PostDeleted  = "post.deleted"
	MediaCreated = "media.created"
	MediaDeleted = "media.deleted"
	UserDeleted  = "user.deleted"
	BlobReleased = "blob.released"
)

// Event describes a committed change to blog content.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the event type constants
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// PostPayload accompanies post events. BlobKeys lists the media blobs the
// change made obsolete.
type PostPayload struct {
	PostID   int64    `json:"post_id"`
	Slug     string   `json:"slug"`
	AuthorID int64    `json:"author_id"`
	Status   string   `json:"status,omitempty"`
	BlobKeys []string `json:"blob_keys,omitempty"`
}

// MediaPayload accompanies media events.
type MediaPayload struct {
	MediaFileID int64  `json:"media_file_id"`
	PostID      int64  `json:"post_id"`
	File        string `json:"file"`
}

// UserPayload accompanies user events.
type UserPayload struct {
	UserID   int64    `json:"user_id"`
	Username string   `json:"username"`
	BlobKeys []string `json:"blob_keys,omitempty"`
}

// BlobPayload accompanies BlobReleased.
type BlobPayload struct {
	Keys []string `json:"keys"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// Emit builds an event and emits it. Failures are logged by the emitter and
// returned for callers that care; most callers ignore them because the
// change is already committed.
func Emit(ctx context.Context, emitter EventEmitter, eventType string, payload any) error {
	if emitter == nil {
		return nil
	}
	event, err := NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	return emitter.EmitEvent(ctx, event)
}
