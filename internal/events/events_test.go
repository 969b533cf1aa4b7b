package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	payload := PostPayload{PostID: 3, Slug: "hello", AuthorID: 7, Status: "draft"}
	event, err := NewEvent(PostCreated, payload)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, PostCreated, event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded PostPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	t.Parallel()
	_, err := NewEvent(PostCreated, make(chan int))
	assert.Error(t, err)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *Event
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEmit(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Emit(context.Background(), nil, PostDeleted, PostPayload{}))

	emitter := NewDispatcher(nil)
	h := &MockEventHandler{}
	emitter.Subscribe(h)
	require.NoError(t, Emit(context.Background(), emitter, UserDeleted, UserPayload{UserID: 9}))
	require.NotNil(t, h.LastEvent)
	assert.Equal(t, UserDeleted, h.LastEvent.Type)
}

type fakeBlobs struct {
	deleted []string
	fail    map[string]bool
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	if f.fail[key] {
		return errors.New("storage unavailable")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func TestBlobKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		typ     string
		payload any
		want    []string
	}{
		{name: "media deleted", typ: MediaDeleted, payload: MediaPayload{File: "7/image/a.png"}, want: []string{"7/image/a.png"}},
		{name: "media without file", typ: MediaDeleted, payload: MediaPayload{}, want: nil},
		{name: "post deleted", typ: PostDeleted, payload: PostPayload{BlobKeys: []string{"a", "b"}}, want: []string{"a", "b"}},
		{name: "user deleted", typ: UserDeleted, payload: UserPayload{BlobKeys: []string{"c"}}, want: []string{"c"}},
		{name: "blob released", typ: BlobReleased, payload: BlobPayload{Keys: []string{"d"}}, want: []string{"d"}},
		{name: "unrelated", typ: PostCreated, payload: PostPayload{BlobKeys: []string{"x"}}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			event, err := NewEvent(tt.typ, tt.payload)
			require.NoError(t, err)
			keys, err := BlobKeys(event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestBlobCleanupHandler(t *testing.T) {
	t.Parallel()

	blobs := &fakeBlobs{fail: map[string]bool{"bad": true}}
	h := NewBlobCleanupHandler(blobs, nil)

	event, err := NewEvent(PostDeleted, PostPayload{BlobKeys: []string{"a", "bad", "b"}})
	require.NoError(t, err)

	err = h.HandleEvent(context.Background(), event)
	assert.Error(t, err)
	assert.Equal(t, []string{"a", "b"}, blobs.deleted)

	bad := &Event{Type: MediaDeleted, Payload: json.RawMessage(`{`)}
	assert.Error(t, h.HandleEvent(context.Background(), bad))
}

type recordingPublisher struct {
	key   string
	value []byte
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, value []byte) error {
	p.key, p.value = key, value
	return p.err
}

func TestForwardingHandler(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	event, err := NewEvent(MediaCreated, MediaPayload{MediaFileID: 4, PostID: 3, File: "k"})
	require.NoError(t, err)

	require.NoError(t, NewForwardingHandler(pub).HandleEvent(context.Background(), event))
	assert.Equal(t, MediaCreated, pub.key)

	var decoded Event
	require.NoError(t, json.Unmarshal(pub.value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.JSONEq(t, string(event.Payload), string(decoded.Payload))

	pub.err = errors.New("broker down")
	assert.EqualError(t, NewForwardingHandler(pub).HandleEvent(context.Background(), event), "broker down")
}
