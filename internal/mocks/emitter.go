package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/blog-api/internal/events"
)

// RecordingEmitter implements events.EventEmitter and keeps every event it
// receives. Events are still forwarded to Next when set.
type RecordingEmitter struct {
	mu     sync.Mutex
	Events []*events.Event
	Next   events.EventEmitter
	Err    error
}

var _ events.EventEmitter = (*RecordingEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (r *RecordingEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	r.mu.Lock()
	r.Events = append(r.Events, event)
	r.mu.Unlock()

	if r.Next != nil {
		if err := r.Next.EmitEvent(ctx, event); err != nil {
			return err
		}
	}
	return r.Err
}

// Types returns the recorded event types in emission order.
func (r *RecordingEmitter) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}

// OfType returns the recorded events of eventType.
func (r *RecordingEmitter) OfType(eventType string) []*events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*events.Event
	for _, e := range r.Events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockDecoder implements imaging.Decoder with fixed results.
type MockDecoder struct {
	Width, Height int
	Err           error
	Calls         []string
}

// Dimensions returns the configured size and records the file name.
func (d *MockDecoder) Dimensions(name string, _ []byte) (int, int, error) {
	d.Calls = append(d.Calls, name)
	if d.Err != nil {
		return 0, 0, d.Err
	}
	return d.Width, d.Height, nil
}
