package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/phrazzld/blog-api/internal/redact"
)

// BlobEventTypes lists the event types whose payload may carry blob keys.
var BlobEventTypes = []string{MediaDeleted, PostDeleted, UserDeleted, BlobReleased}

type subscription struct {
	handler EventHandler
	types   map[string]bool // nil matches every type
}

func (s subscription) matches(eventType string) bool {
	return s.types == nil || s.types[eventType]
}

// Dispatcher delivers events synchronously to the handlers subscribed to
// their type, in subscription order.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

var _ EventEmitter = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with no subscriptions.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger.With(slog.String("component", "event_dispatcher"))}
}

// Subscribe registers handler for the given event types, or for every type
// when none are given.
func (d *Dispatcher) Subscribe(handler EventHandler, types ...string) {
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[string]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	d.mu.Lock()
	d.subs = append(d.subs, sub)
	n := len(d.subs)
	d.mu.Unlock()

	d.logger.Debug("subscribed event handler", slog.Int("subscriptions", n), slog.Any("types", types))
}

// EmitEvent implements EventEmitter. A failing handler does not stop
// delivery to the rest; all failures are joined into the returned error.
func (d *Dispatcher) EmitEvent(ctx context.Context, event *Event) error {
	d.mu.RLock()
	subs := make([]subscription, 0, len(d.subs))
	for _, s := range d.subs {
		if s.matches(event.Type) {
			subs = append(subs, s)
		}
	}
	d.mu.RUnlock()

	log := d.logger.With(slog.String("event_id", event.ID.String()), slog.String("event_type", event.Type))
	if len(subs) == 0 {
		log.Debug("no handlers subscribed to event")
		return nil
	}

	var errs []error
	for i, s := range subs {
		if err := s.handler.HandleEvent(ctx, event); err != nil {
			log.Error("event handler failed",
				slog.Int("handler_index", i),
				slog.String("error", redact.Error(err)))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
