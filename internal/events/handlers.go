package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/platform/logger"
)

// BlobDeleter removes stored blobs by key.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

// BlobCleanupHandler removes the blobs an event made obsolete. Removal is
// best effort: failures are logged and joined into the returned error, and
// the remaining keys are still attempted.
type BlobCleanupHandler struct {
	blobs  BlobDeleter
	logger *slog.Logger
}

var _ EventHandler = (*BlobCleanupHandler)(nil)

// NewBlobCleanupHandler creates a handler releasing blobs from blobs.
func NewBlobCleanupHandler(blobs BlobDeleter, logger *slog.Logger) *BlobCleanupHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlobCleanupHandler{
		blobs:  blobs,
		logger: logger.With(slog.String("component", "blob_cleanup")),
	}
}

// BlobKeys extracts the blob keys carried by event. Events that release no
// blobs yield nil.
func BlobKeys(event *Event) ([]string, error) {
	switch event.Type {
	case MediaDeleted:
		var p MediaPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, err
		}
		if p.File == "" {
			return nil, nil
		}
		return []string{p.File}, nil
	case PostDeleted:
		var p PostPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, err
		}
		return p.BlobKeys, nil
	case UserDeleted:
		var p UserPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, err
		}
		return p.BlobKeys, nil
	case BlobReleased:
		var p BlobPayload
		if err := event.UnmarshalPayload(&p); err != nil {
			return nil, err
		}
		return p.Keys, nil
	}
	return nil, nil
}

// HandleEvent implements EventHandler.
func (h *BlobCleanupHandler) HandleEvent(ctx context.Context, event *Event) error {
	log := logger.FromContextOrDefault(ctx, h.logger)

	keys, err := BlobKeys(event)
	if err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}

	var errs []error
	for _, key := range keys {
		if err := h.blobs.Delete(ctx, key); err != nil {
			log.Warn("failed to release blob",
				slog.String("key", key),
				slog.String("event_type", event.Type),
				slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		log.Debug("released blob", slog.String("key", key))
	}
	return errors.Join(errs...)
}

// Publisher sends a keyed message to a broker.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// ForwardingHandler publishes every event as JSON, keyed by event type, so
// that consumers see the events of one type in order.
type ForwardingHandler struct {
	publisher Publisher
}

var _ EventHandler = (*ForwardingHandler)(nil)

// NewForwardingHandler creates a handler publishing to p.
func NewForwardingHandler(p Publisher) *ForwardingHandler {
	return &ForwardingHandler{publisher: p}
}

// HandleEvent implements EventHandler.
func (h *ForwardingHandler) HandleEvent(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.publisher.Publish(ctx, event.Type, body)
}
