// Package events decouples content changes from their side effects.
//
// Services emit an Event after a change is committed. Handlers registered on
// a Dispatcher then react synchronously: BlobCleanupHandler
// releases stored media blobs and ForwardingHandler publishes every event to
// an external broker.
package events
