// Package events defines the typed publish/subscribe seam between services
// and whatever transport pushes events to clients. Services depend on the
// Broadcaster interface only; the websocket hub is the concrete sink.
package events

// Broadcaster delivers a typed event to all subscribers.
type Broadcaster interface {
	Broadcast(eventType string, payload interface{}) error
}

// Event type constants. The naming convention is "<subject>:<verb>".
const (
	CollectionRefreshStarted   = "collections:refresh-started"
	CollectionRefreshCompleted = "collections:refresh-completed"
	CollectionUpdated          = "collections:updated"
	CollectionDeleted          = "collections:deleted"
)

// Nop is a Broadcaster that discards everything; useful in tests and when
// no transport is wired.
type Nop struct{}

// Broadcast implements Broadcaster.
func (Nop) Broadcast(string, interface{}) error { return nil }
