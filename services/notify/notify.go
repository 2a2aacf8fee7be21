package notify

import "sync"

// Broadcaster receives entity-change signals after successful mutations. The
// websocket hub implements it; callers treat delivery as fire-and-forget.
type Broadcaster interface {
	BroadcastEntityChanged(entityType string)
}

var (
	mu          sync.RWMutex
	broadcaster Broadcaster
)

// SetBroadcaster wires the global change-notification sink. Passing nil
// disables notifications (the default, e.g. in tests).
func SetBroadcaster(b Broadcaster) {
	mu.Lock()
	broadcaster = b
	mu.Unlock()
}

// EntityChanged signals that rows of the given entity type changed.
func EntityChanged(entityType string) {
	mu.RLock()
	b := broadcaster
	mu.RUnlock()
	if b != nil {
		b.BroadcastEntityChanged(entityType)
	}
}
