package ports

import "deckview/internal/domain/entities"

// Broadcaster defines the interface for fanning state updates out to
// connected clients.
type Broadcaster interface {
	// Broadcast delivers an event to every connected client. Slow clients
	// may be skipped; delivery is best effort.
	Broadcast(event entities.UpdateEvent)

	// ClientCount returns the number of connected clients.
	ClientCount() int
}
