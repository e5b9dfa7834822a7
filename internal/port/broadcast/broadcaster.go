// Package broadcast defines the port interface for real-time event fan-out.
package broadcast

import "context"

// Broadcaster pushes typed events to all connected observers.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
