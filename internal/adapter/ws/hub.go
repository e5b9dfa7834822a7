// Package ws streams task and worker lifecycle events to WebSocket
// observers. Each subscriber gets a buffered outbound queue drained by its
// own writer goroutine; a subscriber that cannot keep up is dropped rather
// than allowed to stall the broadcast path.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	// queueSize bounds the per-subscriber backlog. The event rate is a
	// handful per task, so a small buffer only overflows for a stuck peer.
	queueSize = 16

	writeTimeout = 5 * time.Second
)

// Envelope frames every event on the stream.
type Envelope struct {
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data"`
}

type subscriber struct {
	queue chan []byte
	stop  context.CancelFunc
}

// Hub fans events out to all connected subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// HandleWS upgrades the request and streams events until the peer goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	sub := &subscriber{
		queue: make(chan []byte, queueSize),
		stop:  cancel,
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	slog.Info("observer connected", "remote", r.RemoteAddr)

	go h.writeLoop(ctx, c, sub)

	// Inbound frames are not part of the protocol; reading only serves to
	// notice the close handshake.
	go func() {
		for {
			if _, _, err := c.Read(ctx); err != nil {
				h.drop(sub)
				return
			}
		}
	}()
}

func (h *Hub) writeLoop(ctx context.Context, c *websocket.Conn, sub *subscriber) {
	defer func() { _ = c.Close(websocket.StatusNormalClosure, "") }()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-sub.queue:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(wctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				h.drop(sub)
				return
			}
		}
	}
}

// BroadcastEvent wraps the payload in an Envelope and queues it for every
// subscriber. Subscribers with a full queue are dropped.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal event payload", "type", eventType, "error", err)
		return
	}
	frame, err := json.Marshal(Envelope{Type: eventType, At: time.Now().UTC(), Data: data})
	if err != nil {
		slog.Error("marshal event envelope", "type", eventType, "error", err)
		return
	}

	for _, sub := range h.snapshot() {
		select {
		case sub.queue <- frame:
		case <-ctx.Done():
			return
		default:
			slog.Warn("dropping slow observer", "type", eventType)
			h.drop(sub)
		}
	}
}

// ConnectionCount returns the number of active subscribers.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) snapshot() []*subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		out = append(out, sub)
	}
	return out
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()

	if ok {
		sub.stop()
		slog.Info("observer disconnected")
	}
}
