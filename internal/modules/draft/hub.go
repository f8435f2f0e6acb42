package draft

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// subscriberBuffer bounds per-connection queued snapshots. A dashboard that
// cannot keep up gets dropped rather than stalling the broadcast.
const subscriberBuffer = 16

// Hub fans draft snapshots out to connected websocket dashboards.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan Snapshot]struct{}
	log         zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[chan Snapshot]struct{}),
		log:         log.With().Str("component", "draft_hub").Logger(),
	}
}

// Broadcast queues a snapshot for every subscriber. Slow subscribers are
// disconnected.
func (h *Hub) Broadcast(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- snap:
		default:
			delete(h.subscribers, ch)
			close(ch)
			h.log.Warn().Msg("Dropped slow draft subscriber")
		}
	}
}

// SubscriberCount returns the number of connected dashboards.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *Hub) subscribe() chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan Snapshot) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// ServeWS upgrades the request and streams snapshots until the client
// disconnects. The initial parameter is sent immediately so a dashboard that
// joins mid-draft sees current state without waiting for the next change.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, initial Snapshot) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The dashboard is served from a different origin in development.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	ctx := r.Context()
	if err := writeSnapshot(ctx, conn, initial); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case snap, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "subscriber dropped")
				return
			}
			if err := writeSnapshot(ctx, conn, snap); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(ctx context.Context, conn *websocket.Conn, snap Snapshot) error {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return wsjson.Write(writeCtx, conn, snap)
}
