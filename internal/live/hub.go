// Package live fans recorded events out to watching websocket clients as
// they happen. The hub is the recorder's publisher: every emitted event
// reaches the watchers of its coaching point as one JSON text frame, in
// emission order.
package live

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/filmroom/telestrator/internal/event"
)

// Hub tracks the watchers of each coaching point and broadcasts to them.
//
// Delivery is best-effort: a watcher whose queue is full is dropped rather
// than allowed to stall the recording session. The durable log is the
// source of truth; a dropped viewer reconnects and reloads.
type Hub struct {
	mu     sync.Mutex
	points map[string]map[*Client]struct{}
	closed bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{points: make(map[string]map[*Client]struct{})}
}

// Register attaches conn to a point's feed and starts its read and write
// pumps. The hub owns the connection from here on; the caller's handler
// may return immediately.
func (h *Hub) Register(pointID string, conn *websocket.Conn) (*Client, error) {
	return h.register(pointID, conn)
}

func (h *Hub) register(pointID string, conn wsConn) (*Client, error) {
	if pointID == "" {
		conn.Close()
		return nil, errors.New("live: point id is required")
	}
	c := &Client{hub: h, pointID: pointID, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return nil, errors.New("live: hub is closed")
	}
	set, ok := h.points[pointID]
	if !ok {
		set = make(map[*Client]struct{})
		h.points[pointID] = set
	}
	set[c] = struct{}{}
	watchers := len(set)
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
	slog.Info("live client joined", "point_id", pointID, "watchers", watchers)
	return c, nil
}

// Publish sends ev to every watcher of pointID as a JSON text frame.
// Watchers with a full queue are dropped. Publish never blocks on a
// client; it implements the recorder's publisher contract.
func (h *Hub) Publish(pointID string, ev event.Event) {
	data, err := event.MarshalEvent(ev)
	if err != nil {
		slog.Error("live frame not sent", "point_id", pointID, "event_id", ev.ID, "error", err)
		return
	}

	h.mu.Lock()
	var slow []*Client
	for c := range h.points[pointID] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	// Removing under the same lock guarantees no later Publish can queue
	// onto a dropped client's channel.
	for _, c := range slow {
		h.removeLocked(c)
	}
	h.mu.Unlock()

	for _, c := range slow {
		slog.Warn("dropped slow live client", "point_id", pointID)
		c.shutdown()
	}
}

// Watchers reports how many clients are watching a point.
func (h *Hub) Watchers(pointID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.points[pointID])
}

// Close drops every client and rejects further registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var all []*Client
	for _, set := range h.points {
		for c := range set {
			all = append(all, c)
		}
	}
	h.points = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range all {
		c.shutdown()
	}
	slog.Info("live hub closed", "clients", len(all))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set := h.points[c.pointID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.points, c.pointID)
	}
}
