// Package events pushes monster lifecycle events to websocket subscribers,
// so dashboards see spawns and deaths without polling the read endpoints.
package events

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Type discriminates lifecycle events on the wire.
type Type string

const (
	TypeSpawn     Type = "spawn"
	TypeUpdate    Type = "update"
	TypeDeath     Type = "death"
	TypeAdminKill Type = "admin-kill"
	TypeReset     Type = "reset"
)

// Event is one lifecycle notification. ID and Name are zero for reset
// events.
type Event struct {
	Type      Type   `json:"type"`
	ID        int    `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// sendBuffer bounds the per-subscriber queue; a subscriber that can't keep
// up is dropped rather than blocking the reconciler.
const sendBuffer = 64

// Hub fans lifecycle events out to connected websocket clients. The zero
// value is not usable; call NewHub.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	upgrader    websocket.Upgrader
}

type subscriber struct {
	conn *websocket.Conn
	send chan Event
}

// NewHub creates a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			// The portal carries no credentials; cross-origin dashboards
			// are expected consumers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Publish delivers the event to every subscriber. Slow subscribers are
// disconnected instead of applying backpressure.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers {
		select {
		case sub.send <- ev:
		default:
			log.Printf("events: dropping slow subscriber %s", sub.conn.RemoteAddr())
			delete(h.subscribers, sub)
			close(sub.send)
		}
	}
}

// SubscriberCount returns the number of connected clients.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// ServeHTTP upgrades the request to a websocket and streams events until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("events: upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan Event, sendBuffer),
	}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	go h.writePump(sub)
	h.readPump(sub)
}

// writePump drains the subscriber's queue onto the wire.
func (h *Hub) writePump(sub *subscriber) {
	for ev := range sub.send {
		if err := sub.conn.WriteJSON(ev); err != nil {
			h.drop(sub)
			return
		}
	}
	sub.conn.Close()
}

// readPump discards inbound frames; its job is to notice the close.
func (h *Hub) readPump(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.drop(sub)
			return
		}
	}
}

// drop removes the subscriber if still present and closes its connection.
func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.send)
	}
	h.mu.Unlock()
	sub.conn.Close()
}
