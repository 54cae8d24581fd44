package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

const (
	EntityInventory = "inventory"
	EntityShopping  = "shopping"
	EntitySettings  = "settings"
	EntityNote      = "note"
	EntityBackup    = "backup"
)

// Event announces that a mutating call completed. Subscribers re-read the
// state they care about; Data optionally carries the new value.
type Event struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// NewEvent creates an Event with Type derived from entity and action.
func NewEvent(entity, action, id string) Event {
	return Event{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
	}
}

// Publisher is the narrow interface services depend on.
type Publisher interface {
	Publish(Event)
}

type subscription struct {
	id uint64
	fn func(Event)
}

// Hub fans events out to in-process subscribers and WebSocket clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	subs    []subscription
	nextID  uint64
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Subscribe registers fn for every subsequent event. The returned func
// removes it; calling it more than once is harmless.
func (h *Hub) Subscribe(fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subs {
				if s.id == id {
					h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every subscriber synchronously, in subscription order, then
// queues the event for each WebSocket client without blocking.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}

	h.broadcast(ev)
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop rather than block the publisher.
			h.logger.Debug("dropped event for slow client", "type", ev.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
