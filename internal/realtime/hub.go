package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/01moynul/taptoeat-golang/internal/auth"
)

const (
	sendBuffer   = 64
	eventBacklog = 256
)

// Hub fans events out to the connected subscribers. Publish never blocks:
// when the backlog is full the event is dropped and logged.
type Hub struct {
	logger  *slog.Logger
	events  chan Event
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		events:  make(chan Event, eventBacklog),
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) Publish(e Event) {
	select {
	case h.events <- e:
	default:
		h.logger.Warn("realtime backlog full, event dropped", slog.String("table", string(e.Table)))
	}
}

// Run delivers events until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case e := <-h.events:
			h.dispatch(e)
		}
	}
}

func (h *Hub) dispatch(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("realtime event encode failed", slog.String("table", string(e.Table)), slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.wants(e) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Too slow to keep up; the client reconnects and refetches.
			h.logger.Warn("realtime subscriber dropped", slog.Int64("user_id", c.session.UserID))
			h.remove(c)
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	h.remove(c)
	h.mu.Unlock()
}

// remove must be called with mu held.
func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.remove(c)
	}
}

// ConnectedUsers lists the distinct users subscribed to table.
func (h *Hub) ConnectedUsers(table Table) []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var ids []int64
	for c := range h.clients {
		if c.tables[table] && !slices.Contains(ids, c.session.UserID) {
			ids = append(ids, c.session.UserID)
		}
	}
	slices.Sort(ids)
	return ids
}

// Client is one websocket subscriber.
type Client struct {
	session auth.Session
	tables  map[Table]bool
	send    chan []byte
}

func newClient(session auth.Session, tables []Table) *Client {
	c := &Client{session: session, tables: make(map[Table]bool, len(tables)), send: make(chan []byte, sendBuffer)}
	for _, t := range tables {
		c.tables[t] = true
	}
	return c
}

// wants reports whether e should reach this client. Counts are always
// personal; otherwise admins see everything on their tables.
func (c *Client) wants(e Event) bool {
	if !c.tables[e.Table] {
		return false
	}
	if slices.Contains(e.UserIDs, c.session.UserID) {
		return true
	}
	if e.Table == TableCounts {
		return false
	}
	if c.session.IsAdmin() {
		return true
	}
	return e.Broadcast && (len(e.Roles) == 0 || slices.Contains(e.Roles, c.session.Role))
}
