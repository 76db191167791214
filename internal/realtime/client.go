package realtime

import (
	"net/http"
	"strings"
	"time"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/auth"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// ParseTables reads a comma separated table list such as
// "notifications,counts".
func ParseTables(raw string) ([]Table, error) {
	var out []Table
	for _, part := range strings.Split(raw, ",") {
		t := Table(strings.TrimSpace(part))
		if t == "" {
			continue
		}
		if !t.Valid() {
			return nil, apperr.Validationf("Unknown table %q", t)
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, apperr.Validation("At least one table is required")
	}
	return out, nil
}

// ServeWS upgrades the request and streams events for session until the
// connection drops. It blocks for the lifetime of the connection.
func ServeWS(h *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, session auth.Session, tables []Table) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := newClient(session, tables)
	h.register(c)
	go c.writePump(conn)
	c.readPump(h, conn)
	return nil
}

// readPump discards client messages and keeps the read deadline moving with
// pongs. Returning unregisters the client, which ends writePump.
func (c *Client) readPump(h *Hub, conn *websocket.Conn) {
	defer func() {
		h.unregister(c)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
