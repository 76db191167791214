package handlers

import (
	"log/slog"
	"net/http"

	"github.com/01moynul/taptoeat-golang/internal/realtime"
	"github.com/gin-gonic/gin"
)

// Subscribe is the handler for GET /v1/realtime?table=notifications,counts
// It upgrades to a websocket and streams change events until the client
// disconnects.
func (h *Handlers) Subscribe(c *gin.Context) {
	// 1. --- Get User ---
	s, ok := session(c)
	if !ok {
		return
	}

	// 2. --- Parse Tables ---
	tables, err := realtime.ParseTables(c.Query("table"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	// 3. --- Upgrade & Stream ---
	// Upgrade writes its own error response when the handshake fails.
	if err := realtime.ServeWS(h.Hub, h.Upgrader, c.Writer, c.Request, s, tables); err != nil {
		h.Logger.WarnContext(c.Request.Context(), "websocket upgrade failed",
			slog.Int64("user_id", s.UserID), slog.Any("error", err))
		if !c.Writer.Written() {
			c.Status(http.StatusBadRequest)
		}
	}
}
