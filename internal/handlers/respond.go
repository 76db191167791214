package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/auth"
	"github.com/01moynul/taptoeat-golang/internal/middleware"
	"github.com/01moynul/taptoeat-golang/internal/store"
	"github.com/gin-gonic/gin"
)

// writeError sends {"error": message} with the status of the error's kind.
// Backend and unexpected errors are logged with their cause; the client only
// sees the user-facing message.
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

// session returns the caller. Routes using it sit behind AuthMiddleware, so
// a missing session is a wiring bug and answered with 401.
func session(c *gin.Context) (auth.Session, bool) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
	return s, ok
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// listQuery is the common query string of list endpoints.
type listQuery struct {
	store.Page
	From string `form:"from"`
	To   string `form:"to"`
}

// dateRange adds created_at bounds for from/to given as RFC 3339 or
// YYYY-MM-DD. A bare "to" date includes that whole day.
func (q listQuery) dateRange(f *store.Filter) error {
	if q.From != "" {
		t, err := parseDate(q.From)
		if err != nil {
			return err
		}
		f.Gte("created_at", t)
	}
	if q.To != "" {
		t, err := parseDate(q.To)
		if err != nil {
			return err
		}
		if len(q.To) == len(time.DateOnly) {
			t = t.Add(24*time.Hour - time.Second)
		}
		f.Lte("created_at", t)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, apperr.Validationf("Invalid date %q", s)
	}
	return t, nil
}

func page[T any](c *gin.Context, key string, items []T, total int, p store.Page) {
	p = p.Normalize()
	c.JSON(http.StatusOK, gin.H{
		key:      items,
		"total":  total,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}
