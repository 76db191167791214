package realtime

import (
	"context"
	"log/slog"
	"time"
)

// UnreadCounter returns unread notification counts keyed by user id.
type UnreadCounter interface {
	UnreadCounts(ctx context.Context, userIDs []int64) (map[int64]int, error)
}

// Counts is the record of a counts event.
type Counts struct {
	UnreadNotifications int `json:"unreadNotifications"`
}

// CountsRefresher periodically pushes unread counts to users subscribed to
// the counts table.
type CountsRefresher struct {
	hub      *Hub
	counter  UnreadCounter
	interval time.Duration
	logger   *slog.Logger
}

func NewCountsRefresher(hub *Hub, counter UnreadCounter, interval time.Duration, logger *slog.Logger) *CountsRefresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &CountsRefresher{hub: hub, counter: counter, interval: interval, logger: logger}
}

func (r *CountsRefresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh sends one round of counts. Errors are logged; the next tick retries.
func (r *CountsRefresher) Refresh(ctx context.Context) {
	ids := r.hub.ConnectedUsers(TableCounts)
	if len(ids) == 0 {
		return
	}

	counts, err := r.counter.UnreadCounts(ctx, ids)
	if err != nil {
		r.logger.Warn("unread counts refresh failed", slog.Int("users", len(ids)), slog.Any("error", err))
		return
	}
	for _, id := range ids {
		r.hub.Publish(Event{
			Table:   TableCounts,
			Type:    EventCounts,
			UserIDs: []int64{id},
			Record:  Counts{UnreadNotifications: counts[id]},
		})
	}
}
