// Package audit writes activity log rows that are not part of another
// transaction, such as logins.
package audit

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/01moynul/taptoeat-golang/internal/store"
)

// Writer persists one activity entry.
type Writer interface {
	Record(ctx context.Context, e store.ActivityEntry) error
}

// Recorder is best effort: a failed write never fails the caller's request.
// Failures are logged at ERROR and counted so the dashboard can show them.
type Recorder struct {
	w        Writer
	logger   *slog.Logger
	failures atomic.Int64
}

func NewRecorder(w Writer, logger *slog.Logger) *Recorder {
	return &Recorder{w: w, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, e store.ActivityEntry) {
	if err := r.w.Record(ctx, e); err != nil {
		r.failures.Add(1)
		r.logger.ErrorContext(ctx, "activity log write failed",
			slog.String("action", string(e.Action)),
			slog.String("target", string(e.Target)),
			slog.Int64("actor_id", e.ActorID),
			slog.Any("error", err),
		)
	}
}

// Failures is the number of writes lost since start-up.
func (r *Recorder) Failures() int64 {
	return r.failures.Load()
}
