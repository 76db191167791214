package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/database"
	"github.com/01moynul/taptoeat-golang/internal/models"
)

// ActivityEntry is one audit row to be written.
type ActivityEntry struct {
	ActorID  int64
	Action   models.ActionType
	Target   models.TargetType
	TargetID any
	Details  map[string]any
	IP       string
}

// insertActivity writes an audit row on q, which is normally the transaction
// of the mutation being audited. Only the fixed action and target
// vocabularies are accepted.
func insertActivity(ctx context.Context, q database.Querier, e ActivityEntry) (models.ActivityLog, error) {
	if !e.Action.Valid() || !e.Target.Valid() {
		return models.ActivityLog{}, fmt.Errorf("unknown activity %q on %q", e.Action, e.Target)
	}

	details, err := encodeJSON("details", e.Details)
	if err != nil {
		return models.ActivityLog{}, err
	}

	entry := models.ActivityLog{
		ActorID:    e.ActorID,
		ActionType: e.Action,
		TargetType: e.Target,
		TargetID:   fmt.Sprint(e.TargetID),
		Details:    e.Details,
		IPAddress:  e.IP,
		CreatedAt:  now(),
	}

	query := `
		INSERT INTO activity_logs
		(actor_id, action_type, target_type, target_id, details, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := q.ExecContext(ctx, query,
		entry.ActorID, entry.ActionType, entry.TargetType, entry.TargetID, details, entry.IPAddress, entry.CreatedAt)
	if err != nil {
		return models.ActivityLog{}, fmt.Errorf("failed to write activity log: %w", err)
	}
	entry.ID, err = res.LastInsertId()
	if err != nil {
		return models.ActivityLog{}, fmt.Errorf("failed to read activity log id: %w", err)
	}
	return entry, nil
}

type ActivityStore struct {
	db  *sql.DB
	pub Publisher
}

func NewActivityStore(db *sql.DB, pub Publisher) *ActivityStore {
	return &ActivityStore{db: db, pub: orNop(pub)}
}

// ActivityColumns are the columns activity lists may be filtered on.
var ActivityColumns = []string{"actor_id", "action_type", "target_type", "target_id", "created_at"}

const activitySelect = `id, actor_id, action_type, target_type, target_id, details, ip_address, created_at`

// Record writes a stand-alone audit row that is not tied to another change.
func (s *ActivityStore) Record(ctx context.Context, e ActivityEntry) error {
	entry, err := insertActivity(ctx, s.db, e)
	if err != nil {
		return apperr.Backend("Failed to record activity", err)
	}
	s.pub.Publish(activityEvent(entry))
	return nil
}

func (s *ActivityStore) List(ctx context.Context, f *Filter, p Page) ([]models.ActivityLog, int, error) {
	list, args, count, countArgs, err := selectPage(activitySelect, "activity_logs", f, p)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, count, countArgs...).Scan(&total); err != nil {
		return nil, 0, backendErr("Failed to load activity", err)
	}

	rows, err := s.db.QueryContext(ctx, list, args...)
	if err != nil {
		return nil, 0, backendErr("Failed to load activity", err)
	}
	defer rows.Close()

	logs := []models.ActivityLog{}
	for rows.Next() {
		l, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, backendErr("Failed to load activity", err)
	}
	return logs, total, nil
}

func scanActivity(r interface{ Scan(...any) error }) (models.ActivityLog, error) {
	var (
		l       models.ActivityLog
		details []byte
	)
	if err := r.Scan(&l.ID, &l.ActorID, &l.ActionType, &l.TargetType, &l.TargetID, &details, &l.IPAddress, &l.CreatedAt); err != nil {
		return l, backendErr("Failed to read activity", err)
	}
	m, err := decodeJSON("details", details)
	if err != nil {
		return l, err
	}
	l.Details = m
	return l, nil
}
