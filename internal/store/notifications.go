package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/database"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/realtime"
)

// NewNotification is the input for creating a notification. A nil UserID
// requires IsBroadcast.
type NewNotification struct {
	UserID      *int64                      `json:"userId"`
	Title       string                      `json:"title" binding:"required"`
	Message     string                      `json:"message" binding:"required"`
	Type        models.NotificationType     `json:"type"`
	Priority    models.NotificationPriority `json:"priority"`
	IsBroadcast bool                        `json:"isBroadcast"`
	Link        *string                     `json:"link"`
	Metadata    map[string]any              `json:"metadata"`
}

// withDefaults fills type and priority and validates the rest.
func (n NewNotification) withDefaults() (NewNotification, error) {
	n.Title = strings.TrimSpace(n.Title)
	n.Message = strings.TrimSpace(n.Message)
	if n.Title == "" {
		return n, apperr.Validation("Title is required")
	}
	if n.Message == "" {
		return n, apperr.Validation("Message is required")
	}
	if n.Type == "" {
		n.Type = models.NotificationSystem
	}
	if n.Priority == "" {
		n.Priority = models.PriorityNormal
	}
	if !n.Type.Valid() {
		return n, apperr.Validationf("Unknown notification type %q", n.Type)
	}
	if !n.Priority.Valid() {
		return n, apperr.Validationf("Unknown priority %q", n.Priority)
	}
	if n.UserID == nil && !n.IsBroadcast {
		return n, apperr.Validation("A notification needs a recipient or must be a broadcast")
	}
	return n, nil
}

// insertNotification adds a notification on q. It must run inside the
// transaction of the change that caused it.
func insertNotification(ctx context.Context, q database.Querier, n NewNotification) (models.AdminNotification, error) {
	n, err := n.withDefaults()
	if err != nil {
		return models.AdminNotification{}, err
	}
	meta, err := encodeJSON("metadata", n.Metadata)
	if err != nil {
		return models.AdminNotification{}, err
	}

	row := models.AdminNotification{
		UserID:      n.UserID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        n.Type,
		Priority:    n.Priority,
		IsBroadcast: n.IsBroadcast,
		Link:        n.Link,
		Metadata:    n.Metadata,
		CreatedAt:   now(),
	}

	query := `
		INSERT INTO admin_notifications
		(user_id, title, message, type, priority, is_read, is_broadcast, link, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`

	res, err := q.ExecContext(ctx, query,
		row.UserID, row.Title, row.Message, row.Type, row.Priority, boolToInt(row.IsBroadcast), row.Link, meta, row.CreatedAt)
	if err != nil {
		return models.AdminNotification{}, fmt.Errorf("failed to add notification: %w", err)
	}
	if row.ID, err = res.LastInsertId(); err != nil {
		return models.AdminNotification{}, fmt.Errorf("failed to read notification id: %w", err)
	}
	return row, nil
}

func notificationEvent(n models.AdminNotification) realtime.Event {
	e := realtime.Event{Table: realtime.TableNotifications, Type: realtime.EventInsert, Broadcast: n.IsBroadcast, Record: n}
	if n.UserID != nil {
		e.UserIDs = []int64{*n.UserID}
	}
	return e
}

type NotificationStore struct {
	db  *sql.DB
	pub Publisher
}

func NewNotificationStore(db *sql.DB, pub Publisher) *NotificationStore {
	return &NotificationStore{db: db, pub: orNop(pub)}
}

// NotificationColumns are the columns notification lists may be filtered on.
var NotificationColumns = []string{"user_id", "type", "priority", "is_read", "is_broadcast", "created_at", "title", "message"}

const notificationSelect = `id, user_id, title, message, type, priority, is_read, is_broadcast, link, metadata, created_at, read_at`

// VisibleTo restricts a filter to rows addressed to the user or broadcast.
func VisibleTo(f *Filter, userID int64) *Filter {
	return f.Or(Eq("user_id", userID), Eq("is_broadcast", 1))
}

// userNotifications is admin_notifications as seen by one user: a broadcast
// row takes its read state from notification_reads, a personal row keeps its
// own. The single placeholder is the user id.
const userNotifications = `(
	SELECT n.id, n.user_id, n.title, n.message, n.type, n.priority,
		CASE WHEN n.is_broadcast = 1 THEN r.notification_id IS NOT NULL ELSE n.is_read END AS is_read,
		n.is_broadcast, n.link, n.metadata, n.created_at,
		CASE WHEN n.is_broadcast = 1 THEN r.read_at ELSE n.read_at END AS read_at
	FROM admin_notifications n
	LEFT JOIN notification_reads r ON r.notification_id = n.id AND r.user_id = ?
) AS admin_notifications`

// List returns raw rows for the admin view. Broadcast rows carry no
// per-user read state there.
func (s *NotificationStore) List(ctx context.Context, f *Filter, p Page) ([]models.AdminNotification, int, error) {
	return s.list(ctx, "admin_notifications", nil, f, p)
}

// ListFor returns the notifications visible to userID with that user's read
// state. Filters on is_read apply to the user's own state.
func (s *NotificationStore) ListFor(ctx context.Context, userID int64, f *Filter, p Page) ([]models.AdminNotification, int, error) {
	return s.list(ctx, userNotifications, []any{userID}, VisibleTo(f, userID), p)
}

func (s *NotificationStore) list(ctx context.Context, from string, fromArgs []any, f *Filter, p Page) ([]models.AdminNotification, int, error) {
	list, args, count, countArgs, err := selectPage(notificationSelect, from, f, p)
	if err != nil {
		return nil, 0, err
	}
	args = append(append([]any{}, fromArgs...), args...)
	countArgs = append(append([]any{}, fromArgs...), countArgs...)

	var total int
	if err := s.db.QueryRowContext(ctx, count, countArgs...).Scan(&total); err != nil {
		return nil, 0, backendErr("Failed to load notifications", err)
	}

	rows, err := s.db.QueryContext(ctx, list, args...)
	if err != nil {
		return nil, 0, backendErr("Failed to load notifications", err)
	}
	defer rows.Close()

	out := []models.AdminNotification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, backendErr("Failed to load notifications", err)
	}
	return out, total, nil
}

// GetFor returns one notification with userID's read state. It does not check
// visibility.
func (s *NotificationStore) GetFor(ctx context.Context, userID, id int64) (models.AdminNotification, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+notificationSelect+" FROM "+userNotifications+" WHERE id = ?", userID, id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return n, apperr.NotFound("Notification not found")
	}
	return n, err
}

// Create inserts a notification and its audit row in one transaction.
func (s *NotificationStore) Create(ctx context.Context, actorID int64, in NewNotification) (models.AdminNotification, error) {
	var (
		n     models.AdminNotification
		entry models.ActivityLog
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if n, err = insertNotification(ctx, tx, in); err != nil {
			return err
		}
		entry, err = insertActivity(ctx, tx, ActivityEntry{
			ActorID:  actorID,
			Action:   models.ActionNotificationCreated,
			Target:   models.TargetNotification,
			TargetID: n.ID,
			Details:  map[string]any{"title": n.Title, "broadcast": n.IsBroadcast},
		})
		return err
	})
	if err != nil {
		return models.AdminNotification{}, txErr("Failed to create notification", err)
	}

	s.pub.Publish(notificationEvent(n))
	s.pub.Publish(activityEvent(entry))
	return n, nil
}

// MarkRead marks one notification the user can see as read. Broadcasts are
// marked for this user only. Marking twice is not an error.
func (s *NotificationStore) MarkRead(ctx context.Context, userID, id int64) error {
	var entry models.ActivityLog
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1. --- Only rows the user can see ---
		var broadcast bool
		err := tx.QueryRowContext(ctx, `
			SELECT is_broadcast FROM admin_notifications
			WHERE id = ? AND (user_id = ? OR is_broadcast = 1)`,
			id, userID).Scan(&broadcast)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Notification not found or you do not have permission to update it")
		}
		if err != nil {
			return err
		}

		// 2. --- Record the read ---
		if broadcast {
			_, err = tx.ExecContext(ctx, `
				INSERT IGNORE INTO notification_reads (notification_id, user_id, read_at)
				VALUES (?, ?, ?)`,
				id, userID, now())
		} else {
			_, err = tx.ExecContext(ctx, `
				UPDATE admin_notifications
				SET is_read = 1, read_at = COALESCE(read_at, ?)
				WHERE id = ?`,
				now(), id)
		}
		if err != nil {
			return err
		}

		// 3. --- Audit ---
		entry, err = insertActivity(ctx, tx, ActivityEntry{
			ActorID:  userID,
			Action:   models.ActionNotificationRead,
			Target:   models.TargetNotification,
			TargetID: id,
		})
		return err
	})
	if err != nil {
		return txErr("Failed to update notification", err)
	}
	s.pub.Publish(activityEvent(entry))
	return nil
}

// MarkAllRead marks the user's personal notifications and every broadcast as
// read for that user and returns how many changed.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	var (
		affected int64
		entry    models.ActivityLog
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		at := now()

		// 1. --- Personal rows ---
		res, err := tx.ExecContext(ctx, `
			UPDATE admin_notifications
			SET is_read = 1, read_at = ?
			WHERE user_id = ? AND is_broadcast = 0 AND is_read = 0`,
			at, userID)
		if err != nil {
			return err
		}
		personal, err := res.RowsAffected()
		if err != nil {
			return err
		}

		// 2. --- Broadcasts, for this user only ---
		res, err = tx.ExecContext(ctx, `
			INSERT IGNORE INTO notification_reads (notification_id, user_id, read_at)
			SELECT id, ?, ? FROM admin_notifications WHERE is_broadcast = 1`,
			userID, at)
		if err != nil {
			return err
		}
		broadcasts, err := res.RowsAffected()
		if err != nil {
			return err
		}

		affected = personal + broadcasts
		if affected == 0 {
			return nil
		}

		// 3. --- Audit ---
		entry, err = insertActivity(ctx, tx, ActivityEntry{
			ActorID:  userID,
			Action:   models.ActionNotificationRead,
			Target:   models.TargetNotification,
			TargetID: "all",
			Details:  map[string]any{"count": affected},
		})
		return err
	})
	if err != nil {
		return 0, txErr("Failed to update notifications", err)
	}
	if affected > 0 {
		s.pub.Publish(activityEvent(entry))
	}
	return affected, nil
}

func (s *NotificationStore) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM `+userNotifications+`
		WHERE is_read = 0 AND (user_id = ? OR is_broadcast = 1)`, userID, userID).Scan(&n)
	if err != nil {
		return 0, backendErr("Failed to count notifications", err)
	}
	return n, nil
}

// UnreadCounts returns unread counts for several users at once. Users with
// nothing unread are present with zero.
func (s *NotificationStore) UnreadCounts(ctx context.Context, userIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	// 1. --- Every user starts with all broadcasts unread ---
	var broadcast int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM admin_notifications WHERE is_broadcast = 1").Scan(&broadcast); err != nil {
		return nil, backendErr("Failed to count notifications", err)
	}

	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
		out[id] = broadcast
	}
	in := "(?" + strings.Repeat(", ?", len(userIDs)-1) + ")"

	// 2. --- Minus the broadcasts each user has read ---
	read, err := s.countByUser(ctx, `
		SELECT r.user_id, COUNT(*) FROM notification_reads r
		JOIN admin_notifications n ON n.id = r.notification_id
		WHERE n.is_broadcast = 1 AND r.user_id IN `+in+`
		GROUP BY r.user_id`, args)
	if err != nil {
		return nil, err
	}

	// 3. --- Plus unread personal notifications ---
	personal, err := s.countByUser(ctx, `
		SELECT user_id, COUNT(*) FROM admin_notifications
		WHERE is_read = 0 AND is_broadcast = 0 AND user_id IN `+in+`
		GROUP BY user_id`, args)
	if err != nil {
		return nil, err
	}

	for id := range out {
		out[id] += personal[id] - read[id]
	}
	return out, nil
}

func (s *NotificationStore) countByUser(ctx context.Context, query string, args []any) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, backendErr("Failed to count notifications", err)
	}
	defer rows.Close()

	out := map[int64]int{}
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, backendErr("Failed to count notifications", err)
		}
		out[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("Failed to count notifications", err)
	}
	return out, nil
}

func scanNotification(r interface{ Scan(...any) error }) (models.AdminNotification, error) {
	var (
		n    models.AdminNotification
		meta []byte
	)
	err := r.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Priority,
		&n.IsRead, &n.IsBroadcast, &n.Link, &meta, &n.CreatedAt, &n.ReadAt)
	if errors.Is(err, sql.ErrNoRows) {
		return n, err
	}
	if err != nil {
		return n, backendErr("Failed to read notification", err)
	}
	if n.Metadata, err = decodeJSON("metadata", meta); err != nil {
		return n, err
	}
	return n, nil
}
