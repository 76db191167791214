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
	"github.com/google/uuid"
)

const (
	minSubjectLen     = 5
	minDescriptionLen = 10
)

type NewTicket struct {
	Subject     string                      `json:"subject" binding:"required"`
	Description string                      `json:"description" binding:"required"`
	Category    models.TicketCategory       `json:"category"`
	Priority    models.NotificationPriority `json:"priority"`
	Metadata    map[string]any              `json:"metadata"`
}

func (t NewTicket) validate() (NewTicket, error) {
	t.Subject = strings.TrimSpace(t.Subject)
	t.Description = strings.TrimSpace(t.Description)
	if len(t.Subject) < minSubjectLen {
		return t, apperr.Validationf("Subject must be at least %d characters", minSubjectLen)
	}
	if len(t.Description) < minDescriptionLen {
		return t, apperr.Validationf("Description must be at least %d characters", minDescriptionLen)
	}
	if t.Category == "" {
		t.Category = models.TicketCategoryOther
	}
	if t.Priority == "" {
		t.Priority = models.PriorityNormal
	}
	if !t.Category.Valid() {
		return t, apperr.Validationf("Unknown category %q", t.Category)
	}
	if !t.Priority.Valid() {
		return t, apperr.Validationf("Unknown priority %q", t.Priority)
	}
	return t, nil
}

// ticketNumberAttempts bounds how often Create draws a new number after a
// unique key collision.
const ticketNumberAttempts = 3

// newTicketNumber is swapped in tests.
var newTicketNumber = func() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

type TicketStore struct {
	db  *sql.DB
	pub Publisher
}

func NewTicketStore(db *sql.DB, pub Publisher) *TicketStore {
	return &TicketStore{db: db, pub: orNop(pub)}
}

// TicketColumns are the columns ticket lists may be filtered on.
var TicketColumns = []string{"user_id", "status", "priority", "category", "assigned_to", "subject", "description", "ticket_number", "created_at"}

const ticketSelect = `id, ticket_number, user_id, subject, description, category, priority, status,
	assigned_to, resolution_notes, resolved_at, metadata, created_at, updated_at`

func (s *TicketStore) List(ctx context.Context, f *Filter, p Page) ([]models.SupportTicket, int, error) {
	list, args, count, countArgs, err := selectPage(ticketSelect, "support_tickets", f, p)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, count, countArgs...).Scan(&total); err != nil {
		return nil, 0, backendErr("Failed to load tickets", err)
	}

	rows, err := s.db.QueryContext(ctx, list, args...)
	if err != nil {
		return nil, 0, backendErr("Failed to load tickets", err)
	}
	defer rows.Close()

	out := []models.SupportTicket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, backendErr("Failed to load tickets", err)
	}
	return out, total, nil
}

func (s *TicketStore) Get(ctx context.Context, id int64) (models.SupportTicket, error) {
	return getTicket(ctx, s.db, id, false)
}

// Create opens a ticket for userID.
func (s *TicketStore) Create(ctx context.Context, userID int64, in NewTicket) (models.SupportTicket, error) {
	in, err := in.validate()
	if err != nil {
		return models.SupportTicket{}, err
	}
	meta, err := encodeJSON("metadata", in.Metadata)
	if err != nil {
		return models.SupportTicket{}, err
	}

	ts := now()
	t := models.SupportTicket{
		TicketNumber: newTicketNumber(),
		UserID:       userID,
		Subject:      in.Subject,
		Description:  in.Description,
		Category:     in.Category,
		Priority:     in.Priority,
		Status:       models.TicketOpen,
		Metadata:     in.Metadata,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	var entry models.ActivityLog
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1. --- Insert, drawing a new number on collision ---
		var (
			res sql.Result
			err error
		)
		for attempt := 1; ; attempt++ {
			res, err = tx.ExecContext(ctx, `
				INSERT INTO support_tickets
				(ticket_number, user_id, subject, description, category, priority, status, metadata, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.TicketNumber, t.UserID, t.Subject, t.Description, t.Category, t.Priority, t.Status, meta, t.CreatedAt, t.UpdatedAt)
			if !isDuplicate(err) || attempt == ticketNumberAttempts {
				break
			}
			t.TicketNumber = newTicketNumber()
		}
		if err != nil {
			return err
		}
		if t.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		// 2. --- Audit ---
		entry, err = insertActivity(ctx, tx, ActivityEntry{
			ActorID:  userID,
			Action:   models.ActionTicketCreated,
			Target:   models.TargetTicket,
			TargetID: t.ID,
			Details:  map[string]any{"ticketNumber": t.TicketNumber, "category": string(t.Category)},
		})
		return err
	})
	if err != nil {
		return models.SupportTicket{}, txErr("Failed to create ticket", err)
	}

	s.pub.Publish(realtime.Event{Table: realtime.TableTickets, Type: realtime.EventInsert, UserIDs: []int64{userID}, Record: t})
	s.pub.Publish(activityEvent(entry))
	return t, nil
}

// UpdateStatus moves a ticket to status. Moving into resolved or closed stamps
// resolved_at and stores the resolution notes; moving back out clears
// resolved_at.
func (s *TicketStore) UpdateStatus(ctx context.Context, actorID, id int64, status models.TicketStatus, notes *string) (models.SupportTicket, error) {
	if !status.Valid() {
		return models.SupportTicket{}, apperr.Validationf("Unknown ticket status %q", status)
	}

	var (
		t     models.SupportTicket
		entry models.ActivityLog
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1. --- Lock the ticket ---
		current, err := getTicket(ctx, tx, id, true)
		if err != nil {
			return err
		}
		from := current.Status

		// 2. --- Apply the change ---
		ts := now()
		if status.Resolves() {
			_, err = tx.ExecContext(ctx, `
				UPDATE support_tickets
				SET status = ?, resolved_at = ?, resolution_notes = COALESCE(?, resolution_notes), updated_at = ?
				WHERE id = ?`,
				status, ts, notes, ts, id)
		} else {
			_, err = tx.ExecContext(ctx, `
				UPDATE support_tickets
				SET status = ?, resolved_at = NULL, updated_at = ?
				WHERE id = ?`,
				status, ts, id)
		}
		if err != nil {
			return fmt.Errorf("update ticket status: %w", err)
		}

		// 3. --- Audit ---
		details := map[string]any{"from": string(from), "to": string(status)}
		if notes != nil {
			details["notes"] = *notes
		}
		entry, err = insertActivity(ctx, tx, ActivityEntry{
			ActorID:  actorID,
			Action:   models.ActionTicketStatusChanged,
			Target:   models.TargetTicket,
			TargetID: id,
			Details:  details,
		})
		if err != nil {
			return err
		}

		t, err = getTicket(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return models.SupportTicket{}, txErr("Failed to update ticket", err)
	}

	s.pub.Publish(realtime.Event{Table: realtime.TableTickets, Type: realtime.EventUpdate, UserIDs: []int64{t.UserID}, Record: t})
	s.pub.Publish(activityEvent(entry))
	return t, nil
}

// Assign hands the ticket to an active admin.
func (s *TicketStore) Assign(ctx context.Context, actorID, id, assigneeID int64) (models.SupportTicket, error) {
	var (
		t     models.SupportTicket
		entry models.ActivityLog
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := getTicket(ctx, tx, id, true); err != nil {
			return err
		}

		var role models.Role
		var active bool
		err := tx.QueryRowContext(ctx, "SELECT role, is_active FROM users WHERE id = ?", assigneeID).Scan(&role, &active)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Assignee not found")
		}
		if err != nil {
			return err
		}
		if role != models.RoleAdmin || !active {
			return apperr.Validation("Tickets can only be assigned to active admins")
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE support_tickets SET assigned_to = ?, updated_at = ? WHERE id = ?",
			assigneeID, now(), id); err != nil {
			return err
		}

		entry, err = insertActivity(ctx, tx, ActivityEntry{
			ActorID:  actorID,
			Action:   models.ActionTicketAssigned,
			Target:   models.TargetTicket,
			TargetID: id,
			Details:  map[string]any{"assignedTo": assigneeID},
		})
		if err != nil {
			return err
		}

		t, err = getTicket(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return models.SupportTicket{}, txErr("Failed to assign ticket", err)
	}

	s.pub.Publish(realtime.Event{Table: realtime.TableTickets, Type: realtime.EventUpdate, UserIDs: []int64{t.UserID}, Record: t})
	s.pub.Publish(activityEvent(entry))
	return t, nil
}

func (s *TicketStore) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM support_tickets WHERE status IN (?, ?, ?)",
		models.TicketOpen, models.TicketInProgress, models.TicketWaitingCustomer).Scan(&n)
	if err != nil {
		return 0, backendErr("Failed to count tickets", err)
	}
	return n, nil
}

func getTicket(ctx context.Context, q database.Querier, id int64, lock bool) (models.SupportTicket, error) {
	query := "SELECT " + ticketSelect + " FROM support_tickets WHERE id = ?"
	if lock {
		query += " FOR UPDATE"
	}
	t, err := scanTicket(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return t, apperr.NotFound("Ticket not found")
	}
	return t, err
}

func scanTicket(r interface{ Scan(...any) error }) (models.SupportTicket, error) {
	var (
		t    models.SupportTicket
		meta []byte
	)
	err := r.Scan(&t.ID, &t.TicketNumber, &t.UserID, &t.Subject, &t.Description, &t.Category, &t.Priority, &t.Status,
		&t.AssignedTo, &t.ResolutionNotes, &t.ResolvedAt, &meta, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, err
	}
	if err != nil {
		return t, backendErr("Failed to read ticket", err)
	}
	if t.Metadata, err = decodeJSON("metadata", meta); err != nil {
		return t, err
	}
	return t, nil
}
