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
)

type VendorStore struct {
	db  *sql.DB
	pub Publisher
}

func NewVendorStore(db *sql.DB, pub Publisher) *VendorStore {
	return &VendorStore{db: db, pub: orNop(pub)}
}

// VendorColumns are the columns vendor lists may be filtered on.
var VendorColumns = []string{"status", "owner_id", "name", "created_at"}

const vendorSelect = `id, owner_id, name, address, status, rejection_reason, created_at, updated_at`

func (s *VendorStore) List(ctx context.Context, f *Filter, p Page) ([]models.Vendor, int, error) {
	list, args, count, countArgs, err := selectPage(vendorSelect, "vendors", f, p)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, count, countArgs...).Scan(&total); err != nil {
		return nil, 0, backendErr("Failed to load vendors", err)
	}

	rows, err := s.db.QueryContext(ctx, list, args...)
	if err != nil {
		return nil, 0, backendErr("Failed to load vendors", err)
	}
	defer rows.Close()

	out := []models.Vendor{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, backendErr("Failed to load vendors", err)
	}
	return out, total, nil
}

func (s *VendorStore) Approve(ctx context.Context, actorID, id int64) (models.Vendor, error) {
	return s.decide(ctx, actorID, id, models.VendorApproved, "")
}

// Reject requires a reason, which is stored and sent to the vendor owner.
func (s *VendorStore) Reject(ctx context.Context, actorID, id int64, reason string) (models.Vendor, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.Vendor{}, apperr.Validation("A rejection reason is required")
	}
	return s.decide(ctx, actorID, id, models.VendorRejected, reason)
}

func (s *VendorStore) decide(ctx context.Context, actorID, id int64, status models.VendorStatus, reason string) (models.Vendor, error) {
	var (
		v     models.Vendor
		note  models.AdminNotification
		entry models.ActivityLog
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1. --- Lock the vendor and check it is still pending ---
		current, err := scanVendor(tx.QueryRowContext(ctx, "SELECT "+vendorSelect+" FROM vendors WHERE id = ? FOR UPDATE", id))
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Vendor not found")
		}
		if err != nil {
			return err
		}
		if current.Status != models.VendorPending {
			return apperr.Conflict("This vendor has already been processed")
		}

		// 2. --- Update status ---
		ts := now()
		var rejection *string
		if reason != "" {
			rejection = &reason
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE vendors SET status = ?, rejection_reason = ?, updated_at = ? WHERE id = ?",
			status, rejection, ts, id); err != nil {
			return err
		}

		// 3. --- Notify the owner ---
		msg := fmt.Sprintf("Your restaurant '%s' has been approved.", current.Name)
		action := models.ActionVendorApproved
		if status == models.VendorRejected {
			msg = fmt.Sprintf("Your restaurant '%s' was rejected. Reason: %s", current.Name, reason)
			action = models.ActionVendorRejected
		}
		owner := current.OwnerID
		note, err = insertNotification(ctx, tx, NewNotification{
			UserID:   &owner,
			Title:    "Vendor application update",
			Message:  msg,
			Type:     models.NotificationVendor,
			Metadata: map[string]any{"vendorId": id, "status": string(status)},
		})
		if err != nil {
			return err
		}

		// 4. --- Audit ---
		details := map[string]any{"name": current.Name}
		if reason != "" {
			details["reason"] = reason
		}
		entry, err = insertActivity(ctx, tx, ActivityEntry{
			ActorID:  actorID,
			Action:   action,
			Target:   models.TargetVendor,
			TargetID: id,
			Details:  details,
		})
		if err != nil {
			return err
		}

		v = current
		v.Status = status
		v.RejectionReason = rejection
		v.UpdatedAt = ts
		return nil
	})
	if err != nil {
		return models.Vendor{}, txErr("Failed to update vendor", err)
	}

	s.pub.Publish(notificationEvent(note))
	s.pub.Publish(activityEvent(entry))
	return v, nil
}

func (s *VendorStore) CountPending(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vendors WHERE status = ?", models.VendorPending).Scan(&n); err != nil {
		return 0, backendErr("Failed to count vendors", err)
	}
	return n, nil
}

func scanVendor(r interface{ Scan(...any) error }) (models.Vendor, error) {
	var v models.Vendor
	err := r.Scan(&v.ID, &v.OwnerID, &v.Name, &v.Address, &v.Status, &v.RejectionReason, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return v, err
	}
	if err != nil {
		return v, backendErr("Failed to read vendor", err)
	}
	return v, nil
}
