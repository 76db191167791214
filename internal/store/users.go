package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/database"
	"github.com/01moynul/taptoeat-golang/internal/models"
)

type UserStore struct {
	db  *sql.DB
	pub Publisher
}

func NewUserStore(db *sql.DB, pub Publisher) *UserStore {
	return &UserStore{db: db, pub: orNop(pub)}
}

// UserColumns are the columns user lists may be filtered on.
var UserColumns = []string{"role", "is_active", "email", "full_name", "created_at"}

const userSelect = `id, role, email, password_hash, full_name, phone_number, is_active, deactivated_at, created_at, updated_at`

func (s *UserStore) List(ctx context.Context, f *Filter, p Page) ([]models.User, int, error) {
	list, args, count, countArgs, err := selectPage(userSelect, "users", f, p)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, count, countArgs...).Scan(&total); err != nil {
		return nil, 0, backendErr("Failed to load users", err)
	}

	rows, err := s.db.QueryContext(ctx, list, args...)
	if err != nil {
		return nil, 0, backendErr("Failed to load users", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, backendErr("Failed to load users", err)
	}
	return out, total, nil
}

func (s *UserStore) Get(ctx context.Context, id int64) (models.User, error) {
	return getUser(ctx, s.db, "id = ?", id, false)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return getUser(ctx, s.db, "email = ?", strings.ToLower(strings.TrimSpace(email)), false)
}

type NewUser struct {
	Role         models.Role
	Email        string
	FullName     string
	PhoneNumber  string
	PasswordHash string
}

// Create inserts an active user. A taken email is a conflict.
func (s *UserStore) Create(ctx context.Context, in NewUser) (models.User, error) {
	if !in.Role.Valid() {
		return models.User{}, apperr.Validationf("Unknown role %q", in.Role)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, apperr.Validation("A valid email is required")
	}

	ts := now()
	u := models.User{
		Role:         in.Role,
		Email:        email,
		PasswordHash: in.PasswordHash,
		FullName:     strings.TrimSpace(in.FullName),
		PhoneNumber:  in.PhoneNumber,
		IsActive:     true,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (role, email, password_hash, full_name, phone_number, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		u.Role, u.Email, u.PasswordHash, u.FullName, u.PhoneNumber, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return models.User{}, backendErr("Failed to create user", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return models.User{}, backendErr("Failed to create user", err)
	}
	return u, nil
}

// Deactivate soft deletes a user. The row stays; is_active is cleared and
// deactivated_at stamped.
func (s *UserStore) Deactivate(ctx context.Context, actorID, id int64, reason string) (models.User, error) {
	if actorID == id {
		return models.User{}, apperr.Validation("You cannot deactivate your own account")
	}

	var (
		u     models.User
		entry models.ActivityLog
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1. --- Lock the user ---
		current, err := getUser(ctx, tx, "id = ?", id, true)
		if err != nil {
			return err
		}
		if !current.IsActive {
			return apperr.Conflict("User is already deactivated")
		}

		// 2. --- Soft delete ---
		ts := now()
		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET is_active = 0, deactivated_at = ?, updated_at = ? WHERE id = ?",
			ts, ts, id); err != nil {
			return err
		}

		// 3. --- Audit ---
		details := map[string]any{"email": current.Email}
		if reason != "" {
			details["reason"] = reason
		}
		entry, err = insertActivity(ctx, tx, ActivityEntry{
			ActorID:  actorID,
			Action:   models.ActionUserDeactivated,
			Target:   models.TargetUser,
			TargetID: id,
			Details:  details,
		})
		if err != nil {
			return err
		}

		u = current
		u.IsActive = false
		u.DeactivatedAt = &ts
		u.UpdatedAt = ts
		return nil
	})
	if err != nil {
		return models.User{}, txErr("Failed to deactivate user", err)
	}

	s.pub.Publish(activityEvent(entry))
	return u, nil
}

func getUser(ctx context.Context, q database.Querier, where string, arg any, lock bool) (models.User, error) {
	query := "SELECT " + userSelect + " FROM users WHERE " + where
	if lock {
		query += " FOR UPDATE"
	}
	u, err := scanUser(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return u, apperr.NotFound("User not found")
	}
	return u, err
}

func scanUser(r interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := r.Scan(&u.ID, &u.Role, &u.Email, &u.PasswordHash, &u.FullName, &u.PhoneNumber,
		&u.IsActive, &u.DeactivatedAt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, err
	}
	if err != nil {
		return u, backendErr("Failed to read user", err)
	}
	return u, nil
}
