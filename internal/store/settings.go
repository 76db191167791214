package store

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/database"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

//go:embed default_settings.yaml
var defaultSettingsYAML []byte

// SettingKey normalizes a key to lower snake case ("Maintenance Mode" becomes
// "maintenance_mode").
func SettingKey(s string) string {
	return strings.ReplaceAll(slug.Make(s), "-", "_")
}

// DefaultSettings parses the embedded defaults.
func DefaultSettings() ([]models.SystemSetting, error) {
	return parseSettings(defaultSettingsYAML)
}

func parseSettings(raw []byte) ([]models.SystemSetting, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var out []models.SystemSetting
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	for i := range out {
		out[i].Key = SettingKey(out[i].Key)
		if out[i].ValueType == "" {
			out[i].ValueType = "string"
		}
		if out[i].Category == "" {
			out[i].Category = "general"
		}
		if err := checkSettingValue(out[i].ValueType, out[i].Value); err != nil {
			return nil, fmt.Errorf("setting %s: %w", out[i].Key, err)
		}
	}
	return out, nil
}

// checkSettingValue enforces the declared type of a setting.
func checkSettingValue(valueType, value string) error {
	switch valueType {
	case "bool":
		if value != "true" && value != "false" {
			return apperr.Validation("Value must be true or false")
		}
	case "number":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return apperr.Validation("Value must be a number")
		}
	case "json":
		if !json.Valid([]byte(value)) {
			return apperr.Validation("Value must be valid JSON")
		}
	case "string":
	default:
		return apperr.Validationf("Unknown value type %q", valueType)
	}
	return nil
}

type SettingStore struct {
	db *sql.DB
}

func NewSettingStore(db *sql.DB) *SettingStore {
	return &SettingStore{db: db}
}

const settingSelect = `setting_key, setting_value, value_type, category, description, is_public, updated_by, updated_at`

// Seed inserts the default settings that are not present yet and returns
// how many were added.
func (s *SettingStore) Seed(ctx context.Context, defaults []models.SystemSetting) (int64, error) {
	var added int64
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		ts := now()
		for _, d := range defaults {
			res, err := tx.ExecContext(ctx, `
				INSERT IGNORE INTO system_settings
				(setting_key, setting_value, value_type, category, description, is_public, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				d.Key, d.Value, d.ValueType, d.Category, d.Description, boolToInt(d.IsPublic), ts)
			if err != nil {
				return fmt.Errorf("seed %s: %w", d.Key, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			added += n
		}
		return nil
	})
	if err != nil {
		return 0, txErr("Failed to seed settings", err)
	}
	return added, nil
}

// List returns settings ordered by category and key. An empty category means
// all of them; publicOnly hides internal settings.
func (s *SettingStore) List(ctx context.Context, category string, publicOnly bool) ([]models.SystemSetting, error) {
	query := "SELECT " + settingSelect + " FROM system_settings WHERE 1 = 1"
	var args []any
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	if publicOnly {
		query += " AND is_public = 1"
	}
	query += " ORDER BY category, setting_key"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, backendErr("Failed to load settings", err)
	}
	defer rows.Close()

	out := []models.SystemSetting{}
	for rows.Next() {
		st, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, backendErr("Failed to load settings", err)
	}
	return out, nil
}

func (s *SettingStore) Get(ctx context.Context, key string) (models.SystemSetting, error) {
	return getSetting(ctx, s.db, SettingKey(key), false)
}

// Update changes a setting's value after checking it against the declared
// type, stamping updated_at and updated_by.
func (s *SettingStore) Update(ctx context.Context, actorID int64, key, value string) (models.SystemSetting, error) {
	key = SettingKey(key)

	var st models.SystemSetting
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// 1. --- Lock the setting ---
		current, err := getSetting(ctx, tx, key, true)
		if err != nil {
			return err
		}

		// 2. --- Validate against its type ---
		if err := checkSettingValue(current.ValueType, value); err != nil {
			return err
		}

		// 3. --- Update ---
		ts := now()
		if _, err := tx.ExecContext(ctx,
			"UPDATE system_settings SET setting_value = ?, updated_by = ?, updated_at = ? WHERE setting_key = ?",
			value, actorID, ts, key); err != nil {
			return err
		}

		// 4. --- Audit ---
		if _, err := insertActivity(ctx, tx, ActivityEntry{
			ActorID:  actorID,
			Action:   models.ActionSettingUpdated,
			Target:   models.TargetSetting,
			TargetID: key,
			Details:  map[string]any{"from": current.Value, "to": value},
		}); err != nil {
			return err
		}

		st = current
		st.Value = value
		st.UpdatedBy = &actorID
		st.UpdatedAt = ts
		return nil
	})
	if err != nil {
		return models.SystemSetting{}, txErr("Failed to update setting", err)
	}
	return st, nil
}

// MaintenanceMode reports whether the maintenance switch is on. A missing
// setting counts as off.
func (s *SettingStore) MaintenanceMode(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT setting_value FROM system_settings WHERE setting_key = ?", models.SettingMaintenanceMode).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, backendErr("Failed to read maintenance mode", err)
	}
	return value == "true", nil
}

func getSetting(ctx context.Context, q database.Querier, key string, lock bool) (models.SystemSetting, error) {
	query := "SELECT " + settingSelect + " FROM system_settings WHERE setting_key = ?"
	if lock {
		query += " FOR UPDATE"
	}
	st, err := scanSetting(q.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return st, apperr.NotFound("Setting not found")
	}
	return st, err
}

func scanSetting(r interface{ Scan(...any) error }) (models.SystemSetting, error) {
	var st models.SystemSetting
	err := r.Scan(&st.Key, &st.Value, &st.ValueType, &st.Category, &st.Description, &st.IsPublic, &st.UpdatedBy, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return st, err
	}
	if err != nil {
		return st, backendErr("Failed to read setting", err)
	}
	return st, nil
}
