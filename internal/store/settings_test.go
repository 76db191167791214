package store

import (
	"context"
	"testing"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settingCols = []string{"setting_key", "setting_value", "value_type", "category", "description", "is_public", "updated_by", "updated_at"}

func TestDefaultSettings(t *testing.T) {
	defaults, err := DefaultSettings()
	require.NoError(t, err)

	byKey := map[string]models.SystemSetting{}
	for _, s := range defaults {
		assert.Equal(t, SettingKey(s.Key), s.Key)
		byKey[s.Key] = s
	}
	require.Contains(t, byKey, models.SettingMaintenanceMode)
	assert.Equal(t, "false", byKey[models.SettingMaintenanceMode].Value)
	assert.Equal(t, "bool", byKey[models.SettingMaintenanceMode].ValueType)
}

func TestParseSettings(t *testing.T) {
	got, err := parseSettings([]byte(`
- key: Free Delivery Above
  value: "200"
  type: number
`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "free_delivery_above", got[0].Key)
	assert.Equal(t, "general", got[0].Category)

	_, err = parseSettings([]byte("- key: flag\n  value: maybe\n  type: bool\n"))
	assert.Error(t, err)

	_, err = parseSettings([]byte("- key: flag\n  colour: red\n"))
	assert.Error(t, err)
}

func TestSettingKey(t *testing.T) {
	assert.Equal(t, "maintenance_mode", SettingKey("Maintenance Mode"))
	assert.Equal(t, "maintenance_mode", SettingKey("maintenance-mode"))
	assert.Equal(t, "maintenance_mode", SettingKey("maintenance_mode"))
}

func TestCheckSettingValue(t *testing.T) {
	tests := []struct {
		typ, value string
		ok         bool
	}{
		{"bool", "true", true},
		{"bool", "yes", false},
		{"number", "0.06", true},
		{"number", "six", false},
		{"json", `{"a": 1}`, true},
		{"json", `{a: 1}`, false},
		{"string", "anything", true},
		{"blob", "x", false},
	}
	for _, tt := range tests {
		err := checkSettingValue(tt.typ, tt.value)
		assert.Equal(t, tt.ok, err == nil, "%s %q", tt.typ, tt.value)
	}
}

func TestUpdateSetting(t *testing.T) {
	db, mock := newMock(t)
	s := NewSettingStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM system_settings WHERE setting_key = \? FOR UPDATE`).
		WithArgs("maintenance_mode").
		WillReturnRows(sqlmock.NewRows(settingCols).AddRow("maintenance_mode", "false", "bool", "system", "", true, nil, testNow))
	mock.ExpectExec("UPDATE system_settings SET setting_value = ?").
		WithArgs("true", int64(1), testNow, "maintenance_mode").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activity_logs").
		WithArgs(int64(1), "setting_updated", "setting", "maintenance_mode", `{"from":"false","to":"true"}`, "", testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	st, err := s.Update(context.Background(), 1, "Maintenance Mode", "true")
	require.NoError(t, err)
	assert.Equal(t, "true", st.Value)
	require.NotNil(t, st.UpdatedBy)
	assert.Equal(t, int64(1), *st.UpdatedBy)
}

func TestUpdateSettingRejectsWrongType(t *testing.T) {
	db, mock := newMock(t)
	s := NewSettingStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(settingCols).AddRow("tax_rate", "0.06", "number", "pricing", "", true, nil, testNow))
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), 1, "tax_rate", "six percent")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSeedSettings(t *testing.T) {
	db, mock := newMock(t)
	s := NewSettingStore(db)
	defaults := []models.SystemSetting{
		{Key: "maintenance_mode", Value: "false", ValueType: "bool", Category: "system", IsPublic: true},
		{Key: "tax_rate", Value: "0.06", ValueType: "number", Category: "pricing"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT IGNORE INTO system_settings").
		WithArgs("maintenance_mode", "false", "bool", "system", "", 1, testNow).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT IGNORE INTO system_settings").
		WithArgs("tax_rate", "0.06", "number", "pricing", "", 0, testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	added, err := s.Seed(context.Background(), defaults)
	require.NoError(t, err)
	assert.Equal(t, int64(1), added)
}

func TestMaintenanceMode(t *testing.T) {
	db, mock := newMock(t)
	s := NewSettingStore(db)

	mock.ExpectQuery("SELECT setting_value FROM system_settings").
		WithArgs("maintenance_mode").
		WillReturnRows(sqlmock.NewRows([]string{"setting_value"}).AddRow("true"))
	on, err := s.MaintenanceMode(context.Background())
	require.NoError(t, err)
	assert.True(t, on)

	mock.ExpectQuery("SELECT setting_value FROM system_settings").
		WillReturnRows(sqlmock.NewRows([]string{"setting_value"}))
	on, err = s.MaintenanceMode(context.Background())
	require.NoError(t, err)
	assert.False(t, on)
}
