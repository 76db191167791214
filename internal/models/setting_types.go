package models

import "time"

// SystemSetting is the model for the 'system_settings' table.
type SystemSetting struct {
	Key         string    `json:"key" db:"setting_key" yaml:"key"`
	Value       string    `json:"value" db:"setting_value" yaml:"value"`
	ValueType   string    `json:"valueType" db:"value_type" yaml:"type"`
	Category    string    `json:"category" db:"category" yaml:"category"`
	Description string    `json:"description" db:"description" yaml:"description"`
	IsPublic    bool      `json:"isPublic" db:"is_public" yaml:"public"`
	UpdatedBy   *int64    `json:"updatedBy,omitempty" db:"updated_by" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at" yaml:"-"`
}

const SettingMaintenanceMode = "maintenance_mode"
