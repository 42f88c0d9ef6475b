package domain

import "time"

// Setting keys.
const (
	SettingLegalHold          = "legal_hold"
	SettingValidationStrict   = "validation_strict"
	SettingVersionRetainYears = "version_retain_years"
)

// Setting is a single row of process-wide governance configuration. The
// settings service layers a hot-reloadable cache over this table.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"column:value;not null" json:"value"`
	UpdatedBy string    `gorm:"column:updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }
