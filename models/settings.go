package models

import (
	"time"

	"gorm.io/datatypes"
)

// SettingKeyAppearance is the fixed key under which a user's appearance
// preferences are stored as an opaque JSON blob.
const SettingKeyAppearance = "appearance"

// Setting stores a per-user settings blob. The server never interprets the
// blob's contents; clients read and replace it whole.
type Setting struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	UserID    string         `gorm:"size:36;not null;uniqueIndex:idx_setting_user_key" json:"user_id"`
	Key       string         `gorm:"not null;uniqueIndex:idx_setting_user_key" json:"key"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}
