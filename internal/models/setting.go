package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting stores an application-wide key/value configuration entry.
type Setting struct {
	Key       string         `gorm:"type:varchar(255);primaryKey"`                      // Configuration key.
	Value     datatypes.JSON `gorm:"column:value"`                                      // JSON-encoded value.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime;default:CURRENT_TIMESTAMP"` // Last update timestamp.
}
