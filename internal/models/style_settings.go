package models

import "time"

// StyleSettings stores the storefront appearance of one content kind for a shop.
type StyleSettings struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`                                             // Primary key.
	Shop      string    `gorm:"type:varchar(255);not null;uniqueIndex:uidx_style_settings_shop_kind"` // Owning shop domain.
	Kind      Kind      `gorm:"type:varchar(32);not null;uniqueIndex:uidx_style_settings_shop_kind"`  // Content kind.
	Style     string    `gorm:"type:varchar(32);not null"`                                            // Layout variant.
	Color     string    `gorm:"type:varchar(16);not null"`                                            // Accent color.
	Radius    int       `gorm:"not null"`                                                             // Corner radius in pixels.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`                                              // Last update timestamp.
}
