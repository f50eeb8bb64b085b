package models

import "time"

// ProductMapping assigns a content set, referenced by title, to a product.
type ProductMapping struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`                                                       // Primary key.
	Shop      string    `gorm:"type:varchar(255);not null;uniqueIndex:uidx_product_mappings_set_product"`       // Owning shop domain.
	Kind      Kind      `gorm:"type:varchar(32);not null;uniqueIndex:uidx_product_mappings_set_product"`        // Content kind of the set.
	SetTitle  string    `gorm:"type:varchar(255);not null;uniqueIndex:uidx_product_mappings_set_product"`       // Referenced set title.
	ProductID string    `gorm:"type:varchar(255);not null;uniqueIndex:uidx_product_mappings_set_product;index"` // External product identifier.
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`                                                        // Creation timestamp.
}
