package db

import (
	"fmt"

	"github.com/storefront-apps/contentsets/internal/models"
	"gorm.io/gorm"
)

// Models lists every table managed by the service.
func Models() []any {
	return []any{
		&models.FAQ{},
		&models.Testimonial{},
		&models.ProductMapping{},
		&models.StyleSettings{},
		&models.Setting{},
	}
}

// Migrate creates or updates the schema.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(Models()...); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}
	return nil
}
