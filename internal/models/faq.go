package models

import (
	"strings"
	"time"
)

// FAQFields holds the editable content of an FAQ entry.
type FAQFields struct {
	Question string `gorm:"type:text;not null;default:''"` // Question text.
	Answer   string `gorm:"type:text;not null;default:''"` // Answer text.
}

// Columns returns the column assignments used for in-place updates.
func (f FAQFields) Columns() map[string]any {
	return map[string]any{
		"question": f.Question,
		"answer":   f.Answer,
	}
}

// Blank reports whether every content field is empty.
func (f FAQFields) Blank() bool {
	return strings.TrimSpace(f.Question) == "" && strings.TrimSpace(f.Answer) == ""
}

// Validate checks field-level constraints.
func (f FAQFields) Validate() error { return nil }

// FAQ is one question/answer entry belonging to a titled set.
type FAQ struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement"`                             // Primary key.
	Shop  string `gorm:"type:varchar(255);not null;index:idx_faqs_shop_title"` // Owning shop domain.
	Title string `gorm:"type:varchar(255);not null;index:idx_faqs_shop_title"` // Set name.
	FAQFields

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}

// GetID returns the primary key.
func (f *FAQ) GetID() uint64 { return f.ID }

// GetTitle returns the set name.
func (f *FAQ) GetTitle() string { return f.Title }

// Assign sets ownership and content for a new row.
func (f *FAQ) Assign(shop, title string, fields FAQFields) {
	f.Shop = shop
	f.Title = title
	f.FAQFields = fields
}
