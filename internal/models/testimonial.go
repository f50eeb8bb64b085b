package models

import (
	"fmt"
	"strings"
	"time"
)

// Testimonial rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// TestimonialFields holds the editable content of a testimonial.
type TestimonialFields struct {
	Author   string `gorm:"type:varchar(255);not null;default:''"` // Reviewer name.
	Subtitle string `gorm:"type:varchar(255);not null;default:''"` // Reviewer role or location.
	Rating   int    `gorm:"not null;default:5"`                    // Star rating.
	Content  string `gorm:"type:text;not null;default:''"`         // Review body.
}

// Columns returns the column assignments used for in-place updates.
func (f TestimonialFields) Columns() map[string]any {
	return map[string]any{
		"author":   f.Author,
		"subtitle": f.Subtitle,
		"rating":   f.Rating,
		"content":  f.Content,
	}
}

// Blank reports whether every text field is empty.
func (f TestimonialFields) Blank() bool {
	return strings.TrimSpace(f.Author) == "" &&
		strings.TrimSpace(f.Subtitle) == "" &&
		strings.TrimSpace(f.Content) == ""
}

// Validate checks field-level constraints.
func (f TestimonialFields) Validate() error {
	if f.Rating < MinRating || f.Rating > MaxRating {
		return fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}

// Testimonial is one customer review belonging to a titled set.
type Testimonial struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement"`                                     // Primary key.
	Shop  string `gorm:"type:varchar(255);not null;index:idx_testimonials_shop_title"` // Owning shop domain.
	Title string `gorm:"type:varchar(255);not null;index:idx_testimonials_shop_title"` // Set name.
	TestimonialFields

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`       // Last update timestamp.
}

// GetID returns the primary key.
func (t *Testimonial) GetID() uint64 { return t.ID }

// GetTitle returns the set name.
func (t *Testimonial) GetTitle() string { return t.Title }

// Assign sets ownership and content for a new row.
func (t *Testimonial) Assign(shop, title string, fields TestimonialFields) {
	t.Shop = shop
	t.Title = title
	t.TestimonialFields = fields
}
