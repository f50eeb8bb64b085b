// Package render converts content records into the JSON rows shared by the
// admin and storefront APIs.
package render

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront-apps/contentsets/internal/content"
	"github.com/storefront-apps/contentsets/internal/models"
)

// Title keys used by mapping rows of each kind.
const (
	FAQTitleKey         = "faqTitle"
	TestimonialTitleKey = "testiTitle"
)

// FAQRow renders one FAQ.
func FAQRow(row *models.FAQ) gin.H {
	if row == nil {
		return gin.H{}
	}
	return gin.H{
		"id":        row.ID,
		"shop":      row.Shop,
		"title":     row.Title,
		"question":  row.Question,
		"answer":    row.Answer,
		"createdAt": row.CreatedAt,
		"updatedAt": row.UpdatedAt,
	}
}

// TestimonialRow renders one testimonial.
func TestimonialRow(row *models.Testimonial) gin.H {
	if row == nil {
		return gin.H{}
	}
	return gin.H{
		"id":        row.ID,
		"shop":      row.Shop,
		"title":     row.Title,
		"author":    row.Author,
		"subtitle":  row.Subtitle,
		"rating":    row.Rating,
		"content":   row.Content,
		"createdAt": row.CreatedAt,
		"updatedAt": row.UpdatedAt,
	}
}

// Rows renders items in order.
func Rows[T any](items []T, row func(*T) gin.H) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, row(&items[i]))
	}
	return out
}

// Sets renders grouped records as [{title, items}].
func Sets[T any](sets []content.Set[T], row func(*T) gin.H) []gin.H {
	out := make([]gin.H, 0, len(sets))
	for _, set := range sets {
		out = append(out, gin.H{
			"title": set.Title,
			"items": Rows(set.Items, row),
		})
	}
	return out
}

// MappingRow renders a product mapping with the kind-specific title key.
func MappingRow(row *models.ProductMapping) gin.H {
	if row == nil {
		return gin.H{}
	}
	titleKey := FAQTitleKey
	if row.Kind == models.KindTestimonial {
		titleKey = TestimonialTitleKey
	}
	return gin.H{
		"id":        row.ID,
		"shop":      row.Shop,
		titleKey:    row.SetTitle,
		"productId": row.ProductID,
		"createdAt": row.CreatedAt,
	}
}

// StyleConfig renders the appearance settings.
func StyleConfig(style models.StyleSettings) gin.H {
	return gin.H{
		"style":  style.Style,
		"color":  style.Color,
		"radius": style.Radius,
	}
}
