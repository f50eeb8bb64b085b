package content

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/storefront-apps/contentsets/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxRadius bounds the corner radius accepted from the theme designer.
const MaxRadius = 64

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Layout variants per kind. The first entry is the default.
var allowedStyles = map[models.Kind][]string{
	models.KindFAQ:         {"accordion", "grid", "minimal", "chat"},
	models.KindTestimonial: {"grid", "list", "social", "minimal"},
}

// DefaultStyle returns the unsaved fallback settings for kind.
func DefaultStyle(kind models.Kind) models.StyleSettings {
	switch kind {
	case models.KindTestimonial:
		return models.StyleSettings{Kind: kind, Style: "grid", Color: "#ffb800", Radius: 12}
	default:
		return models.StyleSettings{Kind: models.KindFAQ, Style: "accordion", Color: "#008060", Radius: 8}
	}
}

// AllowedStyles lists the layout variants of kind.
func AllowedStyles(kind models.Kind) []string {
	return slices.Clone(allowedStyles[kind])
}

// StyleInput is the editable part of StyleSettings.
type StyleInput struct {
	Style  string
	Color  string
	Radius int
}

// StyleStore reads and writes per-shop style settings.
type StyleStore struct {
	db *gorm.DB
}

// NewStyleStore constructs a StyleStore.
func NewStyleStore(db *gorm.DB) *StyleStore {
	return &StyleStore{db: db}
}

// Get returns the saved settings or the kind's default. It never writes.
func (s *StyleStore) Get(ctx context.Context, shop string, kind models.Kind) (models.StyleSettings, error) {
	shop = strings.ToLower(strings.TrimSpace(shop))
	fallback := DefaultStyle(kind)
	fallback.Shop = shop
	if shop == "" {
		return fallback, nil
	}

	var row models.StyleSettings
	errFind := s.db.WithContext(ctx).Where("shop = ? AND kind = ?", shop, kind).Take(&row).Error
	if errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if errFind != nil {
		return models.StyleSettings{}, wrapStorage("get style", errFind)
	}
	return row, nil
}

// Save validates and upserts the settings of (shop, kind).
func (s *StyleStore) Save(ctx context.Context, shop string, kind models.Kind, in StyleInput) (models.StyleSettings, error) {
	shop, errShop := normalizeShop(shop)
	if errShop != nil {
		return models.StyleSettings{}, errShop
	}
	if !kind.Valid() {
		return models.StyleSettings{}, invalid("kind", "unknown content kind %q", kind)
	}
	normalized, errValidate := validateStyle(kind, in)
	if errValidate != nil {
		return models.StyleSettings{}, errValidate
	}

	row := models.StyleSettings{
		Shop:      shop,
		Kind:      kind,
		Style:     normalized.Style,
		Color:     normalized.Color,
		Radius:    normalized.Radius,
		UpdatedAt: time.Now().UTC(),
	}
	if errUpsert := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"style", "color", "radius", "updated_at"}),
	}).Create(&row).Error; errUpsert != nil {
		return models.StyleSettings{}, wrapStorage("save style", errUpsert)
	}
	return s.Get(ctx, shop, kind)
}

func validateStyle(kind models.Kind, in StyleInput) (StyleInput, error) {
	out := StyleInput{
		Style:  strings.ToLower(strings.TrimSpace(in.Style)),
		Color:  strings.ToLower(strings.TrimSpace(in.Color)),
		Radius: in.Radius,
	}
	if styles := AllowedStyles(kind); !slices.Contains(styles, out.Style) {
		return StyleInput{}, invalid("style", "style must be one of %s", strings.Join(styles, ", "))
	}
	if !colorPattern.MatchString(out.Color) {
		return StyleInput{}, invalid("color", "color must be a hex value like #008060")
	}
	if out.Radius < 0 || out.Radius > MaxRadius {
		return StyleInput{}, invalid("radius", "radius must be between 0 and %d", MaxRadius)
	}
	return out, nil
}
