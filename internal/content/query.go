package content

import (
	"context"
	"strings"

	"github.com/storefront-apps/contentsets/internal/models"
)

// Snapshot is the complete state of one content kind for a shop.
type Snapshot[T any] struct {
	Items    []T                     // Records in creation order.
	Sets     []Set[T]                // Records grouped by title.
	Mappings []models.ProductMapping // Product assignments of the kind.
	Settings models.StyleSettings    // Saved or default style.
}

// Lookup is the content assigned to one product.
type Lookup[T any] struct {
	Found    bool     // False when the product has no assignment.
	Shop     string   // Shop owning the assignment.
	Titles   []string // Distinct assigned set titles.
	Items    []T      // Records of the assigned sets in creation order.
	Sets     []Set[T] // Items grouped by title.
	Settings models.StyleSettings
}

// ListAll reads every set of the shop with its mappings and style settings.
func (s *Service[T, F, P]) ListAll(ctx context.Context, shop string) (*Snapshot[T], error) {
	shop, errShop := normalizeShop(shop)
	if errShop != nil {
		return nil, errShop
	}

	var items []T
	if errFind := s.db.WithContext(ctx).
		Where("shop = ?", shop).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error; errFind != nil {
		return nil, wrapStorage("list records", errFind)
	}

	var mappings []models.ProductMapping
	if errFind := s.db.WithContext(ctx).
		Where("shop = ? AND kind = ?", shop, s.kind).
		Order("created_at ASC").
		Order("id ASC").
		Find(&mappings).Error; errFind != nil {
		return nil, wrapStorage("list mappings", errFind)
	}

	style, errStyle := s.styles.Get(ctx, shop, s.kind)
	if errStyle != nil {
		return nil, errStyle
	}

	return &Snapshot[T]{
		Items:    items,
		Sets:     groupByTitle[T, F, P](items),
		Mappings: mappings,
		Settings: style,
	}, nil
}

// LookupByProduct returns the records of every set assigned to productID.
//
// When shop is empty the shop of the first matching assignment is used.
// A product without assignments yields an empty Lookup, not an error.
func (s *Service[T, F, P]) LookupByProduct(ctx context.Context, shop, productID string) (*Lookup[T], error) {
	productID = strings.TrimSpace(productID)
	shop = strings.ToLower(strings.TrimSpace(shop))
	if productID == "" {
		return &Lookup[T]{}, nil
	}

	q := s.db.WithContext(ctx).
		Where("kind = ? AND product_id = ?", s.kind, productID)
	if shop != "" {
		q = q.Where("shop = ?", shop)
	}
	var mappings []models.ProductMapping
	if errFind := q.Order("created_at ASC").Order("id ASC").Find(&mappings).Error; errFind != nil {
		return nil, wrapStorage("lookup mappings", errFind)
	}
	if len(mappings) == 0 {
		return &Lookup[T]{}, nil
	}
	if shop == "" {
		shop = mappings[0].Shop
	}

	seen := make(map[string]struct{}, len(mappings))
	titles := make([]string, 0, len(mappings))
	for _, m := range mappings {
		if m.Shop != shop {
			continue
		}
		if _, ok := seen[m.SetTitle]; ok {
			continue
		}
		seen[m.SetTitle] = struct{}{}
		titles = append(titles, m.SetTitle)
	}

	var items []T
	if errFind := s.db.WithContext(ctx).
		Where("shop = ? AND title IN ?", shop, titles).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error; errFind != nil {
		return nil, wrapStorage("lookup records", errFind)
	}

	style, errStyle := s.styles.Get(ctx, shop, s.kind)
	if errStyle != nil {
		return nil, errStyle
	}

	return &Lookup[T]{
		Found:    true,
		Shop:     shop,
		Titles:   titles,
		Items:    items,
		Sets:     groupByTitle[T, F, P](items),
		Settings: style,
	}, nil
}
