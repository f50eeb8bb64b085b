package content

import (
	"context"
	"strings"

	"github.com/storefront-apps/contentsets/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReplaceMapping makes productIDs the complete product assignment of a set.
// Blank and repeated ids are dropped; an empty list unassigns every product.
func (s *Service[T, F, P]) ReplaceMapping(ctx context.Context, shop, title string, productIDs []string) error {
	shop, errShop := normalizeShop(shop)
	if errShop != nil {
		return errShop
	}
	title, errTitle := normalizeTitle(title)
	if errTitle != nil {
		return errTitle
	}
	ids := normalizeProductIDs(productIDs)

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errLock := s.lockSet(tx, shop, title); errLock != nil {
			return errLock
		}
		if errDelete := tx.Where("shop = ? AND kind = ? AND set_title = ?", shop, s.kind, title).
			Delete(&models.ProductMapping{}).Error; errDelete != nil {
			return errDelete
		}
		if len(ids) == 0 {
			return nil
		}
		rows := make([]models.ProductMapping, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, models.ProductMapping{
				Shop:      shop,
				Kind:      s.kind,
				SetTitle:  title,
				ProductID: id,
			})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
	return wrapStorage("replace mapping", errTx)
}

// RemoveMapping unassigns one product from a set. A missing row is not an error.
func (s *Service[T, F, P]) RemoveMapping(ctx context.Context, shop, title, productID string) error {
	shop, errShop := normalizeShop(shop)
	if errShop != nil {
		return errShop
	}
	title, errTitle := normalizeTitle(title)
	if errTitle != nil {
		return errTitle
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return invalid("productId", "productId is required")
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errLock := s.lockSet(tx, shop, title); errLock != nil {
			return errLock
		}
		return tx.Where("shop = ? AND kind = ? AND set_title = ? AND product_id = ?", shop, s.kind, title, productID).
			Delete(&models.ProductMapping{}).Error
	})
	return wrapStorage("remove mapping", errTx)
}

func normalizeProductIDs(productIDs []string) []string {
	seen := make(map[string]struct{}, len(productIDs))
	out := make([]string, 0, len(productIDs))
	for _, raw := range productIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
