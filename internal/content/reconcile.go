package content

import (
	"context"
	"fmt"

	dbutil "github.com/storefront-apps/contentsets/internal/db"
	"github.com/storefront-apps/contentsets/internal/models"
	"gorm.io/gorm"
)

// ReconcileSet applies an edited set in one transaction.
//
// Ids in deletedIDs are removed first. Each desired item then either updates
// the persisted record it references (moving it under title) or, for drafts,
// inserts a new record. Draft rows with no content are skipped. Titles left
// without records lose their product mappings.
func (s *Service[T, F, P]) ReconcileSet(ctx context.Context, shop, title string, desired []DesiredItem[F], deletedIDs []uint64) error {
	shop, errShop := normalizeShop(shop)
	if errShop != nil {
		return errShop
	}
	title, errTitle := normalizeTitle(title)
	if errTitle != nil {
		return errTitle
	}

	items := make([]DesiredItem[F], 0, len(desired))
	for i, item := range desired {
		if item.Ref.IsDraft() && item.Fields.Blank() {
			continue
		}
		if errValidate := item.Fields.Validate(); errValidate != nil {
			return invalid(fmt.Sprintf("items[%d]", i), "%s", errValidate.Error())
		}
		items = append(items, item)
	}
	deleted := uniqueIDs(deletedIDs)

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		touched, errTitles := s.previousTitles(tx, shop, append(persistedIDs(items), deleted...))
		if errTitles != nil {
			return errTitles
		}
		touched[title] = struct{}{}
		titles := sortedKeys(touched)
		if errLock := s.lockSets(tx, shop, titles); errLock != nil {
			return errLock
		}

		if len(deleted) > 0 {
			if errDelete := tx.Where("shop = ? AND id IN ?", shop, deleted).Delete(new(T)).Error; errDelete != nil {
				return errDelete
			}
		}

		for i, item := range items {
			id, persisted := item.Ref.ID()
			if !persisted {
				record := P(new(T))
				record.Assign(shop, title, item.Fields)
				if errCreate := tx.Create(record).Error; errCreate != nil {
					return errCreate
				}
				continue
			}

			columns := item.Fields.Columns()
			columns["title"] = title
			result := tx.Model(new(T)).Where("shop = ? AND id = ?", shop, id).Updates(columns)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return invalid(fmt.Sprintf("items[%d]", i), "item %d does not exist", id)
			}
		}

		if errCollision := s.checkTitleCollision(tx, shop, title); errCollision != nil {
			return errCollision
		}
		return s.removeOrphanMappings(tx, shop, titles)
	})
	return wrapStorage("reconcile set", errTx)
}

// DeleteSet removes every record titled title and all of its product mappings.
func (s *Service[T, F, P]) DeleteSet(ctx context.Context, shop, title string) error {
	shop, errShop := normalizeShop(shop)
	if errShop != nil {
		return errShop
	}
	title, errTitle := normalizeTitle(title)
	if errTitle != nil {
		return errTitle
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errLock := s.lockSet(tx, shop, title); errLock != nil {
			return errLock
		}
		if errDelete := tx.Where("shop = ? AND title = ?", shop, title).Delete(new(T)).Error; errDelete != nil {
			return errDelete
		}
		return tx.Where("shop = ? AND kind = ? AND set_title = ?", shop, s.kind, title).
			Delete(&models.ProductMapping{}).Error
	})
	return wrapStorage("delete set", errTx)
}

// previousTitles returns the current titles of the shop's records among ids.
func (s *Service[T, F, P]) previousTitles(tx *gorm.DB, shop string, ids []uint64) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if len(ids) == 0 {
		return out, nil
	}
	var titles []string
	if errPluck := tx.Model(new(T)).
		Where("shop = ? AND id IN ?", shop, ids).
		Distinct("title").
		Pluck("title", &titles).Error; errPluck != nil {
		return nil, errPluck
	}
	for _, t := range titles {
		out[t] = struct{}{}
	}
	return out, nil
}

// checkTitleCollision rejects a title that differs from another set of the
// shop only by letter case. It runs after the batch is applied, so records
// moved out of a case variant no longer count.
func (s *Service[T, F, P]) checkTitleCollision(tx *gorm.DB, shop, title string) error {
	var titles []string
	if errPluck := tx.Model(new(T)).
		Where("shop = ? AND "+dbutil.CaseInsensitiveEqualExpr("title")+" AND title <> ?", shop, title, title).
		Limit(1).
		Pluck("title", &titles).Error; errPluck != nil {
		return errPluck
	}
	if len(titles) > 0 {
		return invalid("title", "a set named %q already exists", titles[0])
	}
	return nil
}

// removeOrphanMappings deletes mappings of titles that no longer have records.
func (s *Service[T, F, P]) removeOrphanMappings(tx *gorm.DB, shop string, titles []string) error {
	for _, title := range titles {
		var count int64
		if errCount := tx.Model(new(T)).Where("shop = ? AND title = ?", shop, title).Count(&count).Error; errCount != nil {
			return errCount
		}
		if count > 0 {
			continue
		}
		if errDelete := tx.Where("shop = ? AND kind = ? AND set_title = ?", shop, s.kind, title).
			Delete(&models.ProductMapping{}).Error; errDelete != nil {
			return errDelete
		}
	}
	return nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
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

func persistedIDs[F Fields](items []DesiredItem[F]) []uint64 {
	var ids []uint64
	for _, item := range items {
		if id, ok := item.Ref.ID(); ok {
			ids = append(ids, id)
		}
	}
	return uniqueIDs(ids)
}
