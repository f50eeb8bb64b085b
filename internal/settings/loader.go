package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/storefront-apps/contentsets/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RefreshDBConfigSnapshot reloads all settings from the database and updates the in-memory snapshot.
//
// Call it once at startup; readers see defaults until the first refresh completes.
func RefreshDBConfigSnapshot(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("settings: nil db")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var rows []models.Setting
	if errFind := db.WithContext(ctx).
		Select("key", "value", "updated_at").
		Order("key ASC").
		Find(&rows).Error; errFind != nil {
		return fmt.Errorf("settings: load: %w", errFind)
	}

	values := make(map[string]json.RawMessage, len(rows))
	maxUpdatedAt := time.Time{}
	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		if key == "" {
			continue
		}
		values[key] = json.RawMessage(row.Value)
		if rowUpdatedAt := row.UpdatedAt.UTC(); rowUpdatedAt.After(maxUpdatedAt) {
			maxUpdatedAt = rowUpdatedAt
		}
	}

	StoreDBConfig(maxUpdatedAt, values)
	return nil
}

// Put upserts a setting and refreshes the snapshot.
func Put(ctx context.Context, db *gorm.DB, key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("settings: empty key")
	}
	raw, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("settings: encode %s: %w", key, errMarshal)
	}
	row := models.Setting{Key: key, Value: datatypes.JSON(raw), UpdatedAt: time.Now().UTC()}
	if errUpsert := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; errUpsert != nil {
		return fmt.Errorf("settings: put %s: %w", key, errUpsert)
	}
	return RefreshDBConfigSnapshot(ctx, db)
}

// Refresher periodically reloads the DB config snapshot.
type Refresher struct {
	db       *gorm.DB
	interval time.Duration
}

// NewRefresher constructs a Refresher; a non-positive interval selects the default.
func NewRefresher(db *gorm.DB, interval time.Duration) *Refresher {
	if db == nil {
		return nil
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{db: db, interval: interval}
}

// Start launches the refresh loop in a background goroutine.
func (r *Refresher) Start(ctx context.Context) {
	if r == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go r.run(ctx)
	log.Infof("settings refresher started (interval=%s)", r.interval)
}

func (r *Refresher) run(ctx context.Context) {
	for {
		timer := time.NewTimer(r.interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}
		if _, errRefresh := r.refresh(ctx); errRefresh != nil && ctx.Err() == nil {
			log.WithError(errRefresh).Warn("settings refresher: refresh failed")
		}
	}
}

// refresh reloads the snapshot and reports whether any setting changed.
func (r *Refresher) refresh(ctx context.Context) (bool, error) {
	before := DBConfigUpdatedAt()
	if errRefresh := RefreshDBConfigSnapshot(ctx, r.db); errRefresh != nil {
		return false, errRefresh
	}
	after := DBConfigUpdatedAt()
	if after.Equal(before) {
		return false, nil
	}
	log.Infof("settings refresher: settings changed (updated_at=%s)", after.Format(time.RFC3339))
	return true, nil
}
