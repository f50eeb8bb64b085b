package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/storefront-apps/contentsets/internal/cache"
	dbutil "github.com/storefront-apps/contentsets/internal/db"
	"gorm.io/gorm"
)

const (
	healthCheckTimeout = 2 * time.Second
	healthCacheKey     = "healthz"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db    *gorm.DB
	cache cache.Cache // Optional; nil skips the cache probe.
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB, c cache.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: c}
}

// Healthz checks database and cache connectivity.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		log.WithError(err).Warn("healthz: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	if h.cache != nil {
		if _, errCache := h.cache.Counter(ctx, healthCacheKey); errCache != nil {
			log.WithError(errCache).Warn("healthz: cache unavailable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "database": dbutil.DialectName(h.db)})
}
