package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/storefront-apps/contentsets/internal/cache"
	"github.com/storefront-apps/contentsets/internal/config"
	"github.com/storefront-apps/contentsets/internal/http/api/admin/handlers"
	"github.com/storefront-apps/contentsets/internal/security"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers the embedded admin API and the health check.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, shopifyCfg config.ShopifyConfig, store cache.Cache) {
	if r == nil || db == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(db, store)
	r.GET("/healthz", healthHandler.Healthz)

	api := r.Group("/api")
	if shopifyCfg.SessionTokensEnabled() {
		api.Use(sessionTokenMiddleware(shopifyCfg))
	} else {
		log.Warn("shopify api secret not configured; admin API trusts the shop parameter")
	}

	contentHandler := handlers.NewContentHandler(db, cache.NewStorefront(store))
	api.GET("/faqs", contentHandler.List)
	api.POST("/faqs", contentHandler.Intent)
}

// sessionTokenMiddleware verifies the App Bridge session token and stores
// the shop it was issued for.
func sessionTokenMiddleware(shopifyCfg config.ShopifyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errToken := security.ParseSessionToken(shopifyCfg.APISecret, shopifyCfg.APIKey, token)
		if errToken != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		shop, errShop := claims.ShopDomain()
		if errShop != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(handlers.ShopContextKey, shop)
		c.Next()
	}
}
