// Package storefront serves the public product endpoints read by the theme block.
package storefront

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/storefront-apps/contentsets/internal/cache"
	"gorm.io/gorm"
)

// Theme scripts call these endpoints from any storefront origin.
var corsConfig = cors.Config{
	AllowAllOrigins: true,
	AllowMethods:    []string{http.MethodGet, http.MethodOptions},
	AllowHeaders:    []string{"Content-Type", "ngrok-skip-browser-warning"},
	MaxAge:          12 * time.Hour,
}

// RegisterStorefrontRoutes registers the public product lookups.
func RegisterStorefrontRoutes(r *gin.Engine, db *gorm.DB, store cache.Cache) {
	if r == nil || db == nil {
		return
	}

	api := r.Group("/api")
	api.Use(cors.New(corsConfig))

	productHandler := NewProductHandler(db, cache.NewStorefront(store))
	api.Any("/faqs/product", methodGuard(productHandler.FAQs))
	api.Any("/testimonials/product", methodGuard(productHandler.Testimonials))
}

// methodGuard answers OPTIONS requests that are not CORS preflights and
// rejects everything but GET.
func methodGuard(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet:
			next(c)
		case http.MethodOptions:
			c.Status(http.StatusNoContent)
		default:
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		}
	}
}
