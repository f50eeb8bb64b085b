package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/storefront-apps/contentsets/internal/cache"
	"github.com/storefront-apps/contentsets/internal/content"
	"github.com/storefront-apps/contentsets/internal/http/api/render"
	"github.com/storefront-apps/contentsets/internal/logging"
	"github.com/storefront-apps/contentsets/internal/models"
	"github.com/storefront-apps/contentsets/internal/settings"
	"gorm.io/gorm"
)

const jsonContentType = "application/json; charset=utf-8"

// ProductHandler returns the content assigned to a storefront product.
type ProductHandler struct {
	faqs         *content.FAQService
	testimonials *content.TestimonialService
	storefront   *cache.Storefront
}

// NewProductHandler constructs a ProductHandler over db.
func NewProductHandler(db *gorm.DB, storefront *cache.Storefront) *ProductHandler {
	styles := content.NewStyleStore(db)
	return &ProductHandler{
		faqs:         content.NewFAQService(db, styles),
		testimonials: content.NewTestimonialService(db, styles),
		storefront:   storefront,
	}
}

// FAQs responds with {faqs, config} or {} when nothing is assigned.
func (h *ProductHandler) FAQs(c *gin.Context) {
	h.serve(c, models.KindFAQ, func(ctx context.Context, shop, productID string) (gin.H, error) {
		lookup, err := h.faqs.LookupByProduct(ctx, shop, productID)
		if err != nil || !lookup.Found {
			return gin.H{}, err
		}
		return gin.H{
			"faqs":   render.Rows(lookup.Items, render.FAQRow),
			"config": render.StyleConfig(lookup.Settings),
		}, nil
	})
}

// Testimonials responds with {testimonials, config} or {} when nothing is assigned.
func (h *ProductHandler) Testimonials(c *gin.Context) {
	h.serve(c, models.KindTestimonial, func(ctx context.Context, shop, productID string) (gin.H, error) {
		lookup, err := h.testimonials.LookupByProduct(ctx, shop, productID)
		if err != nil || !lookup.Found {
			return gin.H{}, err
		}
		return gin.H{
			"testimonials": render.Rows(lookup.Items, render.TestimonialRow),
			"config":       render.StyleConfig(lookup.Settings),
		}, nil
	})
}

type lookupFunc func(ctx context.Context, shop, productID string) (gin.H, error)

// serve runs lookup through the response cache. Lookups without a shop are
// not cached since their owner is only known after the query.
func (h *ProductHandler) serve(c *gin.Context, kind models.Kind, lookup lookupFunc) {
	ctx := c.Request.Context()
	productID := strings.TrimSpace(c.Query("productId"))
	shop := strings.ToLower(strings.TrimSpace(c.Query("shop")))
	if productID == "" {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	var cacheKey string
	if shop != "" {
		key, errKey := h.storefront.ResponseKey(ctx, kind.String(), shop, productID)
		if errKey != nil {
			log.WithError(errKey).Warn("storefront cache key unavailable")
		} else {
			cacheKey = key
		}
	}
	if cacheKey != "" {
		body, errGet := h.storefront.Get(ctx, cacheKey)
		if errGet == nil {
			c.Data(http.StatusOK, jsonContentType, body)
			return
		}
		if !errors.Is(errGet, cache.ErrMiss) {
			log.WithError(errGet).Warn("storefront cache read failed")
		}
	}

	payload, errLookup := lookup(ctx, shop, productID)
	if errLookup != nil {
		log.WithError(errLookup).WithFields(log.Fields{
			"request_id": logging.GetGinRequestID(c),
			"kind":       kind,
			"product_id": productID,
		}).Error("storefront lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	body, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if cacheKey != "" {
		if errPut := h.storefront.Put(ctx, cacheKey, body, settings.StorefrontCacheTTL()); errPut != nil {
			log.WithError(errPut).Warn("storefront cache write failed")
		}
	}
	c.Data(http.StatusOK, jsonContentType, body)
}
