package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/storefront-apps/contentsets/internal/cache"
	"github.com/storefront-apps/contentsets/internal/content"
	"github.com/storefront-apps/contentsets/internal/http/api/render"
	"github.com/storefront-apps/contentsets/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ContentHandler serves the embedded admin's FAQ and testimonial endpoints.
type ContentHandler struct {
	faqs         *content.FAQService
	testimonials *content.TestimonialService
	styles       *content.StyleStore
	storefront   *cache.Storefront // Invalidated after every successful write.
}

// NewContentHandler constructs a ContentHandler over db.
func NewContentHandler(db *gorm.DB, storefront *cache.Storefront) *ContentHandler {
	styles := content.NewStyleStore(db)
	return &ContentHandler{
		faqs:         content.NewFAQService(db, styles),
		testimonials: content.NewTestimonialService(db, styles),
		styles:       styles,
		storefront:   storefront,
	}
}

// List returns every FAQ and testimonial set of the shop with mappings and settings.
func (h *ContentHandler) List(c *gin.Context) {
	shop, ok := resolveShop(c, c.Query("shop"))
	if !ok {
		return
	}

	var (
		faqSnap   *content.Snapshot[models.FAQ]
		testiSnap *content.Snapshot[models.Testimonial]
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		faqSnap, err = h.faqs.ListAll(ctx, shop)
		return err
	})
	g.Go(func() error {
		var err error
		testiSnap, err = h.testimonials.ListAll(ctx, shop)
		return err
	})
	if errWait := g.Wait(); errWait != nil {
		respondContentError(c, errWait)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shop":            shop,
		"faqs":            render.Rows(faqSnap.Items, render.FAQRow),
		"faqSets":         render.Sets(faqSnap.Sets, render.FAQRow),
		"settings":        render.StyleConfig(faqSnap.Settings),
		"mappings":        render.Rows(faqSnap.Mappings, render.MappingRow),
		"testimonials":    render.Rows(testiSnap.Items, render.TestimonialRow),
		"testimonialSets": render.Sets(testiSnap.Sets, render.TestimonialRow),
		"testiSettings":   render.StyleConfig(testiSnap.Settings),
		"testiMappings":   render.Rows(testiSnap.Mappings, render.MappingRow),
	})
}

// invalidate retires cached storefront responses of (kind, shop). Failures
// are logged; the write itself has already committed.
func (h *ContentHandler) invalidate(ctx context.Context, kind models.Kind, shop string) {
	if errInvalidate := h.storefront.Invalidate(ctx, kind.String(), shop); errInvalidate != nil {
		log.WithError(errInvalidate).WithFields(log.Fields{
			"kind": kind,
			"shop": shop,
		}).Warn("storefront cache invalidation failed")
	}
}
