package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/storefront-apps/contentsets/internal/content"
	"github.com/storefront-apps/contentsets/internal/http/api/render"
	"github.com/storefront-apps/contentsets/internal/models"
)

// Admin intents accepted by POST /api/faqs.
const (
	IntentSaveSettings              = "saveSettings"
	IntentSaveFAQSet                = "saveFaqSet"
	IntentDeleteSet                 = "deleteSet"
	IntentSaveProductMapping        = "saveProductMapping"
	IntentRemoveProductMapping      = "removeProductMapping"
	IntentSaveTestiSettings         = "saveTestiSettings"
	IntentSaveTestimonialSet        = "saveTestimonialSet"
	IntentDeleteTestiSet            = "deleteTestiSet"
	IntentSaveTestiProductMapping   = "saveTestiProductMapping"
	IntentRemoveTestiProductMapping = "removeTestiProductMapping"
)

var intentKinds = map[string]models.Kind{
	IntentSaveSettings:              models.KindFAQ,
	IntentSaveFAQSet:                models.KindFAQ,
	IntentDeleteSet:                 models.KindFAQ,
	IntentSaveProductMapping:        models.KindFAQ,
	IntentRemoveProductMapping:      models.KindFAQ,
	IntentSaveTestiSettings:         models.KindTestimonial,
	IntentSaveTestimonialSet:        models.KindTestimonial,
	IntentDeleteTestiSet:            models.KindTestimonial,
	IntentSaveTestiProductMapping:   models.KindTestimonial,
	IntentRemoveTestiProductMapping: models.KindTestimonial,
}

// intentRequest captures every field any intent may carry.
type intentRequest struct {
	Intent       string                  `json:"intent"`
	Shop         string                  `json:"shop"`
	Title        string                  `json:"title" binding:"max=255"`
	Questions    []faqRowRequest         `json:"questions"`
	Testimonials []testimonialRowRequest `json:"testimonials"`
	IDsToDelete  []content.Ref           `json:"idsToDelete"`
	FAQTitle     string                  `json:"faqTitle" binding:"max=255"`
	TestiTitle   string                  `json:"testiTitle" binding:"max=255"`
	ProductIDs   []string                `json:"productIds" binding:"omitempty,dive,max=255"`
	ProductID    string                  `json:"productId" binding:"max=255"`
	Style        string                  `json:"style"`
	Color        string                  `json:"color"`
	Radius       flexInt                 `json:"radius"`
}

// faqRowRequest is one edited FAQ row.
type faqRowRequest struct {
	ID       content.Ref `json:"id"`
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
}

// testimonialRowRequest is one edited testimonial row.
type testimonialRowRequest struct {
	ID       content.Ref `json:"id"`
	Author   string      `json:"author"`
	Subtitle string      `json:"subtitle"`
	Rating   flexInt     `json:"rating"`
	Content  string      `json:"content"`
}

// Intent applies one admin mutation selected by the intent field.
func (h *ContentHandler) Intent(c *gin.Context) {
	var body intentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		respondBindError(c, errBind)
		return
	}
	intent := strings.TrimSpace(body.Intent)
	kind, known := intentKinds[intent]
	if !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown intent"})
		return
	}
	shop, ok := resolveShop(c, body.Shop)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result := gin.H{"success": true, "intent": intent}
	var err error

	switch intent {
	case IntentSaveSettings, IntentSaveTestiSettings:
		radius, present := body.Radius.Value()
		if !present {
			respondContentError(c, &content.ValidationError{Field: "radius", Message: "radius is required"})
			return
		}
		var saved models.StyleSettings
		saved, err = h.styles.Save(ctx, shop, kind, content.StyleInput{
			Style:  body.Style,
			Color:  body.Color,
			Radius: radius,
		})
		if err == nil {
			result["settings"] = render.StyleConfig(saved)
		}
	case IntentSaveFAQSet:
		err = h.faqs.ReconcileSet(ctx, shop, body.Title, faqItems(body.Questions), persistedIDs(body.IDsToDelete))
	case IntentSaveTestimonialSet:
		err = h.testimonials.ReconcileSet(ctx, shop, body.Title, testimonialItems(body.Testimonials), persistedIDs(body.IDsToDelete))
	case IntentDeleteSet:
		err = h.faqs.DeleteSet(ctx, shop, body.Title)
	case IntentDeleteTestiSet:
		err = h.testimonials.DeleteSet(ctx, shop, body.Title)
	case IntentSaveProductMapping:
		err = h.faqs.ReplaceMapping(ctx, shop, body.FAQTitle, body.ProductIDs)
	case IntentSaveTestiProductMapping:
		err = h.testimonials.ReplaceMapping(ctx, shop, body.TestiTitle, body.ProductIDs)
	case IntentRemoveProductMapping:
		err = h.faqs.RemoveMapping(ctx, shop, body.FAQTitle, body.ProductID)
	case IntentRemoveTestiProductMapping:
		err = h.testimonials.RemoveMapping(ctx, shop, body.TestiTitle, body.ProductID)
	}

	if err != nil {
		respondContentError(c, err)
		return
	}
	h.invalidate(ctx, kind, shop)
	log.WithFields(log.Fields{"shop": shop, "intent": intent}).Info("admin intent applied")
	c.JSON(http.StatusOK, result)
}

func faqItems(rows []faqRowRequest) []content.DesiredItem[models.FAQFields] {
	items := make([]content.DesiredItem[models.FAQFields], 0, len(rows))
	for _, row := range rows {
		items = append(items, content.DesiredItem[models.FAQFields]{
			Ref: row.ID,
			Fields: models.FAQFields{
				Question: strings.TrimSpace(row.Question),
				Answer:   strings.TrimSpace(row.Answer),
			},
		})
	}
	return items
}

func testimonialItems(rows []testimonialRowRequest) []content.DesiredItem[models.TestimonialFields] {
	items := make([]content.DesiredItem[models.TestimonialFields], 0, len(rows))
	for _, row := range rows {
		items = append(items, content.DesiredItem[models.TestimonialFields]{
			Ref: row.ID,
			Fields: models.TestimonialFields{
				Author:   strings.TrimSpace(row.Author),
				Subtitle: strings.TrimSpace(row.Subtitle),
				Rating:   row.Rating.Or(models.MaxRating),
				Content:  strings.TrimSpace(row.Content),
			},
		})
	}
	return items
}

// persistedIDs drops draft references; they were never stored.
func persistedIDs(refs []content.Ref) []uint64 {
	ids := make([]uint64, 0, len(refs))
	for _, ref := range refs {
		if id, ok := ref.ID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
