package render

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront-apps/contentsets/internal/content"
	"github.com/storefront-apps/contentsets/internal/models"
)

func TestMappingRowUsesKindTitleKey(t *testing.T) {
	faq := MappingRow(&models.ProductMapping{Kind: models.KindFAQ, SetTitle: "Shipping", ProductID: "1"})
	if faq[FAQTitleKey] != "Shipping" {
		t.Fatalf("expected faqTitle, got %v", faq)
	}
	if _, ok := faq[TestimonialTitleKey]; ok {
		t.Fatalf("unexpected testiTitle on faq mapping")
	}

	testi := MappingRow(&models.ProductMapping{Kind: models.KindTestimonial, SetTitle: "Reviews", ProductID: "1"})
	if testi[TestimonialTitleKey] != "Reviews" {
		t.Fatalf("expected testiTitle, got %v", testi)
	}
}

func TestSetsKeepOrder(t *testing.T) {
	sets := []content.Set[models.FAQ]{
		{Title: "B", Items: []models.FAQ{{ID: 2}}},
		{Title: "A", Items: []models.FAQ{{ID: 1}, {ID: 3}}},
	}
	out := Sets(sets, FAQRow)
	if len(out) != 2 || out[0]["title"] != "B" || out[1]["title"] != "A" {
		t.Fatalf("unexpected sets: %v", out)
	}
	if items := out[1]["items"].([]gin.H); len(items) != 2 || items[1]["id"] != uint64(3) {
		t.Fatalf("unexpected items: %v", items)
	}
}
