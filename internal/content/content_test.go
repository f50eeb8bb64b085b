package content

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	dbutil "github.com/storefront-apps/contentsets/internal/db"
	"github.com/storefront-apps/contentsets/internal/models"
	"gorm.io/gorm"
)

const testShop = "demo.myshopify.com"

func setupContentDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:content_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := dbutil.Migrate(db); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return db
}

func faqDraft(question, answer string) DesiredItem[models.FAQFields] {
	return DesiredItem[models.FAQFields]{Ref: Draft(), Fields: models.FAQFields{Question: question, Answer: answer}}
}

func faqKeep(row models.FAQ) DesiredItem[models.FAQFields] {
	return DesiredItem[models.FAQFields]{Ref: Persisted(row.ID), Fields: row.FAQFields}
}

func questions(items []models.FAQ) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Question)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustListFAQs(t *testing.T, svc *FAQService, shop string) *Snapshot[models.FAQ] {
	t.Helper()
	snap, err := svc.ListAll(context.Background(), shop)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	return snap
}

func TestReconcileSetCreateThenEdit(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	errCreate := svc.ReconcileSet(ctx, testShop, "Shipping Info", []DesiredItem[models.FAQFields]{
		faqDraft("Q1", "A1"),
		faqDraft("Q2", "A2"),
	}, nil)
	if errCreate != nil {
		t.Fatalf("create set: %v", errCreate)
	}

	snap := mustListFAQs(t, svc, testShop)
	if len(snap.Sets) != 1 || snap.Sets[0].Title != "Shipping Info" {
		t.Fatalf("expected one set named Shipping Info, got %+v", snap.Sets)
	}
	if got := questions(snap.Sets[0].Items); !equalStrings(got, []string{"Q1", "Q2"}) {
		t.Fatalf("expected [Q1 Q2], got %v", got)
	}

	q1, q2 := snap.Sets[0].Items[0], snap.Sets[0].Items[1]
	errEdit := svc.ReconcileSet(ctx, testShop, "Shipping Info", []DesiredItem[models.FAQFields]{
		faqKeep(q2),
		faqDraft("Q3", "A3"),
	}, []uint64{q1.ID})
	if errEdit != nil {
		t.Fatalf("edit set: %v", errEdit)
	}

	snap = mustListFAQs(t, svc, testShop)
	if got := questions(snap.Sets[0].Items); !equalStrings(got, []string{"Q2", "Q3"}) {
		t.Fatalf("expected [Q2 Q3], got %v", got)
	}
	if snap.Sets[0].Items[0].ID != q2.ID {
		t.Fatalf("expected Q2 to keep its id %d, got %d", q2.ID, snap.Sets[0].Items[0].ID)
	}
}

func TestReconcileSetUpdatesInPlace(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, testShop, "Sizing", []DesiredItem[models.FAQFields]{faqDraft("Fit?", "True to size")}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	row := mustListFAQs(t, svc, testShop).Items[0]

	edited := DesiredItem[models.FAQFields]{Ref: Persisted(row.ID), Fields: models.FAQFields{Question: "Fit?", Answer: "Runs small"}}
	for i := 0; i < 2; i++ {
		if err := svc.ReconcileSet(ctx, testShop, "Sizing", []DesiredItem[models.FAQFields]{edited}, nil); err != nil {
			t.Fatalf("update attempt %d: %v", i, err)
		}
	}

	snap := mustListFAQs(t, svc, testShop)
	if len(snap.Items) != 1 {
		t.Fatalf("expected retries to keep a single row, got %d", len(snap.Items))
	}
	if snap.Items[0].Answer != "Runs small" {
		t.Fatalf("expected updated answer, got %q", snap.Items[0].Answer)
	}
}

func TestReconcileSetSkipsBlankDrafts(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)

	err := svc.ReconcileSet(context.Background(), testShop, "Returns", []DesiredItem[models.FAQFields]{
		faqDraft("  ", ""),
		faqDraft("Window?", "30 days"),
	}, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := questions(mustListFAQs(t, svc, testShop).Items); !equalStrings(got, []string{"Window?"}) {
		t.Fatalf("expected only the filled row, got %v", got)
	}
}

func TestReconcileSetRejectsEmptyTitle(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)

	err := svc.ReconcileSet(context.Background(), testShop, "   ", []DesiredItem[models.FAQFields]{faqDraft("Q", "A")}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var count int64
	db.Model(&models.FAQ{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no rows written, got %d", count)
	}
}

func TestReconcileSetRollsBackOnUnknownID(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, testShop, "Care", []DesiredItem[models.FAQFields]{faqDraft("Wash?", "Cold")}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	existing := mustListFAQs(t, svc, testShop).Items[0]

	err := svc.ReconcileSet(ctx, testShop, "Care", []DesiredItem[models.FAQFields]{
		faqDraft("Dry?", "Flat"),
		{Ref: Persisted(99999), Fields: models.FAQFields{Question: "Ghost", Answer: "?"}},
	}, []uint64{existing.ID})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	snap := mustListFAQs(t, svc, testShop)
	if got := questions(snap.Items); !equalStrings(got, []string{"Wash?"}) {
		t.Fatalf("expected batch rolled back, got %v", got)
	}
}

func TestReconcileSetIgnoresOtherShopRows(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, "other.myshopify.com", "Care", []DesiredItem[models.FAQFields]{faqDraft("Theirs", "x")}, nil); err != nil {
		t.Fatalf("create other: %v", err)
	}
	foreign := mustListFAQs(t, svc, "other.myshopify.com").Items[0]

	if err := svc.ReconcileSet(ctx, testShop, "Care", []DesiredItem[models.FAQFields]{faqDraft("Mine", "y")}, []uint64{foreign.ID}); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(mustListFAQs(t, svc, "other.myshopify.com").Items) != 1 {
		t.Fatalf("expected other shop row untouched")
	}

	err := svc.ReconcileSet(ctx, testShop, "Care", []DesiredItem[models.FAQFields]{faqKeep(foreign)}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error updating foreign row, got %v", err)
	}
}

func TestReconcileSetRejectsCaseInsensitiveCollision(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, testShop, "Shipping", []DesiredItem[models.FAQFields]{faqDraft("Q", "A")}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := svc.ReconcileSet(ctx, testShop, "SHIPPING", []DesiredItem[models.FAQFields]{faqDraft("Q2", "A2")}, nil)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "title" {
		t.Fatalf("expected title validation error, got %v", err)
	}

	if err := svc.ReconcileSet(ctx, testShop, "Shipping", []DesiredItem[models.FAQFields]{faqDraft("Q2", "A2")}, nil); err != nil {
		t.Fatalf("same spelling must be accepted: %v", err)
	}
}

func TestReconcileSetChangesCaseOfOwnTitle(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, testShop, "shipping info", []DesiredItem[models.FAQFields]{faqDraft("Q1", "A1")}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	row := mustListFAQs(t, svc, testShop).Items[0]

	if err := svc.ReconcileSet(ctx, testShop, "Shipping Info", []DesiredItem[models.FAQFields]{faqKeep(row)}, nil); err != nil {
		t.Fatalf("rename own set: %v", err)
	}
	snap := mustListFAQs(t, svc, testShop)
	if len(snap.Sets) != 1 || snap.Sets[0].Title != "Shipping Info" {
		t.Fatalf("expected single set %q, got %+v", "Shipping Info", snap.Sets)
	}
	if snap.Items[0].ID != row.ID {
		t.Fatalf("expected row %d to be kept, got %d", row.ID, snap.Items[0].ID)
	}
}

func TestReconcileSetPartialCaseRenameCollides(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, testShop, "returns", []DesiredItem[models.FAQFields]{
		faqDraft("Q1", "A1"),
		faqDraft("Q2", "A2"),
	}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	rows := mustListFAQs(t, svc, testShop).Items

	err := svc.ReconcileSet(ctx, testShop, "Returns", []DesiredItem[models.FAQFields]{faqKeep(rows[0])}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error while a case variant remains, got %v", err)
	}
	snap := mustListFAQs(t, svc, testShop)
	if len(snap.Sets) != 1 || snap.Sets[0].Title != "returns" || len(snap.Items) != 2 {
		t.Fatalf("expected batch rolled back, got %+v", snap.Sets)
	}
}

func TestPreviousTitlesIsShopScoped(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, testShop, "X", []DesiredItem[models.FAQFields]{faqDraft("Q1", "A1")}, nil); err != nil {
		t.Fatalf("create X: %v", err)
	}
	if err := svc.ReconcileSet(ctx, testShop, "Y", []DesiredItem[models.FAQFields]{faqDraft("Q2", "A2")}, nil); err != nil {
		t.Fatalf("create Y: %v", err)
	}
	if err := svc.ReconcileSet(ctx, "other.myshopify.com", "Z", []DesiredItem[models.FAQFields]{faqDraft("Q3", "A3")}, nil); err != nil {
		t.Fatalf("create Z: %v", err)
	}
	var ids []uint64
	if err := db.Model(&models.FAQ{}).Order("id").Pluck("id", &ids).Error; err != nil {
		t.Fatalf("pluck ids: %v", err)
	}

	titles, err := svc.previousTitles(db, testShop, ids)
	if err != nil {
		t.Fatalf("previous titles: %v", err)
	}
	if got := sortedKeys(titles); !equalStrings(got, []string{"X", "Y"}) {
		t.Fatalf("expected [X Y], got %v", got)
	}
}

func TestDeletingLastItemRemovesMappings(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, testShop, "Warranty", []DesiredItem[models.FAQFields]{faqDraft("Length?", "2 years")}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.ReplaceMapping(ctx, testShop, "Warranty", []string{"gid://shopify/Product/1", "gid://shopify/Product/2"}); err != nil {
		t.Fatalf("map: %v", err)
	}
	row := mustListFAQs(t, svc, testShop).Items[0]

	if err := svc.ReconcileSet(ctx, testShop, "Warranty", nil, []uint64{row.ID}); err != nil {
		t.Fatalf("delete last item: %v", err)
	}

	snap := mustListFAQs(t, svc, testShop)
	if len(snap.Sets) != 0 {
		t.Fatalf("expected set to disappear, got %+v", snap.Sets)
	}
	if len(snap.Mappings) != 0 {
		t.Fatalf("expected orphan mappings removed, got %d", len(snap.Mappings))
	}
}

func TestMovingItemsToNewTitleCleansOldMappings(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, testShop, "Old", []DesiredItem[models.FAQFields]{faqDraft("Q", "A")}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.ReplaceMapping(ctx, testShop, "Old", []string{"1"}); err != nil {
		t.Fatalf("map: %v", err)
	}
	row := mustListFAQs(t, svc, testShop).Items[0]

	if err := svc.ReconcileSet(ctx, testShop, "New", []DesiredItem[models.FAQFields]{faqKeep(row)}, nil); err != nil {
		t.Fatalf("rename: %v", err)
	}
	snap := mustListFAQs(t, svc, testShop)
	if len(snap.Sets) != 1 || snap.Sets[0].Title != "New" {
		t.Fatalf("expected item moved to New, got %+v", snap.Sets)
	}
	if len(snap.Mappings) != 0 {
		t.Fatalf("expected mappings of emptied title removed, got %+v", snap.Mappings)
	}
}

func TestDeleteSet(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	for _, title := range []string{"Keep", "Drop"} {
		if err := svc.ReconcileSet(ctx, testShop, title, []DesiredItem[models.FAQFields]{faqDraft(title+"?", "yes")}, nil); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		if err := svc.ReplaceMapping(ctx, testShop, title, []string{"p-" + title}); err != nil {
			t.Fatalf("map %s: %v", title, err)
		}
	}

	if err := svc.DeleteSet(ctx, testShop, "Drop"); err != nil {
		t.Fatalf("delete set: %v", err)
	}
	if err := svc.DeleteSet(ctx, testShop, "Missing"); err != nil {
		t.Fatalf("deleting unknown set must be a no-op: %v", err)
	}

	snap := mustListFAQs(t, svc, testShop)
	if len(snap.Sets) != 1 || snap.Sets[0].Title != "Keep" {
		t.Fatalf("expected only Keep left, got %+v", snap.Sets)
	}
	if len(snap.Mappings) != 1 || snap.Mappings[0].SetTitle != "Keep" {
		t.Fatalf("expected only Keep mapping left, got %+v", snap.Mappings)
	}
}

func TestReplaceMappingReplacesWholeList(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, testShop, "Set", []DesiredItem[models.FAQFields]{faqDraft("Q", "A")}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.ReplaceMapping(ctx, testShop, "Set", []string{"1", "2", "2", " ", "3"}); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := svc.ReplaceMapping(ctx, testShop, "Set", []string{"3", "4"}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	snap := mustListFAQs(t, svc, testShop)
	var got []string
	for _, m := range snap.Mappings {
		got = append(got, m.ProductID)
	}
	if !equalStrings(got, []string{"3", "4"}) {
		t.Fatalf("expected exactly [3 4], got %v", got)
	}

	if err := svc.ReplaceMapping(ctx, testShop, "Set", nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	lookup, err := svc.LookupByProduct(ctx, testShop, "3")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if lookup.Found {
		t.Fatalf("expected no assignment after clearing")
	}
}

func TestRemoveMapping(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	ctx := context.Background()

	if err := svc.ReplaceMapping(ctx, testShop, "Set", []string{"1", "2"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := svc.RemoveMapping(ctx, testShop, "Set", "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveMapping(ctx, testShop, "Set", "1"); err != nil {
		t.Fatalf("removing an absent mapping must succeed: %v", err)
	}
	if err := svc.RemoveMapping(ctx, testShop, "Set", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty product id, got %v", err)
	}

	snap := mustListFAQs(t, svc, testShop)
	if len(snap.Mappings) != 1 || snap.Mappings[0].ProductID != "2" {
		t.Fatalf("expected only product 2 left, got %+v", snap.Mappings)
	}
}

func TestLookupByProduct(t *testing.T) {
	db := setupContentDB(t)
	styles := NewStyleStore(db)
	svc := NewFAQService(db, styles)
	ctx := context.Background()

	if err := svc.ReconcileSet(ctx, testShop, "Shipping Info", []DesiredItem[models.FAQFields]{
		faqDraft("Q1", "A1"),
		faqDraft("Q2", "A2"),
	}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.ReconcileSet(ctx, testShop, "Unassigned", []DesiredItem[models.FAQFields]{faqDraft("Q9", "A9")}, nil); err != nil {
		t.Fatalf("create other: %v", err)
	}
	if _, err := styles.Save(ctx, testShop, models.KindFAQ, StyleInput{Style: "chat", Color: "#112233", Radius: 4}); err != nil {
		t.Fatalf("save style: %v", err)
	}
	product := "gid://shopify/Product/1"
	if err := svc.ReplaceMapping(ctx, testShop, "Shipping Info", []string{product}); err != nil {
		t.Fatalf("map: %v", err)
	}

	lookup, err := svc.LookupByProduct(ctx, testShop, product)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !lookup.Found {
		t.Fatalf("expected assignment found")
	}
	if got := questions(lookup.Items); !equalStrings(got, []string{"Q1", "Q2"}) {
		t.Fatalf("expected [Q1 Q2], got %v", got)
	}
	if lookup.Settings.Style != "chat" || lookup.Settings.Radius != 4 {
		t.Fatalf("expected saved style, got %+v", lookup.Settings)
	}

	// Without a shop the owner of the assignment is used.
	lookup, err = svc.LookupByProduct(ctx, "", product)
	if err != nil {
		t.Fatalf("lookup without shop: %v", err)
	}
	if !lookup.Found || lookup.Shop != testShop || len(lookup.Items) != 2 {
		t.Fatalf("expected shop resolved from mapping, got %+v", lookup)
	}

	for _, productID := range []string{"9999", ""} {
		empty, errLookup := svc.LookupByProduct(ctx, testShop, productID)
		if errLookup != nil {
			t.Fatalf("lookup %q: %v", productID, errLookup)
		}
		if empty.Found || len(empty.Items) != 0 {
			t.Fatalf("expected empty result for %q, got %+v", productID, empty)
		}
	}
}

func TestTestimonialServiceValidatesRating(t *testing.T) {
	db := setupContentDB(t)
	svc := NewTestimonialService(db, nil)
	ctx := context.Background()

	bad := []DesiredItem[models.TestimonialFields]{{
		Ref:    Draft(),
		Fields: models.TestimonialFields{Author: "Ana", Content: "Great", Rating: 7},
	}}
	if err := svc.ReconcileSet(ctx, testShop, "Reviews", bad, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	good := []DesiredItem[models.TestimonialFields]{{
		Ref:    Draft(),
		Fields: models.TestimonialFields{Author: "Ana", Subtitle: "Lisbon", Content: "Great", Rating: 5},
	}}
	if err := svc.ReconcileSet(ctx, testShop, "Reviews", good, nil); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	snap, err := svc.ListAll(ctx, testShop)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snap.Items) != 1 || snap.Items[0].Author != "Ana" || snap.Items[0].Rating != 5 {
		t.Fatalf("unexpected testimonials: %+v", snap.Items)
	}
	if snap.Settings.Style != "grid" || snap.Settings.Color != "#ffb800" || snap.Settings.Radius != 12 {
		t.Fatalf("expected testimonial default style, got %+v", snap.Settings)
	}
}

func TestKindsAreIsolated(t *testing.T) {
	db := setupContentDB(t)
	styles := NewStyleStore(db)
	faqs := NewFAQService(db, styles)
	testimonials := NewTestimonialService(db, styles)
	ctx := context.Background()

	if err := faqs.ReplaceMapping(ctx, testShop, "Shared", []string{"1"}); err != nil {
		t.Fatalf("map faq: %v", err)
	}
	if err := testimonials.ReplaceMapping(ctx, testShop, "Shared", nil); err != nil {
		t.Fatalf("clear testimonial: %v", err)
	}
	snap := mustListFAQs(t, faqs, testShop)
	if len(snap.Mappings) != 1 {
		t.Fatalf("expected faq mapping untouched by testimonial replace, got %d", len(snap.Mappings))
	}
}

func TestStorageFailureIsWrapped(t *testing.T) {
	db := setupContentDB(t)
	svc := NewFAQService(db, nil)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	_ = sqlDB.Close()

	errReconcile := svc.ReconcileSet(context.Background(), testShop, "Set", []DesiredItem[models.FAQFields]{faqDraft("Q", "A")}, nil)
	if !errors.Is(errReconcile, ErrStorage) {
		t.Fatalf("expected storage error, got %v", errReconcile)
	}
	var storageErr *StorageError
	if !errors.As(errReconcile, &storageErr) || storageErr.Op != "reconcile set" {
		t.Fatalf("expected reconcile op in storage error, got %v", errReconcile)
	}
}
