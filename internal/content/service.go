// Package content manages titled sets of storefront content, their product
// assignments, and per-shop style settings.
//
// A set has no row of its own: it exists while at least one record carries
// its title, and its product mappings are removed with its last record.
package content

import (
	"sort"
	"strings"

	dbutil "github.com/storefront-apps/contentsets/internal/db"
	"github.com/storefront-apps/contentsets/internal/models"
	"gorm.io/gorm"
)

// UntitledSet labels records stored without a title.
const UntitledSet = "Untitled Set"

// Fields is the editable payload of a content record.
type Fields interface {
	Columns() map[string]any
	Blank() bool
	Validate() error
}

// Record is implemented by pointers to content models.
type Record[T any, F Fields] interface {
	*T
	GetID() uint64
	GetTitle() string
	Assign(shop, title string, fields F)
}

// DesiredItem is one row of an edited set.
type DesiredItem[F Fields] struct {
	Ref    Ref
	Fields F
}

// Set is the group of records sharing a title.
type Set[T any] struct {
	Title string
	Items []T
}

// Service reconciles, assigns and reads sets of one content kind.
type Service[T any, F Fields, P Record[T, F]] struct {
	db     *gorm.DB
	kind   models.Kind
	styles *StyleStore
}

// FAQService manages FAQ sets.
type FAQService = Service[models.FAQ, models.FAQFields, *models.FAQ]

// TestimonialService manages testimonial sets.
type TestimonialService = Service[models.Testimonial, models.TestimonialFields, *models.Testimonial]

// NewService constructs a Service for kind.
func NewService[T any, F Fields, P Record[T, F]](db *gorm.DB, kind models.Kind, styles *StyleStore) *Service[T, F, P] {
	if styles == nil {
		styles = NewStyleStore(db)
	}
	return &Service[T, F, P]{db: db, kind: kind, styles: styles}
}

// NewFAQService constructs the FAQ service.
func NewFAQService(db *gorm.DB, styles *StyleStore) *FAQService {
	return NewService[models.FAQ, models.FAQFields](db, models.KindFAQ, styles)
}

// NewTestimonialService constructs the testimonial service.
func NewTestimonialService(db *gorm.DB, styles *StyleStore) *TestimonialService {
	return NewService[models.Testimonial, models.TestimonialFields](db, models.KindTestimonial, styles)
}

// Kind returns the content kind served.
func (s *Service[T, F, P]) Kind() models.Kind { return s.kind }

// lockSet serializes writers of one (shop, kind, title) set.
func (s *Service[T, F, P]) lockSet(tx *gorm.DB, shop, title string) error {
	return dbutil.AdvisoryXactLock(tx, dbutil.LockKey(shop, string(s.kind), title))
}

// lockSets takes set locks in a stable order.
func (s *Service[T, F, P]) lockSets(tx *gorm.DB, shop string, titles []string) error {
	for _, title := range titles {
		if errLock := s.lockSet(tx, shop, title); errLock != nil {
			return errLock
		}
	}
	return nil
}

// groupByTitle groups ordered records by title, keeping first-seen set order.
func groupByTitle[T any, F Fields, P Record[T, F]](items []T) []Set[T] {
	index := make(map[string]int)
	var sets []Set[T]
	for i := range items {
		title := strings.TrimSpace(P(&items[i]).GetTitle())
		if title == "" {
			title = UntitledSet
		}
		pos, ok := index[title]
		if !ok {
			pos = len(sets)
			index[title] = pos
			sets = append(sets, Set[T]{Title: title})
		}
		sets[pos].Items = append(sets[pos].Items, items[i])
	}
	return sets
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalizeShop(shop string) (string, error) {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if shop == "" {
		return "", invalid("shop", "shop is required")
	}
	return shop, nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title", "title is required")
	}
	return title, nil
}
