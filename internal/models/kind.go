package models

// Kind identifies a content type managed by the app.
type Kind string

// Supported content kinds.
const (
	// KindFAQ is the question/answer content kind.
	KindFAQ Kind = "faq"
	// KindTestimonial is the customer review content kind.
	KindTestimonial Kind = "testimonial"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindFAQ || k == KindTestimonial
}

func (k Kind) String() string { return string(k) }
