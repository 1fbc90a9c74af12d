package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// SourceTag identifies which external directory a candidate was harvested from.
type SourceTag string

const (
	SourceMapListing SourceTag = "map_listing"
	SourceLocalDir   SourceTag = "local_directory"
	SourceB2BDir     SourceTag = "b2b_directory"
	SourceReviewsDir SourceTag = "reviews_directory"
)

// AllSourceTags returns every known source tag in a stable order.
func AllSourceTags() []SourceTag {
	return []SourceTag{SourceMapListing, SourceLocalDir, SourceB2BDir, SourceReviewsDir}
}

// ParseSourceTag converts a string into a SourceTag.
func ParseSourceTag(s string) (SourceTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "map_listing", "map-listing", "maps":
		return SourceMapListing, nil
	case "local_directory", "local-directory", "local":
		return SourceLocalDir, nil
	case "b2b_directory", "b2b-directory", "b2b":
		return SourceB2BDir, nil
	case "reviews_directory", "reviews-directory", "reviews":
		return SourceReviewsDir, nil
	default:
		return "", eris.Errorf("model: unknown source %q (valid: %v)", s, AllSourceTags())
	}
}

// Candidate is a provisional lead harvested from one source, not yet
// deduplicated or persisted. Every adapter maps its raw payload into this
// shape at its own boundary; nothing downstream branches on source-specific
// fields.
type Candidate struct {
	BusinessName string    `json:"business_name"`
	ContactName  string    `json:"contact_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Website      string    `json:"website,omitempty"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city,omitempty"`
	Category     string    `json:"category,omitempty"`
	Rating       *float64  `json:"rating,omitempty"`
	ReviewCount  int       `json:"review_count,omitempty"`
	PriceTier    string    `json:"price_tier,omitempty"`
	Description  string    `json:"description,omitempty"`
	OpeningHours []string  `json:"opening_hours,omitempty"`
	Attributes   []string  `json:"attributes,omitempty"`
	Source       SourceTag `json:"source"`
}

// Validate checks the candidate invariants: business name is required and
// rating, when present, lies in [0, 5].
func (c *Candidate) Validate() error {
	if strings.TrimSpace(c.BusinessName) == "" {
		return eris.New("model: candidate business name is required")
	}
	if c.Rating != nil && (*c.Rating < 0 || *c.Rating > 5) {
		return eris.Errorf("model: candidate rating %.2f out of range [0,5]", *c.Rating)
	}
	return nil
}

// HasWebsite reports whether the candidate carries a usable website URL.
// Absence of a website is a primary qualification signal.
func (c *Candidate) HasWebsite() bool {
	return strings.TrimSpace(c.Website) != ""
}

// RatingValue returns the rating or 0 when absent.
func (c *Candidate) RatingValue() float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}
