package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestCandidateValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate Candidate
		wantErr   bool
	}{
		{"valid minimal", Candidate{BusinessName: "Cafe A"}, false},
		{"valid with rating", Candidate{BusinessName: "Cafe A", Rating: f64(4.5)}, false},
		{"rating at bounds", Candidate{BusinessName: "Cafe A", Rating: f64(5.0)}, false},
		{"missing name", Candidate{Phone: "555-0100"}, true},
		{"whitespace name", Candidate{BusinessName: "   "}, true},
		{"rating too high", Candidate{BusinessName: "Cafe A", Rating: f64(5.1)}, true},
		{"rating negative", Candidate{BusinessName: "Cafe A", Rating: f64(-0.5)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.candidate.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCandidateHasWebsite(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Candidate{BusinessName: "A", Website: "https://a.example"}).HasWebsite())
	assert.False(t, (&Candidate{BusinessName: "A"}).HasWebsite())
	assert.False(t, (&Candidate{BusinessName: "A", Website: "  "}).HasWebsite())
}

func TestCandidateRatingValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, (&Candidate{BusinessName: "A"}).RatingValue())
	assert.Equal(t, 4.2, (&Candidate{BusinessName: "A", Rating: f64(4.2)}).RatingValue())
}

func TestParseSourceTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want SourceTag
	}{
		{"map_listing", SourceMapListing},
		{"map-listing", SourceMapListing},
		{"maps", SourceMapListing},
		{"local_directory", SourceLocalDir},
		{"B2B", SourceB2BDir},
		{"reviews-directory", SourceReviewsDir},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSourceTag(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSourceTag("craigslist")
	assert.Error(t, err)
}

func TestAllSourceTagsStableOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]SourceTag{SourceMapListing, SourceLocalDir, SourceB2BDir, SourceReviewsDir},
		AllSourceTags(),
	)
}
