package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLeadDefaults(t *testing.T) {
	t.Parallel()

	c := Candidate{BusinessName: "Cafe A", Phone: "555-0100", Source: SourceMapListing}
	a := Analysis{Score: 60, Interest: InterestWarm, ConversionProb: 15}

	lead := NewLead(c, a, 80)

	require.NotEmpty(t, lead.ID)
	assert.Equal(t, StatusNew, lead.Status)
	assert.Equal(t, PriorityMedium, lead.Priority)
	assert.False(t, lead.Hot)
	assert.Equal(t, "Cafe A", lead.BusinessName)
	assert.Equal(t, 60, lead.AIScore)
	assert.Equal(t, InterestWarm, lead.AIInterest)
	assert.False(t, lead.CreatedAt.IsZero())
	assert.Equal(t, lead.CreatedAt, lead.UpdatedAt)
}

func TestNewLeadHotByInterest(t *testing.T) {
	t.Parallel()

	lead := NewLead(
		Candidate{BusinessName: "Cafe A"},
		Analysis{Score: 70, Interest: InterestHot},
		80,
	)
	assert.True(t, lead.Hot)
	assert.Equal(t, PriorityHigh, lead.Priority)
}

func TestNewLeadHotByScoreThreshold(t *testing.T) {
	t.Parallel()

	// Warm interest but AI score at the threshold still flags hot.
	lead := NewLead(
		Candidate{BusinessName: "Cafe A"},
		Analysis{Score: 80, Interest: InterestWarm},
		80,
	)
	assert.True(t, lead.Hot)
	assert.Equal(t, PriorityHigh, lead.Priority)

	cool := NewLead(
		Candidate{BusinessName: "Cafe B"},
		Analysis{Score: 79, Interest: InterestWarm},
		80,
	)
	assert.False(t, cool.Hot)
}

func TestLeadAnalysisRoundTrip(t *testing.T) {
	t.Parallel()

	a := Analysis{
		Score:          85,
		Interest:       InterestHot,
		Reasoning:      "strong rating, no website",
		Offerings:      []string{"website build", "seo"},
		OpeningLine:    "opening",
		FollowUpLine:   "follow up",
		ConversionProb: 40,
		PainPoints:     []string{"no online presence"},
		IdealOffer:     "starter site",
	}
	lead := NewLead(Candidate{BusinessName: "Cafe A"}, a, 80)
	assert.Equal(t, a, lead.Analysis())
}

func TestParseLeadStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"new", "contacted", "interested", "qualified", "won", "lost"} {
		got, err := ParseLeadStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(got))
	}
	_, err := ParseLeadStatus("archived")
	assert.Error(t, err)
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"low", "medium", "high", "urgent"} {
		got, err := ParsePriority(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(got))
	}
	_, err := ParsePriority("asap")
	assert.Error(t, err)
}
