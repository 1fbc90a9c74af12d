package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// LeadStatus tracks a lead through the sales workflow.
type LeadStatus string

const (
	StatusNew        LeadStatus = "new"
	StatusContacted  LeadStatus = "contacted"
	StatusInterested LeadStatus = "interested"
	StatusQualified  LeadStatus = "qualified"
	StatusWon        LeadStatus = "won"
	StatusLost       LeadStatus = "lost"
)

// ParseLeadStatus converts a string into a LeadStatus.
func ParseLeadStatus(s string) (LeadStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return StatusNew, nil
	case "contacted":
		return StatusContacted, nil
	case "interested":
		return StatusInterested, nil
	case "qualified":
		return StatusQualified, nil
	case "won":
		return StatusWon, nil
	case "lost":
		return StatusLost, nil
	default:
		return "", eris.Errorf("model: unknown lead status %q", s)
	}
}

// Priority ranks how urgently a lead should be worked.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority converts a string into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "urgent":
		return PriorityUrgent, nil
	default:
		return "", eris.Errorf("model: unknown priority %q", s)
	}
}

// Lead is a persisted candidate merged with its qualification analysis and
// workflow metadata. Created exactly once per distinct business per run;
// mutated by workflow operations; never deleted by the pipeline.
type Lead struct {
	ID        string `json:"id"`
	Candidate        // flattened scraped fields

	// Analysis fields flattened with the ai_ naming convention.
	AIScore          int      `json:"ai_score"`
	AIInterest       Interest `json:"ai_interest"`
	AIReasoning      string   `json:"ai_reasoning,omitempty"`
	AIOfferings      []string `json:"ai_offerings,omitempty"`
	AIOpeningLine    string   `json:"ai_opening_line,omitempty"`
	AIFollowUpLine   string   `json:"ai_follow_up_line,omitempty"`
	AIConversionProb int      `json:"ai_conversion_prob"`
	AIPainPoints     []string `json:"ai_pain_points,omitempty"`
	AIIdealOffer     string   `json:"ai_ideal_offer,omitempty"`

	Status    LeadStatus `json:"status"`
	Priority  Priority   `json:"priority"`
	Hot       bool       `json:"hot"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewLead builds a Lead from a candidate and its analysis. hotThreshold is
// the minimum AI score that marks a lead hot regardless of interest bucket.
func NewLead(c Candidate, a Analysis, hotThreshold int) *Lead {
	now := time.Now().UTC()
	lead := &Lead{
		ID:               uuid.NewString(),
		Candidate:        c,
		AIScore:          a.Score,
		AIInterest:       a.Interest,
		AIReasoning:      a.Reasoning,
		AIOfferings:      a.Offerings,
		AIOpeningLine:    a.OpeningLine,
		AIFollowUpLine:   a.FollowUpLine,
		AIConversionProb: a.ConversionProb,
		AIPainPoints:     a.PainPoints,
		AIIdealOffer:     a.IdealOffer,
		Status:           StatusNew,
		Priority:         priorityFor(a.Interest),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	lead.Hot = a.Interest == InterestHot || a.Score >= hotThreshold
	if lead.Hot && lead.Priority != PriorityUrgent {
		lead.Priority = PriorityHigh
	}
	return lead
}

// Analysis reassembles the flattened ai_ fields back into an Analysis.
func (l *Lead) Analysis() Analysis {
	return Analysis{
		Score:          l.AIScore,
		Interest:       l.AIInterest,
		Reasoning:      l.AIReasoning,
		Offerings:      l.AIOfferings,
		OpeningLine:    l.AIOpeningLine,
		FollowUpLine:   l.AIFollowUpLine,
		ConversionProb: l.AIConversionProb,
		PainPoints:     l.AIPainPoints,
		IdealOffer:     l.AIIdealOffer,
	}
}

func priorityFor(i Interest) Priority {
	switch i {
	case InterestHot:
		return PriorityHigh
	case InterestWarm:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
