package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Interest buckets a candidate by sales priority.
type Interest string

const (
	InterestHot  Interest = "hot"
	InterestWarm Interest = "warm"
	InterestCold Interest = "cold"
)

// ParseInterest validates an externally-produced interest value. Invalid
// values are rejected rather than coerced; callers decide the fallback.
func ParseInterest(s string) (Interest, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hot":
		return InterestHot, nil
	case "warm":
		return InterestWarm, nil
	case "cold":
		return InterestCold, nil
	default:
		return "", eris.Errorf("model: invalid interest %q (valid: hot, warm, cold)", s)
	}
}

// Analysis is the qualification output of enrichment for one candidate,
// produced either by the LLM or by the deterministic heuristic.
type Analysis struct {
	Score          int      `json:"score"`
	Interest       Interest `json:"interest"`
	Reasoning      string   `json:"reasoning,omitempty"`
	Offerings      []string `json:"offerings,omitempty"`
	OpeningLine    string   `json:"opening_line,omitempty"`
	FollowUpLine   string   `json:"follow_up_line,omitempty"`
	ConversionProb int      `json:"conversion_prob"`
	PainPoints     []string `json:"pain_points,omitempty"`
	IdealOffer     string   `json:"ideal_offer,omitempty"`
}

// ClampScores forces score and conversion probability into [0, 100].
// Out-of-range numbers from the LLM are clamped; everything else invalid
// (e.g. a bad interest value) is rejected upstream, not coerced.
func (a *Analysis) ClampScores() {
	a.Score = clamp100(a.Score)
	a.ConversionProb = clamp100(a.ConversionProb)
}

func clamp100(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
