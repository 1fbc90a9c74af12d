package enrich

import (
	_ "embed"
	"fmt"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadgen-cli/internal/model"
)

//go:embed templates.yaml
var templatesYAML []byte

// outreachTemplate holds the fixed copy for one heuristic branch.
type outreachTemplate struct {
	Offerings    []string `yaml:"offerings"`
	PainPoints   []string `yaml:"pain_points"`
	OpeningLine  string   `yaml:"opening_line"`
	FollowUpLine string   `yaml:"follow_up_line"`
	IdealOffer   string   `yaml:"ideal_offer"`
}

type templateSet struct {
	WithWebsite    outreachTemplate `yaml:"with_website"`
	WithoutWebsite outreachTemplate `yaml:"without_website"`
}

// HeuristicConfig exposes the fallback thresholds. The source material never
// settled on one hot rule, so these stay configurable rather than constants.
type HeuristicConfig struct {
	MinRating      float64 `yaml:"min_rating" mapstructure:"min_rating"`
	MinReviews     int     `yaml:"min_reviews" mapstructure:"min_reviews"`
	HotScore       int     `yaml:"hot_score" mapstructure:"hot_score"`
	WarmScore      int     `yaml:"warm_score" mapstructure:"warm_score"`
	HotConversion  int     `yaml:"hot_conversion" mapstructure:"hot_conversion"`
	WarmConversion int     `yaml:"warm_conversion" mapstructure:"warm_conversion"`
}

// DefaultHeuristicConfig returns the shipped thresholds.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		MinRating:      4.0,
		MinReviews:     50,
		HotScore:       85,
		WarmScore:      60,
		HotConversion:  40,
		WarmConversion: 15,
	}
}

// Heuristic is the deterministic substitute for AI scoring, used when the
// quota is exhausted or the inference call fails.
type Heuristic struct {
	cfg       HeuristicConfig
	templates templateSet
}

// NewHeuristic builds the fallback classifier. Zero-value thresholds are
// replaced with defaults so a partially-filled config stays sane.
func NewHeuristic(cfg HeuristicConfig) (*Heuristic, error) {
	def := DefaultHeuristicConfig()
	if cfg.MinRating <= 0 {
		cfg.MinRating = def.MinRating
	}
	if cfg.MinReviews <= 0 {
		cfg.MinReviews = def.MinReviews
	}
	if cfg.HotScore <= 0 {
		cfg.HotScore = def.HotScore
	}
	if cfg.WarmScore <= 0 {
		cfg.WarmScore = def.WarmScore
	}
	if cfg.HotConversion <= 0 {
		cfg.HotConversion = def.HotConversion
	}
	if cfg.WarmConversion <= 0 {
		cfg.WarmConversion = def.WarmConversion
	}

	var ts templateSet
	if err := yaml.Unmarshal(templatesYAML, &ts); err != nil {
		return nil, eris.Wrap(err, "enrich: parse outreach templates")
	}
	return &Heuristic{cfg: cfg, templates: ts}, nil
}

// Analyze classifies a candidate by fixed rules: hot when the rating and
// review count clear their thresholds and no website exists (a well-reviewed
// business that nobody can find online), warm when a website exists, cold
// otherwise. Identical inputs always produce identical output.
func (h *Heuristic) Analyze(c model.Candidate) model.Analysis {
	hasWebsite := c.HasWebsite()
	hot := c.RatingValue() >= h.cfg.MinRating &&
		c.ReviewCount >= h.cfg.MinReviews &&
		!hasWebsite

	tpl := h.templates.WithoutWebsite
	if hasWebsite {
		tpl = h.templates.WithWebsite
	}

	a := model.Analysis{
		Interest:       model.InterestCold,
		Score:          h.cfg.WarmScore,
		ConversionProb: h.cfg.WarmConversion,
		Offerings:      tpl.Offerings,
		PainPoints:     tpl.PainPoints,
		OpeningLine:    tpl.OpeningLine,
		FollowUpLine:   tpl.FollowUpLine,
		IdealOffer:     tpl.IdealOffer,
	}

	switch {
	case hot:
		a.Interest = model.InterestHot
		a.Score = h.cfg.HotScore
		a.ConversionProb = h.cfg.HotConversion
		a.Reasoning = fmt.Sprintf(
			"heuristic: rating %.1f with %d reviews and no website",
			c.RatingValue(), c.ReviewCount,
		)
	case hasWebsite:
		a.Interest = model.InterestWarm
		a.Reasoning = "heuristic: established web presence, modernization prospect"
	default:
		a.Reasoning = "heuristic: no website and no strong review signal"
	}

	a.ClampScores()
	return a
}
