// Package enrich turns a scraped candidate into a sales-qualification
// analysis, via the external inference service when quota allows and via the
// deterministic heuristic otherwise. Analyze never fails its caller.
package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/quota"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
)

// Config tunes the enrichment call path. All knobs are env-overridable.
type Config struct {
	Model         string `yaml:"model" mapstructure:"model"`
	MaxTokens     int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries    int    `yaml:"max_retries" mapstructure:"max_retries"`
	BaseBackoffMs int    `yaml:"base_backoff_ms" mapstructure:"base_backoff_ms"`
	PacingMs      int    `yaml:"pacing_ms" mapstructure:"pacing_ms"`
}

// Service scores candidates. A nil client means no credential was
// configured; the service then degrades to a tagged cold analysis.
type Service struct {
	client    anthropic.Client
	guard     *quota.Guard
	heuristic *Heuristic
	limiter   *rate.Limiter
	cfg       Config
	retryCfg  resilience.RetryConfig
}

// NewService wires the enrichment service. client may be nil.
func NewService(client anthropic.Client, guard *quota.Guard, heuristic *Heuristic, cfg Config) *Service {
	if cfg.Model == "" {
		cfg.Model = "claude-haiku-4-5-20251001"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseBackoffMs <= 0 {
		cfg.BaseBackoffMs = 600
	}
	if cfg.PacingMs <= 0 {
		cfg.PacingMs = 150
	}

	return &Service{
		client:    client,
		guard:     guard,
		heuristic: heuristic,
		limiter:   rate.NewLimiter(rate.Every(time.Duration(cfg.PacingMs)*time.Millisecond), 1),
		cfg:       cfg,
		retryCfg: resilience.RetryConfig{
			MaxRetries:     cfg.MaxRetries,
			BaseBackoff:    time.Duration(cfg.BaseBackoffMs) * time.Millisecond,
			MaxBackoff:     30 * time.Second,
			JitterFraction: 0.25,
			OnRetry:        resilience.RetryLogger("anthropic", "analyze"),
		},
	}
}

// Analyze produces an analysis for one candidate. Decision order: missing
// credential, exhausted quota, inference call with bounded retries, response
// repair. Every failure path lands on the heuristic; the caller never sees
// an error.
func (s *Service) Analyze(ctx context.Context, c model.Candidate) model.Analysis {
	log := zap.L().With(
		zap.String("component", "enrich"),
		zap.String("business", c.BusinessName),
	)

	if s.client == nil {
		return model.Analysis{
			Interest:  model.InterestCold,
			Reasoning: "inference service credential not configured; set LEADGEN_ANTHROPIC_KEY to enable AI scoring",
		}
	}

	if !s.guard.TryConsume() {
		log.Info("quota exhausted, using heuristic",
			zap.Int("daily_limit", s.guard.Limit()),
		)
		return s.heuristic.Analyze(c)
	}

	resp, err := resilience.DoVal(ctx, s.retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		// Pace every outbound attempt, not only retries.
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "enrich: pacing wait")
		}

		resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     s.cfg.Model,
			MaxTokens: s.cfg.MaxTokens,
			System:    analyzeSystemPrompt,
			Messages:  []anthropic.Message{{Role: "user", Content: renderPrompt(c)}},
		})
		if err != nil {
			if anthropic.StatusCode(err) == http.StatusTooManyRequests {
				return nil, resilience.NewRateLimitError(err, anthropic.RetryAfterHint(err))
			}
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		log.Warn("inference call failed, using heuristic", zap.Error(err))
		return s.heuristic.Analyze(c)
	}

	analysis, err := parseAnalysis(resp.Text)
	if err != nil {
		log.Warn("unparseable inference response, using heuristic", zap.Error(err))
		log.Debug("raw inference response", zap.String("text", resp.Text))
		return s.heuristic.Analyze(c)
	}

	log.Debug("ai analysis complete",
		zap.Int("score", analysis.Score),
		zap.String("interest", string(analysis.Interest)),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return analysis
}

// analysisPayload mirrors the JSON schema demanded by the system prompt.
type analysisPayload struct {
	Score          int      `json:"score"`
	Interest       string   `json:"interest"`
	Reasoning      string   `json:"reasoning"`
	Offerings      []string `json:"offerings"`
	OpeningLine    string   `json:"opening_line"`
	FollowUpLine   string   `json:"follow_up_line"`
	ConversionProb int      `json:"conversion_prob"`
	PainPoints     []string `json:"pain_points"`
	IdealOffer     string   `json:"ideal_offer"`
}

// parseAnalysis repairs and decodes the model's reply. Scores are clamped
// into range; an invalid interest value rejects the whole reply.
func parseAnalysis(text string) (model.Analysis, error) {
	cleaned, err := NormalizeResponse(text)
	if err != nil {
		return model.Analysis{}, err
	}

	var p analysisPayload
	if err := json.Unmarshal(cleaned, &p); err != nil {
		return model.Analysis{}, eris.Wrap(err, "enrich: decode analysis")
	}

	interest, err := model.ParseInterest(p.Interest)
	if err != nil {
		return model.Analysis{}, err
	}

	a := model.Analysis{
		Score:          p.Score,
		Interest:       interest,
		Reasoning:      p.Reasoning,
		Offerings:      p.Offerings,
		OpeningLine:    p.OpeningLine,
		FollowUpLine:   p.FollowUpLine,
		ConversionProb: p.ConversionProb,
		PainPoints:     p.PainPoints,
		IdealOffer:     p.IdealOffer,
	}
	a.ClampScores()
	return a, nil
}
