// Package localdir adapts a local business directory API to the lead source
// contract.
package localdir

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/source"
)

// Config holds the directory API settings.
type Config struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Key         string `yaml:"key" mapstructure:"key"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinDelayMs  int    `yaml:"min_delay_ms" mapstructure:"min_delay_ms"`
}

// Adapter implements source.Adapter against a local directory endpoint.
type Adapter struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// New creates the local-directory adapter.
func New(cfg Config) *Adapter {
	timeout := 20 * time.Second
	if cfg.TimeoutSecs > 0 {
		timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	minDelay := 200 * time.Millisecond
	if cfg.MinDelayMs > 0 {
		minDelay = time.Duration(cfg.MinDelayMs) * time.Millisecond
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.Key != "" {
		client.SetHeader("X-Api-Key", cfg.Key)
	}

	return &Adapter{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
	}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return "localdir" }

// Tag implements source.Adapter.
func (a *Adapter) Tag() model.SourceTag { return model.SourceLocalDir }

// listing mirrors one entry of the directory response.
type listing struct {
	Title       string   `json:"title"`
	Contact     string   `json:"contact"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	WebsiteURL  string   `json:"website_url"`
	Street      string   `json:"street"`
	City        string   `json:"city"`
	Categories  []string `json:"categories"`
	AvgRating   *float64 `json:"avg_rating"`
	ReviewCount int      `json:"review_count"`
	Description string   `json:"description"`
	Hours       []string `json:"hours"`
}

type searchResponse struct {
	Listings []listing `json:"listings"`
	Total    int       `json:"total"`
}

// Fetch implements source.Adapter.
func (a *Adapter) Fetch(ctx context.Context, q source.Query) ([]model.Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "localdir: rate limit wait")
	}

	params := map[string]string{
		"what":  q.Term,
		"limit": strconv.Itoa(q.Limit),
	}
	if q.Location != "" {
		params["where"] = q.Location
	}

	var payload searchResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&payload).
		Get("/api/listings/search")
	if err != nil {
		return nil, eris.Wrap(err, "localdir: search request")
	}
	if resp.IsError() {
		return nil, eris.Errorf("localdir: search returned HTTP %d", resp.StatusCode())
	}

	candidates := make([]model.Candidate, 0, len(payload.Listings))
	for _, l := range payload.Listings {
		if len(candidates) >= q.Limit {
			break
		}
		c := a.toCandidate(l, q.Location)
		if err := c.Validate(); err != nil {
			zap.L().Debug("localdir: skipping invalid listing", zap.Error(err))
			continue
		}
		candidates = append(candidates, c)
	}

	zap.L().Debug("localdir: fetch complete",
		zap.String("term", q.Term),
		zap.Int("returned", len(candidates)),
	)
	return candidates, nil
}

func (a *Adapter) toCandidate(l listing, fallbackCity string) model.Candidate {
	city := l.City
	if city == "" {
		city = fallbackCity
	}

	var category string
	if len(l.Categories) > 0 {
		category = l.Categories[0]
	}

	return model.Candidate{
		BusinessName: strings.TrimSpace(l.Title),
		ContactName:  l.Contact,
		Phone:        l.Phone,
		Email:        l.Email,
		Website:      l.WebsiteURL,
		Address:      l.Street,
		City:         city,
		Category:     category,
		Rating:       l.AvgRating,
		ReviewCount:  l.ReviewCount,
		Description:  l.Description,
		OpeningHours: l.Hours,
		Attributes:   l.Categories,
		Source:       model.SourceLocalDir,
	}
}
