// Package reviews adapts a consumer reviews directory API to the lead source
// contract.
package reviews

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

// Config holds the reviews API settings.
type Config struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Key         string `yaml:"key" mapstructure:"key"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinDelayMs  int    `yaml:"min_delay_ms" mapstructure:"min_delay_ms"`
}

// Adapter implements source.Adapter against a reviews directory endpoint.
type Adapter struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// New creates the reviews-directory adapter.
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
		client.SetAuthToken(cfg.Key)
	}

	return &Adapter{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
	}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return "reviews" }

// Tag implements source.Adapter.
func (a *Adapter) Tag() model.SourceTag { return model.SourceReviewsDir }

// business mirrors one entry of the reviews response. The listing URL points
// at the review site itself, never the business's own website, so it is not
// mapped.
type business struct {
	Name         string   `json:"name"`
	DisplayPhone string   `json:"display_phone"`
	Rating       *float64 `json:"rating"`
	ReviewCount  int      `json:"review_count"`
	Price        string   `json:"price"`
	Categories   []struct {
		Alias string `json:"alias"`
		Title string `json:"title"`
	} `json:"categories"`
	Location struct {
		Address1 string `json:"address1"`
		City     string `json:"city"`
	} `json:"location"`
	Snippet string `json:"snippet_text"`
}

type searchResponse struct {
	Businesses []business `json:"businesses"`
	Total      int        `json:"total"`
}

// Fetch implements source.Adapter.
func (a *Adapter) Fetch(ctx context.Context, q source.Query) ([]model.Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "reviews: rate limit wait")
	}

	params := map[string]string{
		"term":  q.Term,
		"limit": strconv.Itoa(q.Limit),
	}
	if q.Location != "" {
		params["location"] = q.Location
	}

	var payload searchResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&payload).
		Get("/v3/businesses/search")
	if err != nil {
		return nil, eris.Wrap(err, "reviews: search request")
	}
	if resp.IsError() {
		return nil, eris.Errorf("reviews: search returned HTTP %d", resp.StatusCode())
	}

	candidates := make([]model.Candidate, 0, len(payload.Businesses))
	for _, b := range payload.Businesses {
		if len(candidates) >= q.Limit {
			break
		}
		c := a.toCandidate(b, q.Location)
		if err := c.Validate(); err != nil {
			zap.L().Debug("reviews: skipping invalid business", zap.Error(err))
			continue
		}
		candidates = append(candidates, c)
	}

	zap.L().Debug("reviews: fetch complete",
		zap.String("term", q.Term),
		zap.Int("returned", len(candidates)),
	)
	return candidates, nil
}

func (a *Adapter) toCandidate(b business, fallbackCity string) model.Candidate {
	city := b.Location.City
	if city == "" {
		city = fallbackCity
	}

	var category string
	attrs := make([]string, 0, len(b.Categories))
	for _, cat := range b.Categories {
		if category == "" {
			category = cat.Title
		}
		attrs = append(attrs, cat.Alias)
	}

	return model.Candidate{
		BusinessName: strings.TrimSpace(b.Name),
		Phone:        b.DisplayPhone,
		Address:      b.Location.Address1,
		City:         city,
		Category:     category,
		Rating:       b.Rating,
		ReviewCount:  b.ReviewCount,
		PriceTier:    b.Price,
		Description:  b.Snippet,
		Attributes:   attrs,
		Source:       model.SourceReviewsDir,
	}
}
