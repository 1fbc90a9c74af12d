// Package maps adapts a places-search API (map listings) to the lead source
// contract.
package maps

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/source"
)

// Config holds the places API settings.
type Config struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Key         string `yaml:"key" mapstructure:"key"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinDelayMs  int    `yaml:"min_delay_ms" mapstructure:"min_delay_ms"`
}

// Adapter implements source.Adapter against a places-search endpoint.
type Adapter struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// New creates the map-listing adapter.
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
		client.SetQueryParam("key", cfg.Key)
	}

	return &Adapter{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
	}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return "maps" }

// Tag implements source.Adapter.
func (a *Adapter) Tag() model.SourceTag { return model.SourceMapListing }

// placeResult mirrors one entry of the places response.
type placeResult struct {
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	FormattedPhone   string   `json:"formatted_phone_number"`
	Website          string   `json:"website"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	PriceLevel       int      `json:"price_level"`
	Types            []string `json:"types"`
	Vicinity         string   `json:"vicinity"`
	OpeningHours     struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	EditorialSummary struct {
		Overview string `json:"overview"`
	} `json:"editorial_summary"`
}

type searchResponse struct {
	Status  string        `json:"status"`
	Results []placeResult `json:"results"`
}

// Fetch implements source.Adapter.
func (a *Adapter) Fetch(ctx context.Context, q source.Query) ([]model.Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "maps: rate limit wait")
	}

	term := q.Term
	if q.Location != "" {
		term += " in " + q.Location
	}

	var payload searchResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("query", term).
		SetResult(&payload).
		Get("/textsearch/json")
	if err != nil {
		return nil, eris.Wrap(err, "maps: search request")
	}
	if resp.IsError() {
		return nil, eris.Errorf("maps: search returned HTTP %d", resp.StatusCode())
	}
	if payload.Status != "" && payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		return nil, eris.Errorf("maps: search status %s", payload.Status)
	}

	candidates := make([]model.Candidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		if len(candidates) >= q.Limit {
			break
		}
		c := a.toCandidate(r, q.Location)
		if err := c.Validate(); err != nil {
			zap.L().Debug("maps: skipping invalid result", zap.Error(err))
			continue
		}
		candidates = append(candidates, c)
	}

	zap.L().Debug("maps: fetch complete",
		zap.String("term", q.Term),
		zap.Int("returned", len(candidates)),
	)
	return candidates, nil
}

func (a *Adapter) toCandidate(r placeResult, city string) model.Candidate {
	address := r.FormattedAddress
	if address == "" {
		address = r.Vicinity
	}

	return model.Candidate{
		BusinessName: strings.TrimSpace(r.Name),
		Phone:        r.FormattedPhone,
		Website:      r.Website,
		Address:      address,
		City:         city,
		Category:     primaryType(r.Types),
		Rating:       r.Rating,
		ReviewCount:  r.UserRatingsTotal,
		PriceTier:    priceTier(r.PriceLevel),
		Description:  r.EditorialSummary.Overview,
		OpeningHours: r.OpeningHours.WeekdayText,
		Attributes:   r.Types,
		Source:       model.SourceMapListing,
	}
}

// primaryType picks the first non-generic type as the category.
func primaryType(types []string) string {
	for _, t := range types {
		switch t {
		case "point_of_interest", "establishment":
			continue
		}
		return strings.ReplaceAll(t, "_", " ")
	}
	return ""
}

func priceTier(level int) string {
	if level <= 0 || level > 4 {
		return ""
	}
	return strings.Repeat("$", level)
}
