// Package b2b adapts a B2B company directory API to the lead source contract.
package b2b

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

// Config holds the company directory API settings.
type Config struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Key         string `yaml:"key" mapstructure:"key"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinDelayMs  int    `yaml:"min_delay_ms" mapstructure:"min_delay_ms"`
}

// Adapter implements source.Adapter against a company directory endpoint.
type Adapter struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// New creates the B2B directory adapter.
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
func (a *Adapter) Name() string { return "b2b" }

// Tag implements source.Adapter.
func (a *Adapter) Tag() model.SourceTag { return model.SourceB2BDir }

// company mirrors one entry of the directory response. The directory keys
// companies by domain rather than a full URL.
type company struct {
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Domain        string `json:"domain"`
	Industry      string `json:"industry"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Summary       string `json:"summary"`
	Employees     int    `json:"employees"`
}

type searchResponse struct {
	Companies []company `json:"companies"`
	Page      int       `json:"page"`
	PerPage   int       `json:"per_page"`
}

// Fetch implements source.Adapter.
func (a *Adapter) Fetch(ctx context.Context, q source.Query) ([]model.Candidate, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "b2b: rate limit wait")
	}

	params := map[string]string{
		"industry": q.Term,
		"per_page": strconv.Itoa(q.Limit),
	}
	if q.Location != "" {
		params["city"] = q.Location
	}

	var payload searchResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&payload).
		Get("/v1/companies")
	if err != nil {
		return nil, eris.Wrap(err, "b2b: search request")
	}
	if resp.IsError() {
		return nil, eris.Errorf("b2b: search returned HTTP %d", resp.StatusCode())
	}

	candidates := make([]model.Candidate, 0, len(payload.Companies))
	for _, co := range payload.Companies {
		if len(candidates) >= q.Limit {
			break
		}
		c := a.toCandidate(co)
		if err := c.Validate(); err != nil {
			zap.L().Debug("b2b: skipping invalid company", zap.Error(err))
			continue
		}
		candidates = append(candidates, c)
	}

	zap.L().Debug("b2b: fetch complete",
		zap.String("term", q.Term),
		zap.Int("returned", len(candidates)),
	)
	return candidates, nil
}

func (a *Adapter) toCandidate(co company) model.Candidate {
	var attrs []string
	if co.Employees > 0 {
		attrs = append(attrs, "employees:"+strconv.Itoa(co.Employees))
	}

	return model.Candidate{
		BusinessName: strings.TrimSpace(co.CompanyName),
		ContactName:  co.ContactPerson,
		Phone:        co.Phone,
		Email:        co.Email,
		Website:      websiteFromDomain(co.Domain),
		Address:      co.Address,
		City:         co.City,
		Category:     co.Industry,
		Description:  co.Summary,
		Attributes:   attrs,
		Source:       model.SourceB2BDir,
	}
}

// websiteFromDomain turns a bare domain into a URL, passing full URLs through.
func websiteFromDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}
