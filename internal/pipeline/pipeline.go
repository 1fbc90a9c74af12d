// Package pipeline orchestrates one acquisition run: fan out to the selected
// sources, merge and deduplicate, enrich survivors, persist.
package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadgen-cli/internal/dedupe"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// Analyzer is the slice of the enrichment service the pipeline needs.
type Analyzer interface {
	Analyze(ctx context.Context, c model.Candidate) model.Analysis
}

// AcquireRequest describes one acquisition run.
type AcquireRequest struct {
	Query    string            `json:"query"`
	Location string            `json:"location,omitempty"`
	Limit    int               `json:"limit"`
	Sources  []model.SourceTag `json:"sources,omitempty"` // empty = all registered
}

// SourceReport records how one source fared during the fan-out.
type SourceReport struct {
	Count int    `json:"count"`
	Err   string `json:"error,omitempty"`
}

// Summary is the result of one acquisition run.
type Summary struct {
	PerSource    map[model.SourceTag]SourceReport `json:"per_source"`
	TotalScraped int                              `json:"total_scraped"`
	Unique       int                              `json:"unique"`
	Duplicates   int                              `json:"duplicates"`
	Saved        int                              `json:"saved"`
	Hot          int                              `json:"hot"`
	Candidates   []model.Candidate                `json:"candidates"`
}

// Pipeline wires the registry, enrichment, and store into one run loop.
type Pipeline struct {
	registry     *source.Registry
	analyzer     Analyzer
	store        store.Store // nil = run without persistence
	hotThreshold int
}

// New creates a Pipeline. store may be nil; the run then skips duplicate
// checks and persistence but still scrapes and dedupes.
func New(registry *source.Registry, analyzer Analyzer, st store.Store, hotThreshold int) *Pipeline {
	if hotThreshold <= 0 {
		hotThreshold = 80
	}
	return &Pipeline{
		registry:     registry,
		analyzer:     analyzer,
		store:        st,
		hotThreshold: hotThreshold,
	}
}

// sourceOutcome captures one adapter's result so a failure never cancels the
// sibling fetches.
type sourceOutcome struct {
	tag        model.SourceTag
	candidates []model.Candidate
	err        error
}

// Acquire runs one acquisition. It errors only on an invalid request or when
// no adapter matches the requested sources; individual source failures and a
// missing store degrade the run instead.
func (p *Pipeline) Acquire(ctx context.Context, req AcquireRequest) (*Summary, error) {
	log := zap.L().With(zap.String("component", "pipeline"))

	if strings.TrimSpace(req.Query) == "" {
		return nil, eris.New("pipeline: query is required")
	}
	if req.Limit <= 0 {
		return nil, eris.Errorf("pipeline: limit must be positive, got %d", req.Limit)
	}

	adapters, err := p.registry.Select(req.Sources)
	if err != nil {
		return nil, err
	}
	if len(adapters) == 0 {
		return nil, eris.New("pipeline: no sources registered")
	}

	// Ceil split so the per-source limits sum to at least the request limit.
	perSource := (req.Limit + len(adapters) - 1) / len(adapters)

	log.Info("acquisition starting",
		zap.String("query", req.Query),
		zap.String("location", req.Location),
		zap.Int("limit", req.Limit),
		zap.Int("sources", len(adapters)),
		zap.Int("per_source_limit", perSource),
	)

	outcomes := make([]sourceOutcome, len(adapters))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range adapters {
		g.Go(func() error {
			cands, err := a.Fetch(gctx, source.Query{
				Term:     req.Query,
				Location: req.Location,
				Limit:    perSource,
			})
			if err != nil {
				log.Warn("source fetch failed",
					zap.String("source", a.Name()),
					zap.Error(err),
				)
			}
			outcomes[i] = sourceOutcome{tag: a.Tag(), candidates: cands, err: err}
			return nil // settle all sources, never cancel siblings
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: fan-out")
	}

	summary := &Summary{PerSource: make(map[model.SourceTag]SourceReport, len(adapters))}

	// Merge in adapter order so runs are deterministic for a fixed registry.
	var merged []model.Candidate
	for _, o := range outcomes {
		report := SourceReport{Count: len(o.candidates)}
		if o.err != nil {
			report.Err = o.err.Error()
		}
		summary.PerSource[o.tag] = report

		for _, c := range o.candidates {
			c.Source = o.tag
			merged = append(merged, c)
		}
	}
	summary.TotalScraped = len(merged)

	unique := dedupe.Batch(merged)
	summary.Unique = len(unique)

	summary.Candidates = p.persist(ctx, unique, summary)

	log.Info("acquisition complete",
		zap.Int("scraped", summary.TotalScraped),
		zap.Int("unique", summary.Unique),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("saved", summary.Saved),
		zap.Int("hot", summary.Hot),
	)
	return summary, nil
}

// persist walks the unique candidates sequentially: store duplicate check,
// enrichment, save. It returns the candidates that survived the store check.
// Without a store every candidate survives and nothing is saved; a failing
// duplicate check degrades the same way for the remainder of the run.
func (p *Pipeline) persist(ctx context.Context, unique []model.Candidate, summary *Summary) []model.Candidate {
	log := zap.L().With(zap.String("component", "pipeline"))

	if p.store == nil {
		return unique
	}

	survivors := make([]model.Candidate, 0, len(unique))
	storeDown := false
	for i, c := range unique {
		if storeDown {
			survivors = append(survivors, c)
			continue
		}

		dup, err := dedupe.ExistsInStore(ctx, p.store, c)
		if err != nil {
			log.Warn("store unavailable, continuing without persistence",
				zap.String("business", c.BusinessName),
				zap.Error(err),
			)
			storeDown = true
			survivors = append(survivors, unique[i])
			continue
		}
		if dup {
			summary.Duplicates++
			log.Debug("skipping persisted duplicate", zap.String("business", c.BusinessName))
			continue
		}

		analysis := p.analyzer.Analyze(ctx, c)
		lead := model.NewLead(c, analysis, p.hotThreshold)

		if err := p.store.SaveLead(ctx, lead); err != nil {
			log.Warn("lead save failed, skipping",
				zap.String("business", c.BusinessName),
				zap.Error(err),
			)
			survivors = append(survivors, c)
			continue
		}

		summary.Saved++
		if lead.Hot {
			summary.Hot++
		}
		survivors = append(survivors, c)
	}
	return survivors
}
