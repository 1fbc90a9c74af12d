package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/enrich"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/quota"
	"github.com/sells-group/leadgen-cli/internal/source"
	"github.com/sells-group/leadgen-cli/internal/source/b2b"
	"github.com/sells-group/leadgen-cli/internal/source/localdir"
	"github.com/sells-group/leadgen-cli/internal/source/maps"
	"github.com/sells-group/leadgen-cli/internal/source/reviews"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/pkg/anthropic"
)

// pipelineEnv holds the initialized store, quota guard, and pipeline needed
// by the acquire/serve commands.
type pipelineEnv struct {
	Store    store.Store // nil when the store is unavailable
	Guard    *quota.Guard
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured lead store.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "leads.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initLeadStore opens and migrates the store, failing when it is required.
func initLeadStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// buildRegistry registers every configured source adapter.
func buildRegistry() *source.Registry {
	reg := source.NewRegistry()
	reg.Register(maps.New(cfg.Sources.Maps))
	reg.Register(localdir.New(cfg.Sources.LocalDir))
	reg.Register(b2b.New(cfg.Sources.B2B))
	reg.Register(reviews.New(cfg.Sources.Reviews))
	return reg
}

// initPipeline sets up the store, quota guard, enrichment service, and
// source registry. A failing store degrades the run instead of aborting it:
// acquisition still scrapes and dedupes. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initLeadStore(ctx)
	if err != nil {
		zap.L().Warn("store unavailable, running without persistence", zap.Error(err))
		st = nil
	}

	guard := quota.NewGuard(cfg.Quota.DailyLimit)

	heuristic, err := enrich.NewHeuristic(enrich.HeuristicConfig{
		MinRating:  cfg.Heuristic.MinRating,
		MinReviews: cfg.Heuristic.MinReviews,
	})
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	var client anthropic.Client
	if cfg.Anthropic.Key != "" {
		client = anthropic.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Warn("LEADGEN_ANTHROPIC_KEY not set, AI enrichment disabled")
	}

	svc := enrich.NewService(client, guard, heuristic, enrich.Config{
		Model:         cfg.Anthropic.Model,
		MaxTokens:     int64(cfg.Anthropic.MaxTokens),
		MaxRetries:    cfg.Enrich.MaxRetries,
		BaseBackoffMs: cfg.Enrich.BaseBackoffMs,
		PacingMs:      cfg.Enrich.PacingMs,
	})

	p := pipeline.New(buildRegistry(), svc, st, cfg.Enrich.HotScoreThreshold)

	return &pipelineEnv{Store: st, Guard: guard, Pipeline: p}, nil
}
