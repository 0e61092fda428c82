package aggregate

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/research-analyst/internal/config"
	"github.com/jonathan/research-analyst/internal/fetch"
	"github.com/jonathan/research-analyst/internal/ranking"
	"github.com/jonathan/research-analyst/internal/types"
)

// DefaultLimit is the number of ranked sources kept after aggregation.
const DefaultLimit = 20

// Aggregator runs every provider for a task and ranks the combined result.
type Aggregator struct {
	Providers []Provider
	Ranker    *ranking.Ranker
	Limit     int
	Logger    *zap.Logger
}

// New creates an Aggregator over providers.
func New(ranker *ranking.Ranker, logger *zap.Logger, providers ...Provider) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{Providers: providers, Ranker: ranker, Limit: DefaultLimit, Logger: logger}
}

// FromConfig builds the standard provider set from cfg: NewsAPI when a key
// is configured, RSS feeds, seed pages and internal notes.
func FromConfig(cfg *config.Config, ranker *ranking.Ranker, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}

	var providers []Provider
	if cfg.NewsAPIKey != "" {
		providers = append(providers, NewNewsAPIProvider(cfg.NewsAPIBaseURL, cfg.NewsAPIKey))
	}
	if len(cfg.RSSFeeds) > 0 {
		providers = append(providers, NewRSSProvider(cfg.RSSFeeds, logger))
	}
	if len(cfg.SeedURLs) > 0 {
		fetcher := fetch.NewFetcher(fetch.FetcherConfig{
			UseBrowser:     cfg.UseBrowser,
			BrowserTimeout: fetch.DefaultBrowserTimeout,
			Logger:         logger,
		})
		providers = append(providers, NewWebProvider(cfg.SeedURLs, fetcher, logger))
	}
	if len(cfg.InternalSources) > 0 {
		providers = append(providers, NewStaticProvider(cfg.InternalSources))
	}
	return New(ranker, logger, providers...)
}

// Aggregate appends the output of every provider to existing, ranks the
// result against task and returns the top Limit sources. When an ID occurs
// more than once the first occurrence is kept, so existing sources win over
// re-fetched copies. Providers run
// concurrently; a provider error is logged and its output dropped. The
// only error returned is the context's.
func (a *Aggregator) Aggregate(ctx context.Context, task *types.Task, existing []types.Source) ([]types.Source, error) {
	terms := SearchTerms(task)
	a.Logger.Debug("aggregating sources",
		zap.String("task_id", task.ID),
		zap.Strings("terms", terms),
		zap.Int("providers", len(a.Providers)))

	results := make([][]types.Source, len(a.Providers))
	g, gCtx := errgroup.WithContext(ctx)
	for i, provider := range a.Providers {
		g.Go(func() error {
			start := time.Now()
			sources, err := provider.Fetch(gCtx, task, terms)
			if err != nil {
				a.Logger.Warn("source provider failed",
					zap.String("provider", provider.Name()),
					zap.Error(err))
				return nil
			}
			a.Logger.Debug("source provider finished",
				zap.String("provider", provider.Name()),
				zap.Int("sources", len(sources)),
				zap.Duration("duration", time.Since(start)))
			results[i] = sources
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	combined := make([]types.Source, 0, len(existing))
	combined = append(combined, existing...)
	for _, sources := range results {
		combined = append(combined, sources...)
	}

	ranker := a.Ranker
	if ranker == nil {
		ranker = ranking.NewRanker(ranking.DefaultRecency())
	}
	ranked := ranker.Rank(task, dedupe(combined))

	limit := a.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
