package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"moviestream/searchservice/internal/domain"
	"moviestream/searchservice/internal/metrics"
)

const (
	// hitsPerSeed is how many leading hits each seed query contributes.
	hitsPerSeed = 3
	// maxPopularMovies caps the curated list after deduplication.
	maxPopularMovies = 25
)

// defaultSeedQueries is the fixed curated query set behind the "popular"
// list. There is no real popularity signal; the list is whatever these
// searches return.
var defaultSeedQueries = []string{
	"Marvel",
	"Batman",
	"Star Wars",
	"Harry Potter",
	"Spider-Man",
	"Lord of the Rings",
	"Jurassic",
	"Mission Impossible",
}

// Curator assembles the popular list by running the fixed seed queries
// through the same search-and-enrich path as a user search, deduplicating
// across seeds and capping the result.
type Curator struct {
	provider Provider
	enricher *Enricher
	cache    Cache
	seeds    []string
	ttl      time.Duration
	logger   *slog.Logger
}

type CuratorOption func(*Curator)

func WithSeedQueries(seeds []string) CuratorOption {
	return func(c *Curator) {
		if len(seeds) > 0 {
			c.seeds = seeds
		}
	}
}

func WithCuratorCacheTTL(ttl time.Duration) CuratorOption {
	return func(c *Curator) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCuratorLogger(logger *slog.Logger) CuratorOption {
	return func(c *Curator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCurator(provider Provider, cache Cache, opts ...CuratorOption) *Curator {
	curator := &Curator{
		provider: instrument(provider),
		cache:    cache,
		seeds:    defaultSeedQueries,
		ttl:      defaultCacheTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(curator)
	}
	curator.enricher = NewEnricher(curator.provider, curator.logger)
	return curator
}

// Curate returns the curated list, serving it from cache when possible. A
// failing seed is logged and skipped; only an entirely empty outcome is left
// uncached so the next request can retry the seeds.
func (c *Curator) Curate(ctx context.Context) ([]domain.EnrichedMovie, error) {
	if movies, ok := c.cachedList(ctx); ok {
		return movies, nil
	}

	collected := make([]domain.MovieSummary, 0, len(c.seeds)*hitsPerSeed)
	for _, seed := range c.seeds {
		raw, err := c.provider.SearchTitle(ctx, seed, 1)
		if err != nil {
			c.logger.Warn("popular seed skipped",
				slog.String("seed", seed),
				slog.String("error", err.Error()),
			)
			continue
		}
		hits := raw.Hits
		if len(hits) > hitsPerSeed {
			hits = hits[:hitsPerSeed]
		}
		collected = append(collected, hits...)
	}

	// Dedupe by id keeping first occurrence, then cap. Enrichment happens
	// after the cut so duplicate and overflow ids never cost a detail call.
	unique := dedupeByID(collected)
	if len(unique) > maxPopularMovies {
		unique = unique[:maxPopularMovies]
	}

	movies := c.enricher.EnrichAll(ctx, unique)
	if len(movies) == 0 {
		c.logger.Warn("popular curation produced no movies")
		return movies, nil
	}

	c.storeList(ctx, movies)
	c.logger.Info("popular list curated",
		slog.Int("seeds", len(c.seeds)),
		slog.Int("movies", len(movies)),
	)
	return movies, nil
}

func dedupeByID(summaries []domain.MovieSummary) []domain.MovieSummary {
	seen := make(map[string]struct{}, len(summaries))
	unique := make([]domain.MovieSummary, 0, len(summaries))
	for _, summary := range summaries {
		if _, exists := seen[summary.ID]; exists {
			continue
		}
		seen[summary.ID] = struct{}{}
		unique = append(unique, summary)
	}
	return unique
}

func (c *Curator) cachedList(ctx context.Context) ([]domain.EnrichedMovie, bool) {
	data, ok, err := c.cache.Get(ctx, popularCacheKey)
	if err != nil {
		c.logger.Warn("cache read failed", slog.String("key", popularCacheKey), slog.String("error", err.Error()))
	}
	if err != nil || !ok {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	var movies []domain.EnrichedMovie
	if err := json.Unmarshal(data, &movies); err != nil {
		c.logger.Warn("cache entry corrupt", slog.String("key", popularCacheKey), slog.String("error", err.Error()))
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	return movies, true
}

func (c *Curator) storeList(ctx context.Context, movies []domain.EnrichedMovie) {
	data, err := json.Marshal(movies)
	if err != nil {
		c.logger.Warn("cache marshal failed", slog.String("key", popularCacheKey), slog.String("error", err.Error()))
		return
	}
	if err := c.cache.Set(ctx, popularCacheKey, data, c.ttl); err != nil {
		c.logger.Warn("cache write failed", slog.String("key", popularCacheKey), slog.String("error", err.Error()))
	}
}
