package search

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"moviestream/searchservice/internal/domain"
	"moviestream/searchservice/internal/metrics"
)

// maxConcurrentEnrichments bounds the detail-lookup fan-out within one batch.
// A batch is at most one provider page (10 hits) today, so the bound only
// matters if the page size ever grows.
const maxConcurrentEnrichments = 10

// Enricher turns search hits into enriched records by fetching the detail
// record for each hit. Failure policy is graceful degradation: a failed
// detail call yields the summary with enrichment fields absent, never an
// error, so one broken id cannot fail a whole page.
type Enricher struct {
	provider Provider
	logger   *slog.Logger
}

func NewEnricher(provider Provider, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{provider: provider, logger: logger}
}

func (e *Enricher) Enrich(ctx context.Context, summary domain.MovieSummary) domain.EnrichedMovie {
	detail, err := e.provider.FetchDetail(ctx, summary.ID)
	if err != nil {
		metrics.EnrichmentFailuresTotal.Inc()
		e.logger.Warn("detail enrichment degraded",
			slog.String("imdbID", summary.ID),
			slog.String("error", err.Error()),
		)
		return domain.EnrichedMovie{MovieSummary: summary}
	}
	return domain.MergeDetail(summary, detail)
}

// EnrichAll enriches a batch concurrently and returns results in the input
// order, regardless of which detail call finishes first. The call blocks
// until every enrichment has completed or degraded; a timeout on one detail
// call never cancels its siblings.
func (e *Enricher) EnrichAll(ctx context.Context, summaries []domain.MovieSummary) []domain.EnrichedMovie {
	if len(summaries) == 0 {
		return []domain.EnrichedMovie{}
	}

	enriched := make([]domain.EnrichedMovie, len(summaries))
	sem := semaphore.NewWeighted(maxConcurrentEnrichments)
	var wg sync.WaitGroup

	for i, summary := range summaries {
		wg.Add(1)
		go func(index int, summary domain.MovieSummary) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				enriched[index] = domain.EnrichedMovie{MovieSummary: summary}
				return
			}
			defer sem.Release(1)
			enriched[index] = e.Enrich(ctx, summary)
		}(i, summary)
	}
	wg.Wait()
	return enriched
}
