package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"moviestream/searchservice/internal/domain"
	"moviestream/searchservice/internal/metrics"
)

// MovieByID fetches the full detail record for one id, cached under its own
// key. The detail payload is already complete, so no enrichment merge runs.
func (s *Service) MovieByID(ctx context.Context, id string) (domain.MovieDetail, error) {
	cacheKey := movieCacheKey(id)
	if data, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
		var detail domain.MovieDetail
		if json.Unmarshal(data, &detail) == nil {
			metrics.CacheHitsTotal.Inc()
			return detail, nil
		}
	}
	metrics.CacheMissesTotal.Inc()

	detail, err := s.provider.FetchDetail(ctx, id)
	if err != nil {
		return domain.MovieDetail{}, err
	}

	if data, err := json.Marshal(detail); err == nil {
		if err := s.cache.Set(ctx, cacheKey, data, s.ttl); err != nil {
			s.logger.Warn("cache write failed", slog.String("key", cacheKey), slog.String("error", err.Error()))
		}
	}
	return detail, nil
}

// MoviesByIDs fetches detail records for a batch of ids sequentially, reusing
// the per-id cache entries. Ids the provider does not know are skipped;
// transport failures abort the batch.
func (s *Service) MoviesByIDs(ctx context.Context, ids []string) ([]domain.MovieDetail, error) {
	movies := make([]domain.MovieDetail, 0, len(ids))
	for _, id := range ids {
		detail, err := s.MovieByID(ctx, id)
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				s.logger.Warn("movie id skipped", slog.String("imdbID", id), slog.String("error", err.Error()))
				continue
			}
			return nil, err
		}
		movies = append(movies, detail)
	}
	return movies, nil
}
