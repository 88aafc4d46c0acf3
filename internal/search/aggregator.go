package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"moviestream/searchservice/internal/domain"
	"moviestream/searchservice/internal/metrics"
)

// Service is the search aggregation core: it validates a title query, serves
// it from the response cache when possible, and otherwise fans a provider
// page out through the enricher before caching the assembled result.
type Service struct {
	provider Provider
	enricher *Enricher
	cache    Cache
	ttl      time.Duration
	logger   *slog.Logger
	history  *historyDispatcher
}

type ServiceOption func(*Service)

func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistory attaches a fire-and-forget history sink. Notifications are
// queued on a bounded buffer and recorded by a background worker; a full
// buffer drops the entry rather than blocking a search.
func WithHistory(recorder HistoryRecorder, buffer int) ServiceOption {
	return func(s *Service) {
		s.history = newHistoryDispatcher(recorder, buffer, s.logger)
	}
}

func NewService(provider Provider, cache Cache, opts ...ServiceOption) *Service {
	svc := &Service{
		provider: instrument(provider),
		cache:    cache,
		ttl:      defaultCacheTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.history != nil && svc.history.logger == nil {
		svc.history.logger = svc.logger
	}
	svc.enricher = NewEnricher(svc.provider, svc.logger)
	return svc
}

// StartBackground starts the history worker. It is a no-op when no history
// sink is configured, and returns immediately; the worker stops when ctx is
// cancelled.
func (s *Service) StartBackground(ctx context.Context) {
	if s.history != nil {
		s.history.Start(ctx)
	}
}

// Search runs one title search. Validation and provider "no match" outcomes
// are terminal results; only transport-level provider failures surface as
// errors. A "no match" page is cached verbatim under the same key as a
// success, so a transient empty result lives for the full TTL.
func (s *Service) Search(ctx context.Context, request domain.SearchRequest) (domain.SearchPage, error) {
	query := strings.TrimSpace(request.Query)
	if err := validateSearch(query, request.Page); err != nil {
		return domain.SearchPage{}, err
	}

	cacheKey := searchCacheKey(query, request.Page)
	if page, ok := s.cachedPage(ctx, cacheKey); ok {
		return page, nil
	}

	raw, err := s.provider.SearchTitle(ctx, query, request.Page)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			page := noMatchPage(request.Page, notFound)
			s.storePage(ctx, cacheKey, page)
			return page, nil
		}
		s.logger.Error("provider search failed",
			slog.String("query", query),
			slog.Int("page", request.Page),
			slog.String("error", err.Error()),
		)
		return domain.SearchPage{}, err
	}

	page := domain.SearchPage{
		Success:      true,
		Movies:       s.enricher.EnrichAll(ctx, raw.Hits),
		TotalResults: raw.TotalResults,
		Page:         request.Page,
		TotalPages:   totalPages(raw.TotalResults),
	}
	s.storePage(ctx, cacheKey, page)
	s.notifyHistory(query, len(page.Movies), request.CallerAddr)

	s.logger.Info("search completed",
		slog.String("query", query),
		slog.Int("page", request.Page),
		slog.Int("totalResults", page.TotalResults),
	)
	return page, nil
}

func validateSearch(query string, page int) error {
	if query == "" {
		return ErrQueryRequired
	}
	if len(query) > maxQueryLength {
		return ErrQueryTooLong
	}
	if page < minPage || page > maxPage {
		return ErrInvalidPage
	}
	return nil
}

func totalPages(totalResults int) int {
	if totalResults <= 0 {
		return 0
	}
	return (totalResults + pageSize - 1) / pageSize
}

func noMatchPage(page int, notFound *domain.NotFoundError) domain.SearchPage {
	message := strings.TrimSpace(notFound.Reason)
	if message == "" {
		message = "No movies found"
	}
	return domain.SearchPage{
		Success: false,
		Error:   message,
		Movies:  []domain.EnrichedMovie{},
		Page:    page,
	}
}

func (s *Service) cachedPage(ctx context.Context, key string) (domain.SearchPage, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if err != nil || !ok {
		metrics.CacheMissesTotal.Inc()
		return domain.SearchPage{}, false
	}
	var page domain.SearchPage
	if err := json.Unmarshal(data, &page); err != nil {
		s.logger.Warn("cache entry corrupt", slog.String("key", key), slog.String("error", err.Error()))
		metrics.CacheMissesTotal.Inc()
		return domain.SearchPage{}, false
	}
	metrics.CacheHitsTotal.Inc()
	return page, true
}

func (s *Service) storePage(ctx context.Context, key string, page domain.SearchPage) {
	data, err := json.Marshal(page)
	if err != nil {
		s.logger.Warn("cache marshal failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	// Concurrent misses for the same key may both store; entries are derived
	// deterministically from the same inputs, so last write wins is fine.
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (s *Service) notifyHistory(query string, resultCount int, callerAddr string) {
	if s.history == nil {
		return
	}
	s.history.Notify(domain.HistoryEntry{
		Query:       query,
		ResultCount: resultCount,
		CallerAddr:  callerAddr,
		SearchedAt:  time.Now().UTC(),
	})
}
