package search

import (
	"context"
	"errors"
	"time"

	"moviestream/searchservice/internal/domain"
	"moviestream/searchservice/internal/metrics"
)

var (
	ErrQueryRequired = errors.New("query is required")
	ErrQueryTooLong  = errors.New("query must be at most 100 characters")
	ErrInvalidPage   = errors.New("page must be between 1 and 100")
)

const (
	maxQueryLength = 100
	minPage        = 1
	maxPage        = 100

	// pageSize matches the provider's fixed search page size.
	pageSize = 10
)

// Provider is the outbound contract to the movie metadata API: one call for a
// page of search hits, one call for the full detail record of a single id.
type Provider interface {
	SearchTitle(ctx context.Context, query string, page int) (domain.ProviderSearchPage, error)
	FetchDetail(ctx context.Context, id string) (domain.MovieDetail, error)
}

// instrumentedProvider wraps every provider call with duration and status
// metrics so the omdb package stays free of metrics plumbing.
type instrumentedProvider struct {
	inner Provider
}

func instrument(p Provider) Provider {
	return &instrumentedProvider{inner: p}
}

func (p *instrumentedProvider) SearchTitle(ctx context.Context, query string, page int) (domain.ProviderSearchPage, error) {
	startedAt := time.Now()
	result, err := p.inner.SearchTitle(ctx, query, page)
	observeProviderCall("search", startedAt, err)
	return result, err
}

func (p *instrumentedProvider) FetchDetail(ctx context.Context, id string) (domain.MovieDetail, error) {
	startedAt := time.Now()
	detail, err := p.inner.FetchDetail(ctx, id)
	observeProviderCall("detail", startedAt, err)
	return detail, err
}

func observeProviderCall(operation string, startedAt time.Time, err error) {
	metrics.ProviderRequestDuration.WithLabelValues(operation).Observe(time.Since(startedAt).Seconds())
	status := "ok"
	var notFound *domain.NotFoundError
	switch {
	case err == nil:
	case errors.As(err, &notFound):
		status = "not_found"
	default:
		status = "error"
	}
	metrics.ProviderRequestsTotal.WithLabelValues(operation, status).Inc()
}
