package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderUnavailable marks transport-level failures against the metadata
// provider: timeouts, connection errors, non-2xx responses. The underlying
// cause is wrapped and logged, never exposed to API callers.
var ErrProviderUnavailable = errors.New("metadata provider unavailable")

// NotFoundError is returned when the provider explicitly reports no match
// for a title or id. It is a structured outcome, not a transport failure.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Reason == "" {
		return "no movies found"
	}
	return e.Reason
}

// MovieSummary is the minimal record produced by a provider title search.
type MovieSummary struct {
	ID        string `json:"imdbID"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	MediaType string `json:"mediaType"`
	PosterURL string `json:"poster,omitempty"`
}

// MovieDetail is the full record produced by a provider detail lookup.
type MovieDetail struct {
	MovieSummary
	Plot     string `json:"plot,omitempty"`
	Director string `json:"director,omitempty"`
	Actors   string `json:"actors,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Runtime  string `json:"runtime,omitempty"`
	Rating   string `json:"rating,omitempty"`
	Awards   string `json:"awards,omitempty"`
}

// EnrichedMovie is a search hit merged with the detail-only fields. The id is
// the join key and is never changed by enrichment; when the detail lookup
// fails, all enrichment fields stay empty and the summary fields survive.
type EnrichedMovie struct {
	MovieSummary
	Plot     string `json:"plot,omitempty"`
	Director string `json:"director,omitempty"`
	Actors   string `json:"actors,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Runtime  string `json:"runtime,omitempty"`
	Rating   string `json:"rating,omitempty"`
	Awards   string `json:"awards,omitempty"`
}

// MergeDetail combines a search hit with the enrichment fields of its detail
// record. Summary fields always come from the hit, so a detail payload can
// never rewrite the id the caller joined on.
func MergeDetail(summary MovieSummary, detail MovieDetail) EnrichedMovie {
	return EnrichedMovie{
		MovieSummary: summary,
		Plot:         detail.Plot,
		Director:     detail.Director,
		Actors:       detail.Actors,
		Genre:        detail.Genre,
		Runtime:      detail.Runtime,
		Rating:       detail.Rating,
		Awards:       detail.Awards,
	}
}

// SearchRequest carries one title search through the aggregation core.
type SearchRequest struct {
	Query      string
	Page       int
	CallerAddr string
}

// SearchPage is the final, cacheable outcome of one search. A provider
// "no match" produces Success=false with the provider's message; that page is
// cached verbatim like any other.
type SearchPage struct {
	Success      bool            `json:"success"`
	Error        string          `json:"error,omitempty"`
	Movies       []EnrichedMovie `json:"movies"`
	TotalResults int             `json:"totalResults"`
	Page         int             `json:"currentPage"`
	TotalPages   int             `json:"totalPages"`
}

// ProviderSearchPage is one raw page of hits as reported by the provider.
type ProviderSearchPage struct {
	Hits         []MovieSummary
	TotalResults int
}

// HistoryEntry is the fire-and-forget record emitted after a matched search.
type HistoryEntry struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	ResultCount int       `json:"resultCount"`
	CallerAddr  string    `json:"callerAddr,omitempty"`
	SearchedAt  time.Time `json:"searchedAt"`
}

func (e HistoryEntry) String() string {
	return fmt.Sprintf("%s (%d results)", e.Query, e.ResultCount)
}
