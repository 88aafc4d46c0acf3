package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moviestream/searchservice/internal/domain"
)

const (
	defaultBaseURL   = "https://www.omdbapi.com"
	defaultUserAgent = "movie-stream-search/1.0"
	defaultTimeout   = 10 * time.Second

	maxResponseBytes = 512 * 1024
)

// Client is a single-purpose HTTP client for the OMDb metadata API. It never
// retries; callers decide what a failed call means for their batch.
type Client struct {
	apiKey    string
	baseURL   string
	userAgent string
	http      *http.Client
}

type Config struct {
	APIKey    string
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      httpClient,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type searchReply struct {
	Search       []searchHit `json:"Search"`
	TotalResults string      `json:"totalResults"`
	Response     string      `json:"Response"`
	Error        string      `json:"Error"`
}

type searchHit struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type detailReply struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	ImdbID     string `json:"imdbID"`
	Type       string `json:"Type"`
	Poster     string `json:"Poster"`
	Plot       string `json:"Plot"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Genre      string `json:"Genre"`
	Runtime    string `json:"Runtime"`
	ImdbRating string `json:"imdbRating"`
	Awards     string `json:"Awards"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// SearchTitle fetches one page of search hits for a title query. The provider
// pages at a fixed size of 10. A provider-reported "no match" comes back as
// *domain.NotFoundError; transport failures as domain.ErrProviderUnavailable.
func (c *Client) SearchTitle(ctx context.Context, query string, page int) (domain.ProviderSearchPage, error) {
	params := url.Values{
		"apikey": {c.apiKey},
		"s":      {strings.TrimSpace(query)},
		"page":   {strconv.Itoa(page)},
	}

	var reply searchReply
	if err := c.do(ctx, params, &reply); err != nil {
		return domain.ProviderSearchPage{}, err
	}
	if !strings.EqualFold(reply.Response, "True") {
		return domain.ProviderSearchPage{}, &domain.NotFoundError{Reason: strings.TrimSpace(reply.Error)}
	}

	hits := make([]domain.MovieSummary, 0, len(reply.Search))
	for _, hit := range reply.Search {
		if strings.TrimSpace(hit.ImdbID) == "" {
			continue
		}
		hits = append(hits, domain.MovieSummary{
			ID:        hit.ImdbID,
			Title:     hit.Title,
			Year:      hit.Year,
			MediaType: hit.Type,
			PosterURL: cleanField(hit.Poster),
		})
	}

	total, err := strconv.Atoi(strings.TrimSpace(reply.TotalResults))
	if err != nil || total < 0 {
		total = len(hits)
	}
	return domain.ProviderSearchPage{Hits: hits, TotalResults: total}, nil
}

// FetchDetail fetches the full detail record for one provider id.
func (c *Client) FetchDetail(ctx context.Context, id string) (domain.MovieDetail, error) {
	params := url.Values{
		"apikey": {c.apiKey},
		"i":      {strings.TrimSpace(id)},
		"plot":   {"full"},
	}

	var reply detailReply
	if err := c.do(ctx, params, &reply); err != nil {
		return domain.MovieDetail{}, err
	}
	if !strings.EqualFold(reply.Response, "True") {
		return domain.MovieDetail{}, &domain.NotFoundError{Reason: strings.TrimSpace(reply.Error)}
	}

	return domain.MovieDetail{
		MovieSummary: domain.MovieSummary{
			ID:        reply.ImdbID,
			Title:     reply.Title,
			Year:      reply.Year,
			MediaType: reply.Type,
			PosterURL: cleanField(reply.Poster),
		},
		Plot:     cleanField(reply.Plot),
		Director: cleanField(reply.Director),
		Actors:   cleanField(reply.Actors),
		Genre:    cleanField(reply.Genre),
		Runtime:  cleanField(reply.Runtime),
		Rating:   cleanField(reply.ImdbRating),
		Awards:   cleanField(reply.Awards),
	}, nil
}

func (c *Client) do(ctx context.Context, params url.Values, dest any) error {
	reqURL := c.baseURL + "/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: HTTP %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", domain.ErrProviderUnavailable, err)
	}
	return nil
}

// cleanField maps the provider's "N/A" placeholder to an absent value.
func cleanField(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}
