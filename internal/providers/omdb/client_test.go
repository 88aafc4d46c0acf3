package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"moviestream/searchservice/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Client:  server.Client(),
	})
}

func TestSearchTitleRequestShape(t *testing.T) {
	var gotQuery, gotPage, gotKey, gotUA string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("s")
		gotPage = r.URL.Query().Get("page")
		gotKey = r.URL.Query().Get("apikey")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{
			"Search": [
				{"Title": "Batman Begins", "Year": "2005", "imdbID": "tt0372784", "Type": "movie", "Poster": "https://img/poster.jpg"},
				{"Title": "No ID", "Year": "2005", "imdbID": "", "Type": "movie", "Poster": "N/A"}
			],
			"totalResults": "41",
			"Response": "True"
		}`))
	})

	page, err := client.SearchTitle(context.Background(), " batman ", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if gotQuery != "batman" || gotPage != "2" || gotKey != "test-key" {
		t.Fatalf("unexpected request params: s=%q page=%q apikey=%q", gotQuery, gotPage, gotKey)
	}
	if gotUA != defaultUserAgent {
		t.Fatalf("expected identifying user agent, got %q", gotUA)
	}
	if page.TotalResults != 41 {
		t.Fatalf("expected totalResults 41, got %d", page.TotalResults)
	}
	// Hits without an id are dropped.
	if len(page.Hits) != 1 {
		t.Fatalf("expected 1 usable hit, got %d", len(page.Hits))
	}
	hit := page.Hits[0]
	if hit.ID != "tt0372784" || hit.Title != "Batman Begins" || hit.MediaType != "movie" {
		t.Fatalf("unexpected hit: %#v", hit)
	}
}

func TestSearchTitleNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
	})

	_, err := client.SearchTitle(context.Background(), "zzzzz", 1)
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Reason != "Movie not found!" {
		t.Fatalf("provider message must survive verbatim, got %q", notFound.Reason)
	}
	if errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("no-match is not a transport failure")
	}
}

func TestSearchTitleServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	})

	_, err := client.SearchTitle(context.Background(), "batman", 1)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestSearchTitleInvalidPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.SearchTitle(context.Background(), "batman", 1)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestSearchTitleUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})

	_, err := client.SearchTitle(context.Background(), "batman", 1)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestFetchDetailCleansPlaceholders(t *testing.T) {
	var gotID, gotPlot string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("i")
		gotPlot = r.URL.Query().Get("plot")
		w.Write([]byte(`{
			"Title": "Batman Begins",
			"Year": "2005",
			"imdbID": "tt0372784",
			"Type": "movie",
			"Poster": "N/A",
			"Plot": "A hero rises.",
			"Director": "Christopher Nolan",
			"Actors": "N/A",
			"Genre": "Action",
			"Runtime": "140 min",
			"imdbRating": "8.2",
			"Awards": "n/a",
			"Response": "True"
		}`))
	})

	detail, err := client.FetchDetail(context.Background(), "tt0372784")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if gotID != "tt0372784" || gotPlot != "full" {
		t.Fatalf("unexpected request params: i=%q plot=%q", gotID, gotPlot)
	}
	if detail.Plot != "A hero rises." || detail.Director != "Christopher Nolan" || detail.Rating != "8.2" {
		t.Fatalf("unexpected detail: %#v", detail)
	}
	if detail.PosterURL != "" || detail.Actors != "" || detail.Awards != "" {
		t.Fatalf("N/A placeholders must map to empty fields: %#v", detail)
	}
}

func TestFetchDetailUnknownID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "False", "Error": "Incorrect IMDb ID."}`))
	})

	_, err := client.FetchDetail(context.Background(), "tt0000000")
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Reason != "Incorrect IMDb ID." {
		t.Fatalf("unexpected reason %q", notFound.Reason)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	if client.baseURL != defaultBaseURL {
		t.Fatalf("unexpected base url %q", client.baseURL)
	}
	if client.http.Timeout != defaultTimeout {
		t.Fatalf("unexpected timeout %v", client.http.Timeout)
	}
	if !client.Enabled() {
		t.Fatalf("client with key must report enabled")
	}
	if NewClient(Config{}).Enabled() {
		t.Fatalf("client without key must report disabled")
	}
}
