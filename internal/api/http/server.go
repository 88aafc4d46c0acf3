package apihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moviestream/searchservice/internal/domain"
	"moviestream/searchservice/internal/search"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type SearchService interface {
	Search(ctx context.Context, request domain.SearchRequest) (domain.SearchPage, error)
	MovieByID(ctx context.Context, id string) (domain.MovieDetail, error)
	MoviesByIDs(ctx context.Context, ids []string) ([]domain.MovieDetail, error)
}

type PopularService interface {
	Curate(ctx context.Context) ([]domain.EnrichedMovie, error)
}

type Server struct {
	search  SearchService
	popular PopularService
	logger  *slog.Logger
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(searchService SearchService, popularService PopularService, options ...ServerOption) *Server {
	server := &Server{
		search:  searchService,
		popular: popularService,
		logger:  slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/popular", s.handlePopular)
	mux.HandleFunc("/api/movie/", s.handleMovieByID)
	mux.HandleFunc("/api/movies", s.handleMoviesBatch)
	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "movie-search",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	return recoveryMiddleware(s.logger, rateLimitMiddleware(50, 100, metricsMiddleware(traced)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/search" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	page, err := parsePage(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.search.Search(r.Context(), domain.SearchRequest{
		Query:      query,
		Page:       page,
		CallerAddr: clientIP(r),
	})
	if err != nil {
		s.writeSearchError(w, r, query, err)
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   result.Error,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"movies":       result.Movies,
			"totalResults": result.TotalResults,
			"currentPage":  result.Page,
			"totalPages":   result.TotalPages,
		},
	})
}

func (s *Server) writeSearchError(w http.ResponseWriter, r *http.Request, query string, err error) {
	switch {
	case errors.Is(err, search.ErrQueryRequired),
		errors.Is(err, search.ErrQueryTooLong),
		errors.Is(err, search.ErrInvalidPage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("search request failed",
			slog.String("query", truncate(query, 80)),
			slog.String("clientIP", clientIP(r)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "search is temporarily unavailable")
	}
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/popular" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	movies, err := s.popular.Curate(r.Context())
	if err != nil {
		s.logger.Error("popular curation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "popular movies are temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"movies": movies,
		},
	})
}

func (s *Server) handleMovieByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/movie/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "movie id is required")
		return
	}

	detail, err := s.search.MovieByID(r.Context(), id)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, notFound.Error())
			return
		}
		s.logger.Error("movie lookup failed",
			slog.String("imdbID", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "movie lookup is temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    detail,
	})
}

func (s *Server) handleMoviesBatch(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/movies" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		ImdbIDs []string `json:"imdbIDs"`
	}
	if err := decodeJSONBody(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ids := make([]string, 0, len(payload.ImdbIDs))
	for _, raw := range payload.ImdbIDs {
		if id := strings.TrimSpace(raw); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "imdbIDs is required")
		return
	}

	movies, err := s.search.MoviesByIDs(r.Context(), ids)
	if err != nil {
		s.logger.Error("batch movie lookup failed",
			slog.Int("ids", len(ids)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "movie lookup is temporarily unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"movies":  movies,
	})
}

func parsePage(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return 1, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("page must be an integer")
	}
	return parsed, nil
}

func decodeJSONBody(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return errors.New("request body is required")
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid json body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
