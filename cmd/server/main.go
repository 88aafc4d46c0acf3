package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apihttp "moviestream/searchservice/internal/api/http"
	"moviestream/searchservice/internal/app"
	"moviestream/searchservice/internal/metrics"
	"moviestream/searchservice/internal/providers/omdb"
	"moviestream/searchservice/internal/search"
	"moviestream/searchservice/internal/telemetry"
)

func main() {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	if cfg.OMDBAPIKey == "" {
		logger.Error("OMDB_API_KEY is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.Init(context.Background(), "movie-search")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "movie-search"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("omdbBaseURL", cfg.OMDBBaseURL),
		slog.Duration("providerTimeout", cfg.ProviderTimeout),
		slog.Duration("cacheTTL", cfg.CacheTTL),
		slog.Bool("hasRedis", strings.TrimSpace(cfg.RedisURL) != ""),
	)

	provider := omdb.NewClient(omdb.Config{
		APIKey:    cfg.OMDBAPIKey,
		BaseURL:   cfg.OMDBBaseURL,
		UserAgent: cfg.UserAgent,
		Client: &http.Client{
			Timeout:   cfg.ProviderTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})

	redisClient := connectRedis(cfg, logger)

	var cache search.Cache
	var memoryCache *search.MemoryCache
	if redisClient != nil {
		cache = search.NewRedisCache(redisClient)
	} else {
		memoryCache = search.NewMemoryCache()
		cache = memoryCache
	}

	serviceOpts := []search.ServiceOption{
		search.WithCacheTTL(cfg.CacheTTL),
		search.WithLogger(logger),
	}
	if redisClient != nil {
		serviceOpts = append(serviceOpts, search.WithHistory(
			search.NewRedisHistoryRecorder(redisClient),
			cfg.HistoryBuffer,
		))
	}
	searchService := search.NewService(provider, cache, serviceOpts...)

	curator := search.NewCurator(provider, cache,
		search.WithSeedQueries(cfg.PopularSeeds),
		search.WithCuratorCacheTTL(cfg.CacheTTL),
		search.WithCuratorLogger(logger),
	)

	handler := apihttp.NewServer(searchService, curator, apihttp.WithLogger(logger)).Handler()
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	searchService.StartBackground(rootCtx)
	if memoryCache != nil {
		memoryCache.StartSweep(rootCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("movie search service started",
		slog.String("addr", cfg.HTTPAddr),
		slog.Duration("providerTimeout", cfg.ProviderTimeout),
	)

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("movie search service stopped")
}

func connectRedis(cfg app.Config, logger *slog.Logger) *redis.Client {
	redisURL := strings.TrimSpace(cfg.RedisURL)
	if redisURL == "" {
		return nil
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("invalid redis url, using in-memory cache only", slog.String("error", err.Error()))
		return nil
	}
	client := redis.NewClient(redisOpts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable, using in-memory cache only", slog.String("error", err.Error()))
		return nil
	}
	logger.Info("redis connected", slog.String("addr", redisOpts.Addr))
	return client
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
