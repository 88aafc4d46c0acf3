package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	UserAgent       string
	OMDBAPIKey      string
	OMDBBaseURL     string
	ProviderTimeout time.Duration
	CacheTTL        time.Duration
	RedisURL        string
	PopularSeeds    []string
	HistoryBuffer   int
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
		UserAgent:       getEnv("SEARCH_USER_AGENT", "movie-stream-search/1.0"),
		OMDBAPIKey:      strings.TrimSpace(os.Getenv("OMDB_API_KEY")),
		OMDBBaseURL:     getEnv("OMDB_BASE_URL", "https://www.omdbapi.com"),
		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 10)) * time.Second,
		CacheTTL:        time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		RedisURL:        getEnv("REDIS_URL", ""),
		PopularSeeds:    splitCSV(os.Getenv("POPULAR_SEEDS")),
		HistoryBuffer:   getEnvInt("HISTORY_BUFFER", 64),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
