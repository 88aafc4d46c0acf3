package search

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"moviestream/searchservice/internal/domain"
)

const (
	redisHistoryKey = "msearch:history"
	redisHistoryCap = 1000
)

// RedisHistoryRecorder appends search history entries to a capped Redis list,
// newest first.
type RedisHistoryRecorder struct {
	client *redis.Client
}

func NewRedisHistoryRecorder(client *redis.Client) *RedisHistoryRecorder {
	return &RedisHistoryRecorder{client: client}
}

func (r *RedisHistoryRecorder) Record(ctx context.Context, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := r.client.LPush(ctx, redisHistoryKey, data).Err(); err != nil {
		return err
	}
	return r.client.LTrim(ctx, redisHistoryKey, 0, redisHistoryCap-1).Err()
}
