package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRepository counts hits per key within fixed windows
type RateLimitRepository interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type RedisRateLimitRepository struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisRateLimitRepository(rdb *redis.Client) *RedisRateLimitRepository {
	return &RedisRateLimitRepository{rdb: rdb, now: time.Now}
}

// Allow increments the counter of the current window and reports whether the
// caller is still within limit.
func (r *RedisRateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	bucket := r.now().UnixNano() / int64(window)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}
