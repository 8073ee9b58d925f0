package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per user in fixed hourly windows.
type RateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRateLimiter(redisURL string) (*RateLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	return &RateLimiter{client: client, now: time.Now}, nil
}

func windowKey(userID string, t time.Time) string {
	return fmt.Sprintf("ratelimit:user:%s:%s", userID, t.UTC().Format("2006-01-02-15"))
}

// Allow counts one request for userID. A limit of zero or less disables the check.
func (rl *RateLimiter) Allow(ctx context.Context, userID string, limit int) (bool, error) {
	if limit <= 0 {
		return true, nil
	}

	key := windowKey(userID, rl.now())

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= int64(limit), nil
}

func (rl *RateLimiter) Close() error {
	return rl.client.Close()
}
