package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter bounds failed sign-in attempts per key.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// NoopLimiter never blocks.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (NoopLimiter) RecordFailure(context.Context, string) error { return nil }
func (NoopLimiter) Reset(context.Context, string) error         { return nil }

// RedisLimiter counts failures in a fixed window that starts at the first
// failure for a key.
type RedisLimiter struct {
	client      redis.UniversalClient
	prefix      string
	maxAttempts int64
	window      time.Duration
}

// NewRedisLimiter returns a limiter allowing maxAttempts failures per window.
func NewRedisLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		prefix:      "signin:failures:",
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

// Allow reports whether another attempt may proceed.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Get(ctx, l.prefix+key).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("read attempts: %w", err)
	}
	return count < l.maxAttempts, nil
}

// RecordFailure increments the failure counter, opening the window on the
// first failure.
func (l *RedisLimiter) RecordFailure(ctx context.Context, key string) error {
	k := l.prefix + key
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("open attempt window: %w", err)
		}
	}
	return nil
}

// Reset clears the counter after a successful sign-in.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.prefix+key).Err(); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}
