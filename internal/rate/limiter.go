package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds OTP attempt budget tuning parameters.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// Limiter enforces a per-consent-handle OTP attempt budget using
// Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a rate [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

func attemptKey(kind, handle string) string {
	return "ajo:" + kind + ":" + handle
}

// Check reports whether the handle is still within the attempt budget
// for the given OTP kind. Returns an error if rate-limited.
func (l *Limiter) Check(ctx context.Context, kind, handle string) error {
	count, err := l.redis.Get(ctx, attemptKey(kind, handle)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}

	return nil
}

// Increment records an OTP verification attempt for the handle.
// Returns ErrRateLimited once the budget is exhausted.
func (l *Limiter) Increment(ctx context.Context, kind, handle string) error {
	count, err := l.redis.Incr(ctx, attemptKey(kind, handle)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, attemptKey(kind, handle), l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if count > int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}

	return nil
}

// Reset clears the attempt counter for the handle and kind.
// Called after a successful verification.
func (l *Limiter) Reset(ctx context.Context, kind, handle string) error {
	if err := l.redis.Del(ctx, attemptKey(kind, handle)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
