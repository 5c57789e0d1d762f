package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, maxAttempts int, window time.Duration) (*miniredis.Miniredis, *Limiter) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, New(client, Config{MaxAttempts: maxAttempts, Window: window})
}

func TestLimiterWithinBudget(t *testing.T) {
	_, l := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Check(ctx, "login", "ch-123"); err != nil {
			t.Fatalf("attempt %d: Check failed: %v", i, err)
		}
		if err := l.Increment(ctx, "login", "ch-123"); err != nil {
			t.Fatalf("attempt %d: Increment failed: %v", i, err)
		}
	}
}

func TestLimiterExhaustedBudget(t *testing.T) {
	_, l := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Increment(ctx, "login", "ch-123"); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}

	if err := l.Check(ctx, "login", "ch-123"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited from Check, got %v", err)
	}
	if err := l.Increment(ctx, "login", "ch-123"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited from Increment, got %v", err)
	}
}

func TestLimiterKindsAreIndependent(t *testing.T) {
	_, l := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if err := l.Increment(ctx, "login", "ch-123"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := l.Check(ctx, "login", "ch-123"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected login budget exhausted, got %v", err)
	}
	if err := l.Check(ctx, "linking", "ch-123"); err != nil {
		t.Fatalf("linking budget must be independent, got %v", err)
	}
	if err := l.Check(ctx, "login", "ch-456"); err != nil {
		t.Fatalf("another handle must be independent, got %v", err)
	}
}

func TestLimiterResetClearsBudget(t *testing.T) {
	_, l := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if err := l.Increment(ctx, "login", "ch-123"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := l.Reset(ctx, "login", "ch-123"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if err := l.Check(ctx, "login", "ch-123"); err != nil {
		t.Fatalf("budget must refill after Reset, got %v", err)
	}
}

func TestLimiterWindowExpiry(t *testing.T) {
	mr, l := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if err := l.Increment(ctx, "login", "ch-123"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if err := l.Check(ctx, "login", "ch-123"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected budget exhausted, got %v", err)
	}

	mr.FastForward(61 * time.Second)

	if err := l.Check(ctx, "login", "ch-123"); err != nil {
		t.Fatalf("window expiry must refill the budget, got %v", err)
	}
}

func TestLimiterRedisDown(t *testing.T) {
	mr, l := newTestLimiter(t, 1, time.Minute)
	mr.Close()
	ctx := context.Background()

	if err := l.Check(ctx, "login", "ch-123"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if err := l.Increment(ctx, "login", "ch-123"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
