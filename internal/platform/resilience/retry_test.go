package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetryPolicy(maxRetries int) *RetryPolicy {
	return NewRetryPolicy(RetryConfig{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
		PerAttempt: time.Second,
	})
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	var attempts int32
	var waits int32
	policy := fastRetryPolicy(3).WithNotify(func(error, time.Duration) {
		atomic.AddInt32(&waits, 1)
	})

	got, err := Retry(context.Background(), policy, func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return "", errors.New("status=503")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got != "ok" {
		t.Fatalf("unexpected result: %q", got)
	}
	if attempts != 3 || waits != 2 {
		t.Fatalf("unexpected attempts=%d waits=%d", attempts, waits)
	}
}

func TestRetry_BoundedAttempts(t *testing.T) {
	var attempts int32
	boom := errors.New("status=500")

	_, err := Retry(context.Background(), fastRetryPolicy(2), func(ctx context.Context) (int, error) {
		atomic.AddInt32(&attempts, 1)
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected last error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	var attempts int32
	forbidden := errors.New("status=403")

	_, err := Retry(context.Background(), fastRetryPolicy(5), func(ctx context.Context) (int, error) {
		atomic.AddInt32(&attempts, 1)
		return 0, Permanent(forbidden)
	})
	if !errors.Is(err, forbidden) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt, got %d", attempts)
	}
}

func TestRetry_AttemptHasDeadline(t *testing.T) {
	_, err := Retry(context.Background(), fastRetryPolicy(0), func(ctx context.Context) (int, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("expected per-attempt deadline")
		}
		return 1, nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestNormalizeRetryConfig(t *testing.T) {
	cfg := NormalizeRetryConfig(RetryConfig{MaxRetries: -1})
	if cfg.MaxRetries != 0 || cfg.BaseDelay <= 0 || cfg.MaxDelay < cfg.BaseDelay || cfg.Multiplier < 1 {
		t.Fatalf("unexpected normalized config: %+v", cfg)
	}
	if NewRetryPolicy(cfg).MaxAttempts() != 1 {
		t.Fatalf("expected one attempt without retries")
	}
}

func TestAttemptTimeout(t *testing.T) {
	cases := []struct {
		budget     time.Duration
		maxRetries int
		want       time.Duration
	}{
		{budget: 20 * time.Second, maxRetries: 3, want: 5 * time.Second},
		{budget: 20 * time.Second, maxRetries: 0, want: 20 * time.Second},
		{budget: 9 * time.Second, maxRetries: -1, want: 9 * time.Second},
		{budget: 0, maxRetries: 2, want: 0},
	}
	for _, tc := range cases {
		if got := AttemptTimeout(tc.budget, tc.maxRetries); got != tc.want {
			t.Fatalf("AttemptTimeout(%s, %d) = %s, want %s", tc.budget, tc.maxRetries, got, tc.want)
		}
	}
}
