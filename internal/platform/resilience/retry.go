package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy is a bounded exponential backoff shared by provider transports.
type RetryPolicy struct {
	cfg    RetryConfig
	notify func(err error, wait time.Duration)
}

func NewRetryPolicy(cfg RetryConfig) *RetryPolicy {
	return &RetryPolicy{cfg: NormalizeRetryConfig(cfg)}
}

// WithNotify returns a copy that calls fn before each wait.
func (p *RetryPolicy) WithNotify(fn func(err error, wait time.Duration)) *RetryPolicy {
	out := *p
	out.notify = fn
	return &out
}

func (p *RetryPolicy) MaxAttempts() int {
	if p == nil {
		return 1
	}
	return p.cfg.MaxRetries + 1
}

func (p *RetryPolicy) Config() RetryConfig {
	if p == nil {
		return NormalizeRetryConfig(RetryConfig{})
	}
	return p.cfg
}

func (p *RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.BaseDelay
	b.MaxInterval = p.cfg.MaxDelay
	b.Multiplier = p.cfg.Multiplier
	b.RandomizationFactor = p.cfg.Jitter
	b.Reset()
	return b
}

// Permanent marks an error that must not be retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Retry runs op until it succeeds, returns a permanent error, the attempts
// run out or ctx is done. Every attempt gets its own deadline.
func Retry[T any](ctx context.Context, policy *RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	if policy == nil {
		policy = NewRetryPolicy(RetryConfig{})
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(uint(policy.MaxAttempts())),
		backoff.WithMaxElapsedTime(policy.cfg.MaxElapsed),
	}
	if policy.notify != nil {
		opts = append(opts, backoff.WithNotify(policy.notify))
	}

	return backoff.Retry(ctx, func() (T, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, policy.cfg.PerAttempt)
		defer cancel()
		return op(attemptCtx)
	}, opts...)
}
