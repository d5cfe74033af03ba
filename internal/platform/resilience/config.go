package resilience

import "time"

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// RetryConfig bounds the retry policy of one provider.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     float64
	MaxElapsed time.Duration
	PerAttempt time.Duration
}

// AttemptTimeout splits a request budget evenly across the first attempt and
// its retries.
func AttemptTimeout(budget time.Duration, maxRetries int) time.Duration {
	if budget <= 0 {
		return 0
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return budget / time.Duration(maxRetries+1)
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   8 * time.Second,
		Multiplier: 2,
		Jitter:     0.2,
		MaxElapsed: 45 * time.Second,
		PerAttempt: 15 * time.Second,
	}
}

func NormalizeRetryConfig(cfg RetryConfig) RetryConfig {
	defaults := DefaultRetryConfig()
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay * 8
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = defaults.Multiplier
	}
	if cfg.Jitter < 0 || cfg.Jitter >= 1 {
		cfg.Jitter = defaults.Jitter
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = defaults.MaxElapsed
	}
	if cfg.PerAttempt <= 0 {
		cfg.PerAttempt = defaults.PerAttempt
	}
	return cfg
}
