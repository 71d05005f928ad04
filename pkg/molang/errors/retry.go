package errors

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig controls how script store calls are retried.
type RetryConfig struct {
	// MaxAttempts counts the first call. Values below 1 mean 1.
	MaxAttempts int

	// InitialBackoff is the wait after the first failure.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait. Zero means uncapped.
	MaxBackoff time.Duration

	// BackoffFactor grows the wait after each failure.
	BackoffFactor float64

	// Jitter spreads each wait by up to this fraction either way.
	Jitter float64

	// RetryableFunc decides which failures are retried. Nil means IsStorage.
	RetryableFunc func(error) bool
}

// DefaultRetry suits a local SQLite file contended by another process.
var DefaultRetry = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 10 * time.Millisecond,
	MaxBackoff:     250 * time.Millisecond,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// NoRetry makes exactly one attempt.
var NoRetry = RetryConfig{MaxAttempts: 1}

// RetryResult is the outcome of WithRetryContext.
type RetryResult[T any] struct {
	Value    T
	Err      error
	Attempts int
	Duration time.Duration
}

// WithRetryContext calls fn until it succeeds, fails with an error the
// config does not retry, or runs out of attempts. A failure that is not
// retried is returned unwrapped. Cancellation, checked before each call and
// during each wait, ends the loop with a permanent CategorizedError.
func WithRetryContext[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func(context.Context) (T, error),
) RetryResult[T] {
	start := time.Now()
	finish := func(v T, err error, attempts int) RetryResult[T] {
		return RetryResult[T]{Value: v, Err: err, Attempts: attempts, Duration: time.Since(start)}
	}
	cancelled := func(attempts int, during string) RetryResult[T] {
		var zero T
		return finish(zero, &CategorizedError{
			Err:      ctx.Err(),
			Category: CategoryPermanent,
			Attempts: attempts,
			Context:  during,
		}, attempts)
	}

	retryable := cfg.RetryableFunc
	if retryable == nil {
		retryable = IsStorage
	}
	limit := max(cfg.MaxAttempts, 1)
	wait := newBackoff(cfg)

	var zero T
	var lastErr error
	for n := 1; n <= limit; n++ {
		if ctx.Err() != nil {
			return cancelled(n-1, "context cancelled")
		}

		v, err := fn(ctx)
		switch {
		case err == nil:
			return finish(v, nil, n)
		case !retryable(err):
			return finish(zero, err, n)
		}
		lastErr = err

		if n == limit {
			break
		}
		timer := time.NewTimer(wait.next())
		select {
		case <-ctx.Done():
			timer.Stop()
			return cancelled(n, "context cancelled during backoff")
		case <-timer.C:
		}
	}

	return finish(zero, &CategorizedError{
		Err:      lastErr,
		Category: Categorize(lastErr),
		Attempts: limit,
		Context:  "max retries exceeded",
	}, limit)
}

// backoff yields successive jittered waits.
type backoff struct {
	current time.Duration
	ceiling time.Duration
	factor  float64
	jitter  float64
}

func newBackoff(cfg RetryConfig) *backoff {
	return &backoff{
		current: cfg.InitialBackoff,
		ceiling: cfg.MaxBackoff,
		factor:  cfg.BackoffFactor,
		jitter:  cfg.Jitter,
	}
}

func (b *backoff) next() time.Duration {
	d := b.current
	if b.jitter > 0 {
		d += time.Duration(float64(d) * b.jitter * (2*rand.Float64() - 1))
	}
	if b.factor > 0 {
		b.current = time.Duration(float64(b.current) * b.factor)
	}
	if b.ceiling > 0 {
		b.current = min(b.current, b.ceiling)
	}
	return d
}

// RetryOption adjusts a RetryConfig.
type RetryOption func(*RetryConfig)

// WithMaxAttempts sets the attempt limit, first call included.
func WithMaxAttempts(n int) RetryOption {
	return func(cfg *RetryConfig) { cfg.MaxAttempts = n }
}

// WithInitialBackoff sets the first wait.
func WithInitialBackoff(d time.Duration) RetryOption {
	return func(cfg *RetryConfig) { cfg.InitialBackoff = d }
}

// WithMaxBackoff caps the wait.
func WithMaxBackoff(d time.Duration) RetryOption {
	return func(cfg *RetryConfig) { cfg.MaxBackoff = d }
}

// WithBackoffFactor sets the growth factor between waits.
func WithBackoffFactor(f float64) RetryOption {
	return func(cfg *RetryConfig) { cfg.BackoffFactor = f }
}

// WithRetryableFunc replaces the IsStorage check.
func WithRetryableFunc(fn func(error) bool) RetryOption {
	return func(cfg *RetryConfig) { cfg.RetryableFunc = fn }
}

// NewRetryConfig applies opts on top of DefaultRetry.
func NewRetryConfig(opts ...RetryOption) RetryConfig {
	cfg := DefaultRetry
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
