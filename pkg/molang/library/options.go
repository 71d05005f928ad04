package library

import (
	"log/slog"

	"github.com/randalmurphal/molang/pkg/molang/config"
	molerrors "github.com/randalmurphal/molang/pkg/molang/errors"
	"github.com/randalmurphal/molang/pkg/molang/observability"
	"github.com/randalmurphal/molang/pkg/molang/store"
)

// DefaultCacheSize is the number of compiled sources kept by default.
const DefaultCacheSize = 128

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(l *Library) {
		if m != nil {
			l.metrics = m
		}
	}
}

// WithSpanManager sets the span manager.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(l *Library) {
		if sm != nil {
			l.spans = sm
		}
	}
}

// WithCacheSize sets how many compiled sources are cached.
// Zero or a negative size disables the cache.
func WithCacheSize(n int) Option {
	return func(l *Library) {
		l.cacheSize = n
	}
}

// WithStore persists registered scripts. The library does not close it.
func WithStore(s store.Store) Option {
	return func(l *Library) {
		l.store = s
	}
}

// WithStoreRetry sets the retry policy for store operations.
func WithStoreRetry(cfg molerrors.RetryConfig) Option {
	return func(l *Library) {
		l.retry = cfg
	}
}

// WithDefines sets defines substituted into every script's source.
func WithDefines(defines map[string]float64) Option {
	return func(l *Library) {
		for k, v := range defines {
			l.defines[k] = v
		}
	}
}

// WithFallback sets the value EvaluateOr returns for transient failures.
func WithFallback(v float64) Option {
	return func(l *Library) {
		l.fallback = v
	}
}

// WithOnFallback sets a callback run whenever EvaluateOr substitutes the
// fallback value.
func WithOnFallback(fn func(script string, err error)) Option {
	return func(l *Library) {
		l.onFallback = fn
	}
}

// ConfigOptions reads library settings from a manifest: cache_size,
// fallback, defines and the retry section.
func ConfigOptions(cfg config.Config) []Option {
	var opts []Option
	if cfg.Has("cache_size") {
		opts = append(opts, WithCacheSize(cfg.Int("cache_size", DefaultCacheSize)))
	}
	if cfg.Has("fallback") {
		opts = append(opts, WithFallback(cfg.Float("fallback", 0)))
	}
	if defines := cfg.FloatMap("defines", nil); len(defines) > 0 {
		opts = append(opts, WithDefines(defines))
	}
	if cfg.Has("retry") {
		opts = append(opts, WithStoreRetry(retryConfig(cfg.Section("retry"))))
	}
	return opts
}

// retryConfig reads a manifest retry section:
//
//	retry:
//	  enabled: true        # false makes a single attempt
//	  max_attempts: 5
//	  initial_backoff: 20ms
//	  max_backoff: 1s
//	  backoff_factor: 2
//
// Omitted keys keep the defaults.
func retryConfig(sec config.Config) molerrors.RetryConfig {
	if !sec.Bool("enabled", true) {
		return molerrors.NoRetry
	}
	d := molerrors.DefaultRetry
	return molerrors.NewRetryConfig(
		molerrors.WithMaxAttempts(sec.Int("max_attempts", d.MaxAttempts)),
		molerrors.WithInitialBackoff(sec.Duration("initial_backoff", d.InitialBackoff)),
		molerrors.WithMaxBackoff(sec.Duration("max_backoff", d.MaxBackoff)),
		molerrors.WithBackoffFactor(sec.Float("backoff_factor", d.BackoffFactor)),
	)
}
