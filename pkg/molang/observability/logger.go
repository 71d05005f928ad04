// Package observability provides logging, metrics, and tracing for molang
// script libraries.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// The core compile and resolve path never logs; instrumentation lives at the
// library layer where scripts have names.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds evaluation context to a logger.
// Returns a new logger with runtime_id and script fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, rt.ID(), "walk_cycle")
//	enriched.Warn("slow frame") // includes runtime_id, script
func EnrichLogger(logger *slog.Logger, runtimeID, script string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("runtime_id", runtimeID),
		slog.String("script", script),
	)
}

// LogCompile logs a successful compilation.
func LogCompile(logger *slog.Logger, script string, durationMs float64, cached bool) {
	if logger == nil {
		return
	}
	logger.Debug("script compiled",
		slog.String("script", script),
		slog.Float64("duration_ms", durationMs),
		slog.Bool("cached", cached),
	)
}

// LogCompileError logs a compilation failure.
func LogCompileError(logger *slog.Logger, script string, err error) {
	if logger == nil {
		return
	}
	logger.Error("script compile failed",
		slog.String("script", script),
		slog.String("error", err.Error()),
	)
}

// LogEvaluateError logs a failed evaluation. The logger is expected to
// come from EnrichLogger.
func LogEvaluateError(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("script evaluation failed",
		slog.String("error", err.Error()),
	)
}

// LogFallback logs a fallback value substituted for a failed evaluation.
func LogFallback(logger *slog.Logger, script string, fallback float64, err error) {
	if logger == nil {
		return
	}
	logger.Warn("script fallback used",
		slog.String("script", script),
		slog.Float64("fallback", fallback),
		slog.String("error", err.Error()),
	)
}

// LogStoreError logs a script store failure.
func LogStoreError(logger *slog.Logger, op, script string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("script store failed",
		slog.String("operation", op),
		slog.String("script", script),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds with microsecond resolution.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return durationMs(time.Since(start))
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
