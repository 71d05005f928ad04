package errors

import (
	"log/slog"

	"github.com/randalmurphal/molang/pkg/molang/observability"
)

// Handler applies a fallback policy to expression evaluation.
//
// Transient failures are logged and replaced by the fallback value so the
// caller always gets a number to drive its frame. Permanent and storage
// failures are returned unchanged.
type Handler struct {
	fallback   float64
	logger     *slog.Logger
	onFallback func(op string, err error)
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// NewHandler creates a new error handler with the given options.
// The default fallback value is 0.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithFallback sets the value substituted for transient failures.
func WithFallback(v float64) HandlerOption {
	return func(h *Handler) {
		h.fallback = v
	}
}

// WithOnFallback sets a callback invoked whenever the fallback is used.
func WithOnFallback(fn func(op string, err error)) HandlerOption {
	return func(h *Handler) {
		h.onFallback = fn
	}
}

// Fallback returns the configured fallback value.
func (h *Handler) Fallback() float64 {
	return h.fallback
}

// Handle runs fn for the script named op. A transient failure yields the fallback value and a nil
// error; any other failure is returned with the fallback value.
func (h *Handler) Handle(op string, fn func() (float64, error)) (float64, error) {
	v, err := fn()
	if err == nil {
		return v, nil
	}

	if !IsRetryable(err) {
		return h.fallback, err
	}

	observability.LogFallback(h.logger, op, h.fallback, err)
	if h.onFallback != nil {
		h.onFallback(op, err)
	}
	return h.fallback, nil
}
