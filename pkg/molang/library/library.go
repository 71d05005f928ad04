// Package library compiles named molang scripts once and evaluates them
// many times.
//
// A Library is the host-facing layer over the molang core: it expands
// defines into source, caches compiled expressions, persists sources to a
// store, and instruments every compile and evaluation with logs, metrics,
// and spans. The core packages stay free of all of that.
//
// Example:
//
//	lib := library.New(
//	    library.WithLogger(slog.Default()),
//	    library.WithDefines(map[string]float64{"speed": 2}),
//	)
//	lib.MustRegister(ctx, "bob", "math.sin(query.anim_time * ${speed} * 360)")
//
//	rt := molang.NewBuilder().QueryConstant("anim_time", 0.25).Build()
//	y, err := lib.EvaluateOr(ctx, "bob", rt) // y is 0 on a transient failure
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/randalmurphal/molang/pkg/molang"
	molerrors "github.com/randalmurphal/molang/pkg/molang/errors"
	"github.com/randalmurphal/molang/pkg/molang/observability"
	"github.com/randalmurphal/molang/pkg/molang/store"
	"github.com/randalmurphal/molang/pkg/molang/template"
)

// Errors returned by Library methods.
var (
	// ErrUnknownScript indicates no script is registered under the name.
	ErrUnknownScript = errors.New("unknown script")

	// ErrInvalidName indicates an empty script name.
	ErrInvalidName = errors.New("invalid script name")
)

// Script is a registered, compiled script.
type Script struct {
	// Name is the registration name.
	Name string
	// Source is the text as registered, before defines were expanded.
	Source string
	// Expanded is Source with defines substituted. It is what the store
	// keeps, so a reload compiles the same text without the defines.
	Expanded string
	// Expr is the compiled expression. It is immutable and may be resolved
	// concurrently against different runtimes.
	Expr molang.Expression
}

// Library holds compiled scripts by name. It is safe for concurrent use;
// the Runtimes passed to Evaluate are not, so each goroutine needs its own.
type Library struct {
	mu      sync.RWMutex
	scripts map[string]*Script

	cache     *lru.Cache
	cacheSize int

	defines  map[string]any
	expander *template.Expander

	store store.Store
	retry molerrors.RetryConfig

	fallback   float64
	onFallback func(script string, err error)
	handler    *molerrors.Handler

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// New creates an empty Library.
func New(opts ...Option) *Library {
	l := &Library{
		scripts:   make(map[string]*Script),
		cacheSize: DefaultCacheSize,
		defines:   make(map[string]any),
		expander:  template.NewExpander(template.WithMissingAction(template.MissingError)),
		retry:     molerrors.DefaultRetry,
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		l.cache, _ = lru.New(l.cacheSize)
	}

	handlerOpts := []molerrors.HandlerOption{
		molerrors.WithLogger(l.logger),
		molerrors.WithFallback(l.fallback),
	}
	if l.onFallback != nil {
		handlerOpts = append(handlerOpts, molerrors.WithOnFallback(l.onFallback))
	}
	l.handler = molerrors.NewHandler(handlerOpts...)
	return l
}

// Compile compiles an anonymous source, expanding the library's defines.
// Identical expanded sources share one cached expression.
func (l *Library) Compile(ctx context.Context, source string) (molang.Expression, error) {
	expr, _, err := l.compile(ctx, "", source, l.defines)
	return expr, err
}

// compile expands and compiles source, returning the expanded text too.
func (l *Library) compile(ctx context.Context, name, source string, defines map[string]any) (molang.Expression, string, error) {
	expanded, err := l.expander.Expand(source, defines)
	if err != nil {
		err = molerrors.Permanent(err, "expand defines")
		observability.LogCompileError(l.logger, name, err)
		return nil, "", err
	}

	ctx, span := l.spans.StartCompileSpan(ctx, name, len(expanded))

	if l.cache != nil {
		cached, ok := l.cache.Get(expanded)
		l.metrics.RecordCacheLookup(ctx, ok)
		if ok {
			l.spans.AddSpanEvent(ctx, "cache.hit")
			l.spans.EndSpanWithError(span, nil)
			observability.LogCompile(l.logger, name, 0, true)
			return cached.(molang.Expression), expanded, nil
		}
	}

	done := observability.TimedOperation()
	start := time.Now()
	expr, err := molang.Compile(expanded)
	l.metrics.RecordCompile(ctx, time.Since(start), err)
	l.spans.EndSpanWithError(span, err)
	if err != nil {
		observability.LogCompileError(l.logger, name, err)
		return nil, "", err
	}
	observability.LogCompile(l.logger, name, done(), false)

	if l.cache != nil {
		l.cache.Add(expanded, expr)
	}
	return expr, expanded, nil
}

// Register compiles source and stores it under name, replacing any
// previous script. With a store configured, the expanded source is persisted
// before the script becomes visible; a failed save leaves the library
// unchanged.
func (l *Library) Register(ctx context.Context, name, source string) error {
	return l.register(ctx, name, source, l.defines, true)
}

// MustRegister is like Register but panics on error. It suits scripts
// embedded in the host program.
func (l *Library) MustRegister(ctx context.Context, name, source string) {
	if err := l.Register(ctx, name, source); err != nil {
		panic(fmt.Sprintf("library: register %q: %v", name, err))
	}
}

func (l *Library) register(ctx context.Context, name, source string, defines map[string]any, persist bool) error {
	if name == "" {
		return ErrInvalidName
	}

	expr, expanded, err := l.compile(ctx, name, source, defines)
	if err != nil {
		return fmt.Errorf("script %q: %w", name, err)
	}

	if persist && l.store != nil {
		result := molerrors.WithRetryContext(ctx, l.retry, func(context.Context) (struct{}, error) {
			return struct{}{}, l.store.Save(name, expanded)
		})
		if result.Err != nil {
			observability.LogStoreError(l.logger, "save", name, result.Err)
			return fmt.Errorf("script %q: %w", name, result.Err)
		}
	}

	l.mu.Lock()
	l.scripts[name] = &Script{Name: name, Source: source, Expanded: expanded, Expr: expr}
	l.mu.Unlock()
	return nil
}

// Get returns the script registered under name.
func (l *Library) Get(name string) (*Script, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.scripts[name]
	return s, ok
}

// Has reports whether a script is registered under name.
func (l *Library) Has(name string) bool {
	_, ok := l.Get(name)
	return ok
}

// Names returns the registered script names, sorted.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.scripts))
}

// Len returns the number of registered scripts.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.scripts)
}

// Remove unregisters a script and deletes it from the store.
// Removing an unknown script is not an error.
func (l *Library) Remove(ctx context.Context, name string) error {
	if l.store != nil {
		result := molerrors.WithRetryContext(ctx, l.retry, func(context.Context) (struct{}, error) {
			return struct{}{}, l.store.Delete(name)
		})
		if result.Err != nil {
			observability.LogStoreError(l.logger, "delete", name, result.Err)
			return fmt.Errorf("script %q: %w", name, result.Err)
		}
	}

	l.mu.Lock()
	delete(l.scripts, name)
	l.mu.Unlock()
	return nil
}

// CacheLen returns the number of cached compiled sources.
func (l *Library) CacheLen() int {
	if l.cache == nil {
		return 0
	}
	return l.cache.Len()
}

// Evaluate resolves the named script against rt. Failures are logged.
func (l *Library) Evaluate(ctx context.Context, name string, rt *molang.Runtime) (float64, error) {
	v, err := l.evaluate(ctx, name, rt)
	if err != nil {
		observability.LogEvaluateError(observability.EnrichLogger(l.logger, rt.ID(), name), err)
	}
	return v, err
}

func (l *Library) evaluate(ctx context.Context, name string, rt *molang.Runtime) (float64, error) {
	s, ok := l.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}

	ctx, span := l.spans.StartEvaluateSpan(ctx, name, rt.ID())
	start := time.Now()
	v, err := s.Expr.Resolve(rt)
	l.metrics.RecordEvaluate(ctx, name, time.Since(start), err)
	l.spans.EndSpanWithError(span, err)

	if err != nil {
		return 0, fmt.Errorf("script %q: %w", name, err)
	}
	return v, nil
}

// EvaluateOr resolves the named script, substituting the fallback value
// for transient failures such as an unbound query. Unknown scripts and
// other permanent failures still return an error. Each failure is logged
// once: as a fallback when substituted, as an evaluation failure otherwise.
func (l *Library) EvaluateOr(ctx context.Context, name string, rt *molang.Runtime) (float64, error) {
	v, err := l.handler.Handle(name, func() (float64, error) {
		return l.evaluate(ctx, name, rt)
	})
	if err != nil {
		observability.LogEvaluateError(observability.EnrichLogger(l.logger, rt.ID(), name), err)
	}
	return v, err
}
