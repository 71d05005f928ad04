package library

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/randalmurphal/molang/pkg/molang/config"
	molerrors "github.com/randalmurphal/molang/pkg/molang/errors"
	"github.com/randalmurphal/molang/pkg/molang/observability"
	"github.com/randalmurphal/molang/pkg/molang/store"
)

// Load registers every script in the configured store, in revision order.
// A script that fails to load or compile is skipped; all failures are
// returned joined.
func (l *Library) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}

	listed := molerrors.WithRetryContext(ctx, l.retry, func(context.Context) ([]store.Info, error) {
		return l.store.List()
	})
	if listed.Err != nil {
		observability.LogStoreError(l.logger, "list", "", listed.Err)
		return fmt.Errorf("list scripts: %w", listed.Err)
	}

	var errs []error
	for _, info := range listed.Value {
		loaded := molerrors.WithRetryContext(ctx, l.retry, func(context.Context) (string, error) {
			return l.store.Load(info.Name)
		})
		if loaded.Err != nil {
			observability.LogStoreError(l.logger, "load", info.Name, loaded.Err)
			errs = append(errs, fmt.Errorf("script %q: %w", info.Name, loaded.Err))
			continue
		}
		if err := l.register(ctx, info.Name, loaded.Value, l.defines, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadConfig registers the scripts of a manifest. Manifest defines apply
// to its own scripts on top of the library's defines. Scripts register in
// name order; failures are returned joined.
func (l *Library) LoadConfig(ctx context.Context, cfg config.Config) error {
	defines := l.defines
	if local := cfg.FloatMap("defines", nil); len(local) > 0 {
		defines = maps.Clone(l.defines)
		for k, v := range local {
			defines[k] = v
		}
	}

	scripts := cfg.StringMap("scripts", nil)
	if scripts == nil && cfg.Has("scripts") {
		return errors.New("manifest scripts must map names to source strings")
	}

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(scripts)) {
		if err := l.register(ctx, name, scripts[name], defines, true); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadFile reads a YAML or JSON manifest and registers its scripts.
func (l *Library) LoadFile(ctx context.Context, path string) error {
	cfg, err := config.FromFile(path)
	if err != nil {
		return err
	}
	return l.LoadConfig(ctx, cfg)
}
