package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/log"
	"github.com/raphi011/settle/internal/settings"
	"github.com/raphi011/settle/internal/storage"
)

type storeKey struct{}

// withStore attaches an open store to the context. Commands use it instead
// of opening the configured store.
func withStore(ctx context.Context, s *settings.Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// openStore returns the store attached to ctx, or opens the store located
// by the config in ctx. The returned close function syncs and closes it;
// calls after the first return the first result.
func openStore(ctx context.Context) (*settings.Store, func() error, error) {
	if s, ok := ctx.Value(storeKey{}).(*settings.Store); ok {
		return s, s.Sync, nil
	}

	cfg := config.FromContext(ctx)
	schema, err := config.DefaultSchema()
	if err != nil {
		return nil, nil, fmt.Errorf("load default schema: %w", err)
	}

	kind := cfg.Store.Backend
	if kind == "" {
		kind = storage.KindFromPath(cfg.Store.Path)
	}
	log.FromContext(ctx).Debug("opening settings store", "backend", kind, "path", cfg.Store.Path)

	engine, err := storage.Open(kind, cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open settings store: %w", err)
	}

	store := settings.New(schema, engine)
	closeFn := sync.OnceValue(func() error {
		return errors.Join(store.Sync(), engine.Close())
	})
	return store, closeFn, nil
}

// withSuggestions adds the closest schema keys to an unknown key error.
func withSuggestions(err error, schema *settings.Schema) error {
	var uk *settings.UnknownKeyError
	if !errors.As(err, &uk) {
		return err
	}

	matches := fuzzy.Find(uk.Key, schema.Keys())
	if len(matches) == 0 {
		return err
	}

	var names []string
	for _, m := range matches[:min(3, len(matches))] {
		names = append(names, m.Str)
	}
	return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(names, ", "))
}
