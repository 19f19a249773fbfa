package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/log"
	"github.com/raphi011/settle/internal/output"
	"github.com/raphi011/settle/internal/settings"
	"github.com/raphi011/settle/internal/storage"
)

// testEnv bundles a command context with its in-memory store and output.
type testEnv struct {
	ctx   context.Context
	store *settings.Store
	out   *bytes.Buffer
	log   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Backend: storage.KindMemory}
	return newTestEnvWithConfig(t, &cfg)
}

func newTestEnvWithConfig(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	schema, err := config.DefaultSchema()
	if err != nil {
		t.Fatalf("DefaultSchema failed: %v", err)
	}

	env := &testEnv{
		store: settings.New(schema, storage.NewMemory()),
		out:   &bytes.Buffer{},
		log:   &bytes.Buffer{},
	}

	ctx := context.Background()
	ctx = log.WithLogger(ctx, log.New(env.log, false, false))
	ctx = config.WithConfig(ctx, cfg)
	ctx = config.WithResolver(ctx, config.NewResolver(cfg))
	ctx = output.WithPrinter(ctx, env.out)
	env.ctx = withStore(ctx, env.store)
	return env
}

// run executes cmd with args against the environment.
func (e *testEnv) run(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	e.out.Reset()
	cmd.SetContext(e.ctx)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}
