// Package commands implements the citewatch CLI commands.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/rankbeam/citewatch/internal/alert"
	"github.com/rankbeam/citewatch/internal/catalog"
	"github.com/rankbeam/citewatch/internal/config"
	"github.com/rankbeam/citewatch/internal/executor"
	"github.com/rankbeam/citewatch/internal/orchestrator"
	"github.com/rankbeam/citewatch/internal/platform"
	"github.com/rankbeam/citewatch/internal/provider"
	ddbprov "github.com/rankbeam/citewatch/internal/provider/dynamodb"
	"github.com/rankbeam/citewatch/internal/provider/memory"
	"github.com/rankbeam/citewatch/internal/runner"
	"github.com/rankbeam/citewatch/internal/secrets"
	"github.com/rankbeam/citewatch/pkg/types"
)

// buildStore constructs the configured storage backend. The returned
// cleanup func stops the store.
func buildStore(ctx context.Context, cfg *types.ProjectConfig) (provider.Store, func(), error) {
	var store provider.Store

	switch cfg.Provider {
	case "memory":
		store = memory.New()
	case "dynamodb":
		dc, _ := cfg.DynamoDB.(*ddbprov.Config)
		s, err := ddbprov.New(dc)
		if err != nil {
			return nil, nil, fmt.Errorf("creating dynamodb store: %w", err)
		}
		store = s
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if err := store.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("starting store: %w", err)
	}

	cleanup := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = store.Stop(stopCtx)
	}
	return store, cleanup, nil
}

// buildPipeline wires the adapter registry, executor, runner, and
// orchestrator from the project config.
func buildPipeline(ctx context.Context, cfg *types.ProjectConfig, store provider.Store) (*orchestrator.Orchestrator, *alert.Dispatcher, error) {
	dispatcher, err := alert.NewDispatcher(cfg.Alerts)
	if err != nil {
		return nil, nil, fmt.Errorf("building alert dispatcher: %w", err)
	}

	resolver := secrets.NewResolver()
	registry, err := platform.NewRegistry(ctx, cfg.Platforms, resolver.Resolve)
	if err != nil {
		return nil, nil, fmt.Errorf("building platform registry: %w", err)
	}

	exec := executor.New(store, dispatcher)
	run := runner.New(store, exec, dispatcher, time.Duration(cfg.PacingSeconds)*time.Second)
	orch := orchestrator.New(store, registry, run,
		cfg.Repetitions, time.Duration(cfg.FreshnessHours)*time.Hour)
	return orch, dispatcher, nil
}

// buildCatalog constructs the catalog resolver from the project config.
func buildCatalog(cfg *types.ProjectConfig) (*catalog.Resolver, error) {
	var base []types.CatalogEntry
	if cfg.CatalogFile != "" {
		entries, err := catalog.Load(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		base = entries
	}
	return catalog.NewResolver(base, cfg.CatalogDir), nil
}

// loadAll is the common command preamble: config, store, pipeline, catalog.
func loadAll(ctx context.Context) (*types.ProjectConfig, provider.Store, *orchestrator.Orchestrator, *alert.Dispatcher, *catalog.Resolver, func(), error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, err
	}

	orch, dispatcher, err := buildPipeline(ctx, cfg, store)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, nil, nil, err
	}

	cat, err := buildCatalog(cfg)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, nil, nil, err
	}

	return cfg, store, orch, dispatcher, cat, cleanup, nil
}
