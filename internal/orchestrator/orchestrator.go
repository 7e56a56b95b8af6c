// Package orchestrator fans platform runs out across all configured
// platforms for one target and reads back the persisted history.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rankbeam/citewatch/internal/platform"
	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/internal/runner"
	"github.com/rankbeam/citewatch/pkg/types"
)

// Orchestrator runs all configured platforms concurrently for one target.
// Cross-platform concurrency is safe: each platform is an independent
// rate-limit domain, and pacing applies within a platform only.
type Orchestrator struct {
	store       provider.Store
	registry    *platform.Registry
	runner      *runner.Runner
	repetitions int
	freshness   time.Duration
	logger      *slog.Logger
}

// New creates an Orchestrator.
func New(store provider.Store, registry *platform.Registry, r *runner.Runner, repetitions int, freshness time.Duration) *Orchestrator {
	if repetitions <= 0 {
		repetitions = types.DefaultRepetitions
	}
	if freshness <= 0 {
		freshness = types.DefaultFreshnessHours * time.Hour
	}
	return &Orchestrator{
		store:       store,
		registry:    registry,
		runner:      r,
		repetitions: repetitions,
		freshness:   freshness,
		logger:      slog.Default(),
	}
}

// RunAll launches all configured platform runners concurrently for one
// target, waits for all to settle, then returns the target's full persisted
// history grouped by UTC calendar day. The freshness threshold is computed
// once so every platform is judged against the same instant, and the return
// value is always a read-after-write of the store, so it is correct even
// when some runners skipped or partially failed.
func (o *Orchestrator) RunAll(ctx context.Context, target types.Target, catalog []types.CatalogEntry) ([]types.DayGroup, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("query catalog is empty")
	}

	threshold := time.Now().UTC().Add(-o.freshness)
	o.logger.Info("starting platform fan-out",
		"target", target.ID, "platforms", len(o.registry.Platforms()),
		"queries", len(catalog), "repetitions", o.repetitions)

	var g errgroup.Group
	for _, name := range o.registry.Platforms() {
		entry, ok := o.registry.Get(name)
		if !ok {
			continue
		}
		g.Go(func() error {
			// Runner.Run swallows its own errors, so this join cannot fail.
			o.runner.Run(ctx, target, entry, catalog, o.repetitions, threshold)
			return nil
		})
	}
	_ = g.Wait()

	return o.History(ctx, target.ID)
}

// History reads back all runs and results for a target, grouped by the
// Run's creation date (UTC calendar day), ordered ascending.
func (o *Orchestrator) History(ctx context.Context, targetID string) ([]types.DayGroup, error) {
	runs, err := o.store.ListRuns(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	byDay := make(map[string][]types.RunHistory)
	for _, run := range runs {
		results, err := o.store.ListResults(ctx, run.RunID)
		if err != nil {
			return nil, fmt.Errorf("listing results for run %s: %w", run.RunID, err)
		}
		date := run.CreatedAt.UTC().Format("2006-01-02")
		byDay[date] = append(byDay[date], types.RunHistory{Run: run, Results: results})
	}

	dates := make([]string, 0, len(byDay))
	for date := range byDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	groups := make([]types.DayGroup, 0, len(dates))
	for _, date := range dates {
		groups = append(groups, types.DayGroup{Date: date, Runs: byDay[date]})
	}
	return groups, nil
}
