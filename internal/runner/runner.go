// Package runner drives the full query catalog through one platform for
// one target.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rankbeam/citewatch/internal/alert"
	"github.com/rankbeam/citewatch/internal/executor"
	"github.com/rankbeam/citewatch/internal/ids"
	"github.com/rankbeam/citewatch/internal/metrics"
	"github.com/rankbeam/citewatch/internal/platform"
	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/internal/schedule"
	"github.com/rankbeam/citewatch/pkg/types"
)

// Hold the run-creation lock just long enough for check-then-create.
const runLockTTL = 2 * time.Minute

// Runner executes one platform's catalog run: freshness check, run
// creation, then the serial query × repetition loop with inter-call pacing.
type Runner struct {
	store    provider.Store
	executor *executor.Executor
	alerts   *alert.Dispatcher
	pacing   time.Duration
	logger   *slog.Logger
}

// New creates a Runner. pacing is the fixed delay between adapter calls
// within one platform; it exists to respect per-platform rate limits, which
// is also why the loop is strictly sequential.
func New(store provider.Store, exec *executor.Executor, alerts *alert.Dispatcher, pacing time.Duration) *Runner {
	if pacing <= 0 {
		pacing = types.DefaultPacingSeconds * time.Second
	}
	return &Runner{
		store:    store,
		executor: exec,
		alerts:   alerts,
		pacing:   pacing,
		logger:   slog.Default(),
	}
}

// Run performs one platform run for a target. Errors never escape: any
// failure is logged and alerted here so a broken platform cannot prevent
// sibling platforms from completing.
func (r *Runner) Run(ctx context.Context, target types.Target, entry platform.Entry, catalog []types.CatalogEntry, repetitions int, threshold time.Time) {
	name := entry.Adapter.Name()

	defer func() {
		if rec := recover(); rec != nil {
			r.reportFailure(ctx, target, name, fmt.Errorf("panic: %v", rec))
		}
	}()

	if err := r.run(ctx, target, entry, catalog, repetitions, threshold); err != nil {
		r.reportFailure(ctx, target, name, err)
	}
}

func (r *Runner) run(ctx context.Context, target types.Target, entry platform.Entry, catalog []types.CatalogEntry, repetitions int, threshold time.Time) error {
	name := entry.Adapter.Name()

	// The lock makes check-then-create single-flight: two concurrent
	// invocations of the same (target, platform) cannot both create a Run
	// within one window.
	lockKey := schedule.RunLockKey(target.ID, name, threshold)
	acquired, err := r.store.AcquireLock(ctx, lockKey, runLockTTL)
	if err != nil {
		return fmt.Errorf("acquiring run lock: %w", err)
	}
	if !acquired {
		metrics.RunsSkippedFresh.Add(ctx, 1)
		r.logger.Info("another invocation holds the run lock, skipping",
			"target", target.ID, "platform", name)
		return nil
	}

	run, release, err := r.createRunIfStale(ctx, target, entry, threshold, lockKey)
	release()
	if err != nil {
		return err
	}
	if run == nil {
		return nil // fresh run exists
	}

	for i, catalogEntry := range catalog {
		for rep := 1; rep <= repetitions; rep++ {
			if err := r.executor.Execute(ctx, target, *run, catalogEntry, entry.Adapter, rep); err != nil {
				return err
			}
			// Pace adjacent calls; the last one needs no trailing delay.
			if i == len(catalog)-1 && rep == repetitions {
				break
			}
			if err := sleepCtx(ctx, r.pacing); err != nil {
				return err
			}
		}
	}

	r.logger.Info("platform run complete",
		"target", target.ID, "platform", name, "run", run.RunID,
		"queries", len(catalog), "repetitions", repetitions)
	return nil
}

// createRunIfStale checks the freshness window and creates a new Run when no
// fresh one exists. Returns (nil, release, nil) on a freshness skip. The
// returned release func unlocks the run lock; it is safe to call once.
func (r *Runner) createRunIfStale(ctx context.Context, target types.Target, entry platform.Entry, threshold time.Time, lockKey string) (*types.Run, func(), error) {
	name := entry.Adapter.Name()
	release := func() {
		if err := r.store.ReleaseLock(ctx, lockKey); err != nil {
			r.logger.Warn("failed to release run lock", "key", lockKey, "error", err)
		}
	}

	existing, err := r.store.LatestRunSince(ctx, target.ID, name, threshold)
	if err != nil {
		return nil, release, fmt.Errorf("checking run freshness: %w", err)
	}
	if existing != nil {
		metrics.RunsSkippedFresh.Add(ctx, 1)
		r.logger.Info("fresh run exists, skipping",
			"target", target.ID, "platform", name,
			"run", existing.RunID, "createdAt", existing.CreatedAt)
		return nil, release, nil
	}

	run := types.Run{
		RunID:     ids.New(),
		TargetID:  target.ID,
		Platform:  name,
		Model:     entry.Model,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.CreateRun(ctx, run); err != nil {
		return nil, release, fmt.Errorf("creating run: %w", err)
	}

	metrics.RunsCreated.Add(ctx, 1)
	r.logger.Info("run created",
		"target", target.ID, "platform", name, "run", run.RunID, "model", run.Model)
	return &run, release, nil
}

func (r *Runner) reportFailure(ctx context.Context, target types.Target, name types.Platform, err error) {
	r.logger.Error("platform run failed",
		"target", target.ID, "platform", name, "error", err)
	r.alerts.Dispatch(ctx, types.Alert{
		Level:     types.AlertLevelError,
		TargetID:  target.ID,
		Platform:  name,
		Message:   fmt.Sprintf("platform run failed: %v", err),
		Timestamp: time.Now().UTC(),
	})
}

// sleepCtx waits for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
