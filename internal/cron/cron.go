// Package cron implements the daily batch driver: one orchestrator
// invocation per registered target, with per-target failure isolation.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rankbeam/citewatch/internal/alert"
	"github.com/rankbeam/citewatch/internal/catalog"
	"github.com/rankbeam/citewatch/internal/ids"
	"github.com/rankbeam/citewatch/internal/metrics"
	"github.com/rankbeam/citewatch/internal/orchestrator"
	"github.com/rankbeam/citewatch/internal/platform"
	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/internal/schedule"
	"github.com/rankbeam/citewatch/pkg/types"
)

// Driver runs the daily batch. An external scheduler (EventBridge, crontab)
// invokes RunBatch once per day.
type Driver struct {
	store   provider.Store
	orch    *orchestrator.Orchestrator
	catalog *catalog.Resolver
	alerts  *alert.Dispatcher
	retry   schedule.RetryPolicy
	logger  *slog.Logger

	// sleep is swapped in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration)
}

// New creates a batch Driver.
func New(store provider.Store, orch *orchestrator.Orchestrator, cat *catalog.Resolver, alerts *alert.Dispatcher) *Driver {
	return &Driver{
		store:   store,
		orch:    orch,
		catalog: cat,
		alerts:  alerts,
		retry:   schedule.DefaultRetryPolicy(),
		logger:  slog.Default(),
		sleep: func(ctx context.Context, d time.Duration) {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
		},
	}
}

// RunBatch enumerates all registered targets and invokes the orchestrator
// for each. A failing target is recorded in the summary and retried per the
// retry policy; it never aborts the batch. Retrying a target is safe because
// completed work is protected by the freshness window and result
// idempotency.
func (d *Driver) RunBatch(ctx context.Context) (*types.BatchSummary, error) {
	summary := &types.BatchSummary{
		BatchID:   ids.New(),
		StartedAt: time.Now().UTC(),
	}

	targets, err := d.store.ListTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing targets: %w", err)
	}
	summary.Targets = len(targets)

	d.logger.Info("daily batch starting", "batch", summary.BatchID, "targets", len(targets))

	for _, target := range targets {
		if err := d.runTarget(ctx, target); err != nil {
			category := platform.ClassifyFailure(err)
			metrics.TargetsFailed.Add(ctx, 1)
			summary.Failed = append(summary.Failed, types.TargetFailure{
				TargetID: target.ID,
				Category: category,
				Error:    err.Error(),
			})
			d.logger.Error("target failed", "batch", summary.BatchID,
				"target", target.ID, "category", category, "error", err)
			d.alerts.Dispatch(ctx, types.Alert{
				Level:     types.AlertLevelError,
				TargetID:  target.ID,
				Message:   fmt.Sprintf("daily batch target failed: %v", err),
				Timestamp: time.Now().UTC(),
			})
			continue
		}
		summary.Succeeded++
	}

	summary.EndedAt = time.Now().UTC()
	d.logger.Info("daily batch finished", "batch", summary.BatchID,
		"succeeded", summary.Succeeded, "failed", len(summary.Failed))
	return summary, nil
}

// runTarget invokes the orchestrator for one target, re-attempting
// retryable failures per the retry policy.
func (d *Driver) runTarget(ctx context.Context, target types.Target) error {
	entries, err := d.catalog.ForTarget(target.ID)
	if err != nil {
		return fmt.Errorf("resolving catalog: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= d.retry.MaxAttempts; attempt++ {
		if _, err := d.orch.RunAll(ctx, target, entries); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if !schedule.IsRetryable(d.retry, platform.ClassifyFailure(lastErr)) {
			break
		}
		if attempt < d.retry.MaxAttempts {
			backoff := schedule.CalculateBackoff(d.retry, attempt)
			d.logger.Warn("retrying target", "target", target.ID,
				"attempt", attempt, "backoff", backoff, "error", lastErr)
			d.sleep(ctx, backoff)
		}
	}
	return lastErr
}
