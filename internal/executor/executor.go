// Package executor runs a single query once against one platform adapter
// and persists the outcome.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rankbeam/citewatch/internal/alert"
	"github.com/rankbeam/citewatch/internal/metrics"
	"github.com/rankbeam/citewatch/internal/platform"
	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/pkg/types"
)

// Executor persists one Result per (run, query, repetition), guarding
// against duplicate execution. Adapter failures are absorbed per item;
// storage failures propagate to the runner.
type Executor struct {
	store  provider.Store
	alerts *alert.Dispatcher
	logger *slog.Logger
}

// New creates an Executor.
func New(store provider.Store, alerts *alert.Dispatcher) *Executor {
	return &Executor{store: store, alerts: alerts, logger: slog.Default()}
}

// Execute runs one query one time. If a Result already exists for
// (run, query, repetition) the adapter is not called and the call is a
// no-op, so a partially failed run can be re-invoked without re-charging
// API calls for completed items.
func (e *Executor) Execute(ctx context.Context, target types.Target, run types.Run, entry types.CatalogEntry, adapter platform.Adapter, repetition int) error {
	exists, err := e.store.HasResult(ctx, run.RunID, entry.Query, repetition)
	if err != nil {
		return fmt.Errorf("checking existing result: %w", err)
	}
	if exists {
		metrics.DuplicatesSkipped.Add(ctx, 1)
		e.logger.Info("result exists, skipping",
			"target", target.ID, "platform", run.Platform,
			"run", run.RunID, "query", entry.Query, "repetition", repetition)
		return nil
	}

	platformAttr := metric.WithAttributes(attribute.String("platform", string(run.Platform)))
	metrics.QueriesTotal.Add(ctx, 1, platformAttr)

	answer, err := adapter.Query(ctx, entry.Query)
	if err != nil {
		metrics.QueryErrors.Add(ctx, 1, platformAttr)
		e.logger.Error("adapter query failed",
			"target", target.ID, "platform", run.Platform, "run", run.RunID,
			"query", entry.Query, "category", entry.Category,
			"repetition", repetition, "error", err)
		e.alerts.Dispatch(ctx, types.Alert{
			Level:     types.AlertLevelError,
			TargetID:  target.ID,
			Platform:  run.Platform,
			RunID:     run.RunID,
			Query:     entry.Query,
			Message:   fmt.Sprintf("query failed (repetition %d): %v", repetition, err),
			Timestamp: time.Now().UTC(),
		})
		// The run continues to the next repetition/query.
		return nil
	}

	result := types.Result{
		RunID:        run.RunID,
		Query:        entry.Query,
		Category:     entry.Category,
		Repetition:   repetition,
		Answer:       answer.Text,
		Citations:    answer.Citations,
		ExtraQueries: answer.ExtraQueries,
		Position:     CitationPosition(answer.Citations, target.Hostname),
		CreatedAt:    time.Now().UTC(),
	}

	if err := e.store.PutResult(ctx, result); err != nil {
		// A concurrent writer beat us to the same tuple; the row exists,
		// which is all the contract requires.
		if errors.Is(err, provider.ErrResultExists) {
			metrics.DuplicatesSkipped.Add(ctx, 1)
			return nil
		}
		return fmt.Errorf("persisting result: %w", err)
	}

	metrics.ResultsPersisted.Add(ctx, 1, platformAttr)
	e.logger.Info("result persisted",
		"target", target.ID, "platform", run.Platform, "run", run.RunID,
		"query", entry.Query, "repetition", repetition,
		"citations", len(result.Citations), "position", positionValue(result.Position))
	return nil
}

// CitationPosition returns the index of the first citation whose parsed URL
// host equals hostname (exact string comparison), or nil when no citation
// matches. A citation that fails to parse mid-scan ends the scan with no
// position.
func CitationPosition(citations []string, hostname string) *int {
	for i, c := range citations {
		u, err := url.Parse(c)
		if err != nil {
			return nil
		}
		if u.Host == hostname {
			idx := i
			return &idx
		}
	}
	return nil
}

func positionValue(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
