// Package metrics exposes pipeline counters via OpenTelemetry.
package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("github.com/rankbeam/citewatch")

var (
	QueriesTotal      = mustCounter("citewatch.queries.total", "Adapter queries issued")
	QueryErrors       = mustCounter("citewatch.queries.errors", "Adapter queries that failed")
	ResultsPersisted  = mustCounter("citewatch.results.persisted", "Result rows written")
	DuplicatesSkipped = mustCounter("citewatch.results.duplicates_skipped", "Executor no-ops on existing results")
	RunsCreated       = mustCounter("citewatch.runs.created", "Runs created")
	RunsSkippedFresh  = mustCounter("citewatch.runs.skipped_fresh", "Runner invocations skipped by the freshness window")
	TargetsFailed     = mustCounter("citewatch.batch.targets_failed", "Targets that failed within a daily batch")
	AlertsDispatched  = mustCounter("citewatch.alerts.dispatched", "Alerts dispatched to sinks")
	AlertsFailed      = mustCounter("citewatch.alerts.failed", "Alert sink delivery failures")
)

func mustCounter(name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		panic(err)
	}
	return c
}
