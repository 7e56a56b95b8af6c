// Package alert implements error-tracking dispatch to multiple sinks.
package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rankbeam/citewatch/internal/metrics"
	"github.com/rankbeam/citewatch/pkg/types"
)

// Sink is an alert destination.
type Sink interface {
	Send(ctx context.Context, alert types.Alert) error
	Name() string
}

// Dispatcher routes alerts to configured sinks.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher from alert configs.
func NewDispatcher(configs []types.AlertConfig) (*Dispatcher, error) {
	d := &Dispatcher{logger: slog.Default()}
	for _, cfg := range configs {
		sink, err := newSink(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s sink: %w", cfg.Type, err)
		}
		d.sinks = append(d.sinks, sink)
	}
	return d, nil
}

// NewDispatcherWithSinks creates a dispatcher from prebuilt sinks. Used by
// tests to install capturing sinks.
func NewDispatcherWithSinks(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, logger: slog.Default()}
}

// Dispatch sends an alert to all configured sinks. Sink errors are logged,
// never propagated: alerting must not break the pipeline it reports on.
func (d *Dispatcher) Dispatch(ctx context.Context, alert types.Alert) {
	metrics.AlertsDispatched.Add(ctx, 1)
	for _, sink := range d.sinks {
		if err := sink.Send(ctx, alert); err != nil {
			metrics.AlertsFailed.Add(ctx, 1)
			d.logger.Error("alert delivery failed", "sink", sink.Name(), "error", err)
		}
	}
}

func newSink(cfg types.AlertConfig) (Sink, error) {
	switch cfg.Type {
	case types.AlertConsole:
		return NewConsoleSink(), nil
	case types.AlertWebhook:
		if cfg.URL == "" {
			return nil, fmt.Errorf("webhook URL required")
		}
		return NewWebhookSink(cfg.URL), nil
	case types.AlertFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file path required")
		}
		return NewFileSink(cfg.Path)
	case types.AlertSNS:
		return NewSNSSink(cfg.TopicARN)
	default:
		return nil, fmt.Errorf("unknown alert type %q", cfg.Type)
	}
}
