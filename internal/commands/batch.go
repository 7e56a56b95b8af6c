package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rankbeam/citewatch/internal/cron"
	"github.com/rankbeam/citewatch/pkg/types"
)

const batchTimeout = 2 * time.Hour

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Run the query catalog for every registered target",
		Long:  "Runs the full pipeline for all targets, the same work the daily scheduler performs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch()
		},
	}
}

func runBatch() error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	_, store, orch, dispatcher, cat, cleanup, err := loadAll(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	driver := cron.New(store, orch, cat, dispatcher)

	summary, err := driver.RunBatch(ctx)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	printBatchSummary(summary)
	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d of %d targets failed", len(summary.Failed), summary.Targets)
	}
	return nil
}

func printBatchSummary(summary *types.BatchSummary) {
	bold := color.New(color.Bold)
	_, _ = bold.Printf("Batch %s\n", summary.BatchID)
	fmt.Printf("  targets:   %d\n", summary.Targets)
	fmt.Printf("  succeeded: %s\n", color.GreenString("%d", summary.Succeeded))
	fmt.Printf("  duration:  %s\n", summary.EndedAt.Sub(summary.StartedAt).Round(time.Second))

	for _, f := range summary.Failed {
		color.Red("  failed: %s (%s): %s", f.TargetID, f.Category, f.Error)
	}
}
