package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rankbeam/citewatch/pkg/types"
)

const runTimeout = 30 * time.Minute

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [target-id]",
		Short: "Run the query catalog for one target across all platforms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTarget(args[0])
		},
	}
}

func runTarget(targetID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	_, store, orch, _, cat, cleanup, err := loadAll(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	target, err := store.GetTarget(ctx, targetID)
	if err != nil {
		return fmt.Errorf("loading target %s: %w", targetID, err)
	}

	catalog, err := cat.ForTarget(targetID)
	if err != nil {
		return fmt.Errorf("loading catalog for %s: %w", targetID, err)
	}

	color.Cyan("Running %d queries for %s (%s)...\n", len(catalog), target.ID, target.Hostname)

	history, err := orch.RunAll(ctx, *target, catalog)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printHistory(history, target.Hostname)
	return nil
}

func printHistory(history []types.DayGroup, hostname string) {
	if len(history) == 0 {
		fmt.Println("No runs recorded.")
		return
	}

	bold := color.New(color.Bold)
	for _, day := range history {
		_, _ = bold.Printf("%s\n", day.Date)
		for _, rh := range day.Runs {
			cited := 0
			for _, res := range rh.Results {
				if res.Position != nil {
					cited++
				}
			}
			statusStr := color.YellowString("not cited")
			if cited > 0 {
				statusStr = color.GreenString("cited in %d/%d", cited, len(rh.Results))
			}
			fmt.Printf("  %-12s %-28s results=%-3d %s\n",
				rh.Run.Platform, rh.Run.Model, len(rh.Results), statusStr)
		}
	}
	fmt.Println()
	fmt.Printf("Positions are zero-based indexes of %s in each answer's citations.\n", hostname)
}
