package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rankbeam/citewatch/internal/config"
	"github.com/rankbeam/citewatch/internal/orchestrator"
)

const statusTimeout = 30 * time.Second

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var targetID string

	cmd := &cobra.Command{
		Use:   "status [target-id]",
		Short: "Show targets and their citation history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				targetID = args[0]
			}
			return runStatus(targetID)
		},
	}
	return cmd
}

func runStatus(targetID string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if targetID != "" {
		target, err := store.GetTarget(ctx, targetID)
		if err != nil {
			return fmt.Errorf("loading target %s: %w", targetID, err)
		}

		// Orchestrator is used read-only here; no registry or runner needed.
		orch := orchestrator.New(store, nil, nil, cfg.Repetitions,
			time.Duration(cfg.FreshnessHours)*time.Hour)
		history, err := orch.History(ctx, targetID)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}

		printHistory(history, target.Hostname)
		return nil
	}

	targets, err := store.ListTargets(ctx)
	if err != nil {
		return fmt.Errorf("listing targets: %w", err)
	}

	if len(targets) == 0 {
		fmt.Println("No targets registered. Add one with: citewatch add-target <id> <hostname>")
		return nil
	}

	bold := color.New(color.Bold)
	_, _ = bold.Println("Monitored Targets:")
	fmt.Println()
	for _, t := range targets {
		fmt.Printf("  %-24s %-32s %s\n", t.ID, t.Hostname, t.Name)
	}
	fmt.Println()
	return nil
}
