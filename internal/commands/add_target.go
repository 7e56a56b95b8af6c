package commands

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rankbeam/citewatch/internal/config"
	"github.com/rankbeam/citewatch/pkg/types"
)

// NewAddTargetCmd creates the add-target command.
func NewAddTargetCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add-target [id] [hostname]",
		Short: "Register a hostname for citation monitoring",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddTarget(args[0], args[1], name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name for the target")
	return cmd
}

func runAddTarget(id, hostname, name string) error {
	if err := validateHostname(hostname); err != nil {
		return err
	}

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

	target := types.Target{
		ID:        id,
		Hostname:  hostname,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if target.Name == "" {
		target.Name = hostname
	}

	if err := store.PutTarget(ctx, target); err != nil {
		return fmt.Errorf("saving target: %w", err)
	}

	color.Green("Registered target %s (%s)", target.ID, target.Hostname)
	return nil
}

// validateHostname rejects values that would never match a citation's
// parsed host: schemes, paths, ports, or embedded whitespace.
func validateHostname(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("hostname is required")
	}
	if strings.Contains(hostname, "://") || strings.Contains(hostname, "/") {
		return fmt.Errorf("hostname %q must be a bare host, not a URL", hostname)
	}
	if strings.ContainsAny(hostname, " \t") {
		return fmt.Errorf("hostname %q must not contain whitespace", hostname)
	}
	u, err := url.Parse("https://" + hostname)
	if err != nil || u.Host != hostname {
		return fmt.Errorf("hostname %q is not a valid host", hostname)
	}
	return nil
}
