package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rankbeam/citewatch/internal/metrics"
	"github.com/rankbeam/citewatch/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the citewatch reporting API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	ctx := context.Background()

	cfg, store, orch, _, _, cleanup, err := loadAll(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	shutdownMetrics, err := metrics.Setup(ctx)
	if err != nil {
		return fmt.Errorf("setting up metrics: %w", err)
	}

	addr := ":3000"
	if cfg.Server.Addr != "" {
		addr = cfg.Server.Addr
	}
	srv := server.New(addr, cfg.Server.APIKey, store, orch)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	color.Cyan("citewatch API listening on %s", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("stopping server: %w", err)
		}
		if err := shutdownMetrics(shutdownCtx); err != nil {
			return fmt.Errorf("flushing metrics: %w", err)
		}
		return nil
	}
}
