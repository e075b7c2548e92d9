package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/modelyard/modelyard/internal/config"
	"github.com/modelyard/modelyard/internal/server"
	"github.com/modelyard/modelyard/internal/server/handlers"
	"github.com/modelyard/modelyard/internal/serving"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the modelyard HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.Default()

	promoter, err := newPromoter(cfg)
	if err != nil {
		return err
	}

	// Serving state: load whatever production model exists before accepting
	// traffic, so /predict works immediately after a restart.
	state := serving.New(cfg.Root, logger)
	state.Refresh()

	ctx := context.Background()
	var refresher *serving.Refresher
	if cfg.Refresher != nil && cfg.Refresher.Enabled {
		refresher = serving.NewRefresher(state, cfg.Root, config.RefreshInterval(cfg), logger)
		refresher.Start(ctx)
	}

	h := handlers.New(promoter, state, *cfg.Model)
	h.SetLogger(logger)

	srv := server.New(cfg.Server.Addr, h, cfg.Server.APIKey, cfg.Server.MaxRequestBody, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if refresher != nil {
			refresher.Stop(shutdownCtx)
		}
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		color.Green("Server stopped gracefully")
		return nil
	}
}
