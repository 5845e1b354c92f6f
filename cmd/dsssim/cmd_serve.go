package main

import (
	"context"
	"fmt"
	"os"

	"github.com/signalworks/dsssim/internal/config"
	"github.com/signalworks/dsssim/internal/engine"
	"github.com/signalworks/dsssim/internal/logging"
	"github.com/signalworks/dsssim/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			eng := engine.New(engine.Config{CacheCapacity: cfg.Engine.CacheCapacity})
			srv := server.New(eng, cfg, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			notifySignals(sigCh)
			go func() {
				sig := <-sigCh
				logger.Info("shutting down", "signal", sig.String())
				cancel()
			}()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address (overrides config)")

	return cmd
}
