package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/faa"
	httpadapter "github.com/couchcryptid/obstacle-data-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/obstacle-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/obstacle-data-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/obstacle-data-etl/internal/config"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/couchcryptid/obstacle-data-etl/internal/pipeline"
	"github.com/couchcryptid/obstacle-data-etl/internal/syncer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the continuous sync service",
	Long: `Run the sync service: on every interval, resolve the current
publication cycle, fetch and parse its file, index it into SQLite, and
publish it to Kafka. An ops HTTP server exposes /healthz, /readyz,
/status, and /metrics. Configuration comes from the environment.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
		metrics := observability.NewMetrics()

		client := faa.NewClient(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		parser := pipeline.New(logger, metrics)

		// The index lives alongside the downloaded publications.
		store, err := sqlite.Open(filepath.Join(cfg.DataDir, "obstacles.db"), logger)
		if err != nil {
			return fmt.Errorf("open index: %w", err)
		}

		sync := syncer.New(client, parser, writer, store, logger, metrics, cfg.SyncInterval)
		srv := httpadapter.NewServer(cfg.HTTPAddr, sync, func() any { return sync.Status() }, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Start HTTP server.
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()

		// Start the sync loop.
		go func() {
			if err := sync.Run(ctx); err != nil {
				logger.Error("syncer error", "error", err)
			}
		}()

		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("sqlite close error", "error", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
