package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/obstacle-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/obstacle-data-etl/internal/config"
	"github.com/couchcryptid/obstacle-data-etl/internal/observability"
	"github.com/couchcryptid/obstacle-data-etl/internal/pipeline"
)

var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Parse a DOF file and publish it to Kafka",
	Long: `Parse a Digital Obstacle File and publish every record to the
configured Kafka topic, keyed by obstacle identifier. Broker addresses
and the topic come from KAFKA_BROKERS and KAFKA_TOPIC.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger := newCommandLogger()
		metrics := observability.NewMetrics()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		parser := pipeline.New(logger, metrics)
		container, err := parser.ParseFile(ctx, args[0], 0)
		if err != nil {
			return err
		}

		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()

		if err := writer.PublishContainer(ctx, container); err != nil {
			return fmt.Errorf("publish cycle %s: %w", container.Cycle().ID(), err)
		}

		fmt.Printf("published %d obstacles for cycle %s to %s\n",
			container.Len(), container.Cycle().ID(), cfg.KafkaTopic)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
