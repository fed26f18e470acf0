package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/obstacle-data-etl/internal/config"
	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces obstacle messages to a Kafka topic, one message per
// obstacle keyed by identifier so downstream compaction keeps the latest
// cycle's view of each structure.
type Writer struct {
	writer    *kafkago.Writer
	logger    *slog.Logger
	batchSize int
}

// NewWriter creates a Kafka producer for the configured obstacle topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, batchSize: cfg.PublishBatchSize}
}

// PublishContainer serializes every obstacle in the container and writes
// them in identifier order, batched into WriteMessages calls. All messages
// of one call carry the same cycle and published_at headers.
func (w *Writer) PublishContainer(ctx context.Context, container *domain.ObstacleContainer) error {
	obstacles := container.Obstacles()
	cycleID := []byte(container.Cycle().ID())
	publishedAt := []byte(domain.Now().UTC().Format(time.RFC3339))

	for start := 0; start < len(obstacles); start += w.batchSize {
		end := min(start+w.batchSize, len(obstacles))
		msgs := make([]kafkago.Message, 0, end-start)
		for _, obstacle := range obstacles[start:end] {
			msg, err := serializeToMessage(obstacle, cycleID, publishedAt)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("write batch starting at %d: %w", start, err)
		}
	}

	w.logger.Info("container published",
		"cycle", container.Cycle().ID(),
		"obstacles", len(obstacles),
	)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an obstacle into a Kafka message.
func serializeToMessage(obstacle domain.Obstacle, cycleID, publishedAt []byte) (kafkago.Message, error) {
	data, err := json.Marshal(obstacle)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize obstacle %s: %w", obstacle.Identifier, err)
	}
	return kafkago.Message{
		Key:   []byte(obstacle.Identifier),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "cycle", Value: cycleID},
			{Key: "published_at", Value: publishedAt},
		},
	}, nil
}
