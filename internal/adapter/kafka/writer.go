// Package kafka publishes location acquisition failure reports to a Kafka
// topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/event-finder/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// ReportWriter is a location.Sink that produces one message per failure.
// Messages are keyed by error code so reports of the same kind share a
// partition.
type ReportWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewReportWriter creates a producer for topic on brokers.
func NewReportWriter(brokers []string, topic string, logger *slog.Logger) *ReportWriter {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &ReportWriter{writer: w, logger: logger}
}

// Report publishes the failure. Publishing errors are logged, never returned.
func (w *ReportWriter) Report(ctx context.Context, failure domain.AcquisitionFailure) {
	msg, err := serializeReport(failure)
	if err != nil {
		w.logger.Error("serialize acquisition report", "error", err)
		return
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.logger.Warn("publish acquisition report failed",
			"topic", w.writer.Topic,
			"code", failure.Code,
			"error", err,
		)
		return
	}
	w.logger.Debug("acquisition report published", "topic", w.writer.Topic, "code", failure.Code)
}

func (w *ReportWriter) Close() error {
	return w.writer.Close()
}

func serializeReport(f domain.AcquisitionFailure) (kafkago.Message, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize acquisition report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(f.CodeName),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "code", Value: []byte(strconv.Itoa(f.Code))},
			{Key: "source", Value: []byte(f.Source)},
			{Key: "occurred_at", Value: []byte(f.OccurredAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
