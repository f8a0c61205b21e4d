// Package kafka publishes analysis summaries for downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/heatscape/uhi-analysis-service/internal/config"
	"github.com/heatscape/uhi-analysis-service/internal/domain"
)

// Writer produces analysis-summary messages to the results topic.
// It implements pipeline.ResultPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured results topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one analysis summary and writes it to the results topic.
func (w *Writer) Publish(ctx context.Context, result *domain.AnalysisResult) error {
	msg, err := serializeToMessage(result)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// summary is the published shape: rankings and batch facts, not the full
// per-point feature collection.
type summary struct {
	AnalysisID         string          `json:"analysis_id"`
	City               string          `json:"city"`
	GeneratedAt        time.Time       `json:"generated_at"`
	PointCount         int             `json:"point_count"`
	AmbientTempCelsius float64         `json:"ambient_temp_celsius,omitempty"`
	Rankings           domain.Rankings `json:"rankings"`
}

// serializeToMessage marshals an analysis summary into a Kafka message.
func serializeToMessage(result *domain.AnalysisResult) (kafkago.Message, error) {
	s := summary{
		AnalysisID:  result.AnalysisID,
		City:        result.City,
		GeneratedAt: result.GeneratedAt,
		PointCount:  len(result.Features),
		Rankings:    result.Rankings,
	}
	if len(result.Features) > 0 {
		if temp, ok := result.Features[0].Properties["ambient_temp_celsius"].(float64); ok {
			s.AmbientTempCelsius = temp
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize analysis summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(result.AnalysisID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "city", Value: []byte(result.City)},
			{Key: "generated_at", Value: []byte(result.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
