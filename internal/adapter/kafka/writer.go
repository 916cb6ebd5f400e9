package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/tonytillet/lumen-indicators/internal/config"
	"github.com/tonytillet/lumen-indicators/internal/domain"
)

// NationalKey is the message key of the national indicator record.
const NationalKey = "national"

// IndicatorMessage is the payload published for the nation and for each region.
type IndicatorMessage struct {
	Scope           string                 `json:"scope"` // "national" or "region"
	Region          string                 `json:"region,omitempty"`
	AsOf            string                 `json:"as_of"`
	ComputedAt      time.Time              `json:"computed_at"`
	Granularity     domain.TimeGranularity `json:"granularity"`
	IncidenceSource domain.IncidenceSource `json:"incidence_source"`
	WeightsVersion  string                 `json:"weights_version"`
	Rt              domain.Value           `json:"rt"`
	SC              domain.Value           `json:"sc"`
	Severity        domain.Value           `json:"severity"`
	Lumen           domain.Value           `json:"lumen_score"`
}

// Writer produces indicator messages to a Kafka topic.
// It implements pipeline.SnapshotLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadSnapshot publishes the national record followed by one record per region
// in a single WriteMessages call. Records are keyed so a compacted topic keeps
// the latest value of each.
func (w *Writer) LoadSnapshot(ctx context.Context, snap domain.Snapshot) error {
	msgs, err := serializeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write indicator messages: %w", err)
	}
	w.logger.Debug("snapshot written", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeSnapshot splits a snapshot into keyed Kafka messages.
func serializeSnapshot(snap domain.Snapshot) ([]kafkago.Message, error) {
	base := IndicatorMessage{
		AsOf:            snap.AsOf.Format(time.DateOnly),
		ComputedAt:      snap.ComputedAt,
		Granularity:     snap.Granularity,
		IncidenceSource: snap.IncidenceSource,
		WeightsVersion:  snap.WeightsVersion,
	}

	national := base
	national.Scope = "national"
	national.Rt = snap.National.Rt
	national.SC = snap.National.SC
	national.Severity = snap.National.Severity
	national.Lumen = snap.National.Lumen

	msgs := make([]kafkago.Message, 0, len(snap.Regions)+1)
	msg, err := serializeToMessage(NationalKey, national)
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, msg)

	for _, r := range snap.Regions {
		regional := base
		regional.Scope = "region"
		regional.Region = r.Region
		regional.Rt = r.Rt
		regional.SC = r.SC
		regional.Severity = r.Severity
		regional.Lumen = r.Lumen

		msg, err := serializeToMessage(r.Region, regional)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// serializeToMessage marshals an IndicatorMessage into a Kafka message.
func serializeToMessage(key string, m IndicatorMessage) (kafkago.Message, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize indicator message %q: %w", key, err)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "indicator_version", Value: []byte(m.WeightsVersion)},
			{Key: "computed_at", Value: []byte(m.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}
