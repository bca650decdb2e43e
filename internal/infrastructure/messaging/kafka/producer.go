package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	"github.com/trovesx/OncoPurpose/internal/store"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// EventEnvelope is the wire shape of every published event.
type EventEnvelope struct {
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Producer publishes events.  A nil Producer (brokers not configured) is
// valid and drops every publish silently.
type Producer struct {
	writer *kafkago.Writer
	log    logging.Logger
}

// NewProducer creates a Producer.  Returns nil when no brokers are
// configured, which disables eventing without error.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) *Producer {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Producer{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Balancer:     &kafkago.Hash{},
			WriteTimeout: writeTimeout,
			RequiredAcks: kafkago.RequireOne,
			Async:        false,
		},
		log: log.Named("kafka"),
	}
}

// Publish writes one enveloped event to the topic, keyed for partition
// affinity.
func (p *Producer) Publish(ctx context.Context, topic, key, eventType string, payload interface{}) error {
	if p == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to marshal event payload")
	}
	body, err := json.Marshal(EventEnvelope{
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to marshal event envelope")
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: body,
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "failed to publish event")
	}
	return nil
}

// PublishArtifactCreated satisfies the store's EventPublisher contract.
func (p *Producer) PublishArtifactCreated(ctx context.Context, artifact *store.AnalysisArtifact) error {
	return p.Publish(ctx, TopicAnalysisCreated, artifact.ID, "analysis.created", artifact)
}

// Close flushes and releases the writer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
