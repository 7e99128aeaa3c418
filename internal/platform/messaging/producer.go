package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"kdom/contexts/content-governance/governance-service/ports"
)

// KafkaProducer publishes envelopes to a Kafka cluster. Records are keyed by
// the envelope partition key so events for one item stay ordered.
type KafkaProducer struct {
	client *kgo.Client
	logger *slog.Logger
}

func NewKafkaProducer(ctx context.Context, brokers []string, clientID string, logger *slog.Logger) (*KafkaProducer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RecordRetries(5),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}
	return &KafkaProducer{client: client, logger: logger}, nil
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("publish %s: %w", event.EventID, err)
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(event.PartitionKey),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "source_service", Value: []byte(event.SourceService)},
		},
		Timestamp: event.OccurredAt,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.logger.Error("kafka produce failed",
			"event", "kafka_produce_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	p.logger.Info("event produced",
		"event", "kafka_produce",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

func (p *KafkaProducer) Close() {
	if p != nil && p.client != nil {
		p.client.Close()
	}
}

var (
	_ ports.EventPublisher = (*KafkaProducer)(nil)
	_ ports.EventPublisher = (*LocalBus)(nil)
)
