package repository

import (
	"context"
	"fmt"

	"SignalFuse/internal/domain/models"
	pkgkafka "SignalFuse/pkg/kafka"
)

// KafkaPublisher implements Publisher over the Kafka producer, keyed by
// symbol so consumers see per-symbol ordering.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, symbol string, res *models.ConsensusResult) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(symbol), res); err != nil {
		return fmt.Errorf("publish consensus for %s: %w", symbol, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// LogPublisher adapts the Kafka producer to the log collector's
// Publisher interface.
type LogPublisher struct {
	producer *pkgkafka.Producer
}

func NewLogPublisher(producer *pkgkafka.Producer) *LogPublisher {
	return &LogPublisher{producer: producer}
}

func (p *LogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}
