package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

type Producer interface {
	PublishIntakeCompleted(ctx context.Context, event IntakeCompletedEvent) error
	PublishIntakeCancelled(ctx context.Context, event IntakeCancelledEvent) error
	Close() error
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	l        logger.Logger
}

func NewProducer(producer sarama.SyncProducer, l logger.Logger) Producer {
	return &kafkaProducer{
		producer: producer,
		l:        l,
	}
}

func (p *kafkaProducer) PublishIntakeCompleted(ctx context.Context, event IntakeCompletedEvent) error {
	event.Timestamp = time.Now()
	return p.publishEvent(ctx, TopicIntakeCompleted, event.LocationID, event)
}

func (p *kafkaProducer) PublishIntakeCancelled(ctx context.Context, event IntakeCancelledEvent) error {
	event.Timestamp = time.Now()
	return p.publishEvent(ctx, TopicIntakeCancelled, event.LocationID, event)
}

func (p *kafkaProducer) publishEvent(ctx context.Context, topic, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key), // Partition by location_id for ordering
		Value: sarama.ByteEncoder(value),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.l.Errorf(ctx, "Failed to send kafka message - topic: %s, error: %v", topic, err)
		return fmt.Errorf("failed to send kafka message: %w", err)
	}

	p.l.Debugf(ctx, "Kafka message sent - topic: %s, partition: %d, offset: %d",
		topic, partition, offset)

	return nil
}

func (p *kafkaProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
