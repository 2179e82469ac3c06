package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/IBM/sarama"

	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

type Consumer interface {
	Start(ctx context.Context) error
	Close() error
}

type kafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	topics        []string
	handler       MessageHandler
	l             logger.Logger
	wg            sync.WaitGroup
}

func NewConsumer(
	consumerGroup sarama.ConsumerGroup,
	handler MessageHandler,
	l logger.Logger,
) Consumer {
	return &kafkaConsumer{
		consumerGroup: consumerGroup,
		topics:        ConsumerTopics,
		handler:       handler,
		l:             l,
	}
}

func (c *kafkaConsumer) Start(ctx context.Context) error {
	c.wg.Go(func() {
		for {
			// Consume should be called inside an infinite loop; after a
			// rebalance the consumer session must be recreated.
			if err := c.consumerGroup.Consume(ctx, c.topics, c); err != nil {
				c.l.Errorf(ctx, "Error from consumer: %v", err)
			}

			if ctx.Err() != nil {
				c.l.Info(ctx, "Consumer context cancelled")
				return
			}
		}
	})

	c.wg.Go(func() {
		for err := range c.consumerGroup.Errors() {
			c.l.Errorf(ctx, "Consumer group error: %v", err)
		}
	})

	c.l.Info(ctx, "Kafka consumer started")
	return nil
}

func (c *kafkaConsumer) Close() error {
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	c.wg.Wait()
	return nil
}

func (c *kafkaConsumer) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	switch message.Topic {
	case TopicCampaignActivated:
		var event CampaignActivatedEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal campaign activated event: %w", err)
		}
		return c.handler.HandleCampaignActivated(ctx, event)

	case TopicCampaignDeactivated:
		var event CampaignDeactivatedEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal campaign deactivated event: %w", err)
		}
		return c.handler.HandleCampaignDeactivated(ctx, event)

	case TopicSlideUpserted:
		var event SlideUpsertedEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal slide upserted event: %w", err)
		}
		return c.handler.HandleSlideUpserted(ctx, event)

	default:
		c.l.Warnf(ctx, "Unknown topic: %s", message.Topic)
		return nil
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (c *kafkaConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (c *kafkaConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages()
func (c *kafkaConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			if err := c.processMessage(session.Context(), message); err != nil {
				c.l.Errorf(session.Context(), "Failed to process message - topic: %s, offset: %d, error: %v",
					message.Topic, message.Offset, err)
				// Keep consuming; a poison message must not wedge the
				// content feed.
			}

			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
