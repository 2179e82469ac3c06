package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	pkgErrors "github.com/vogiaan1904/repairhub-display/internal/errors"
	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// RedisChannel implements Channel over Redis Pub/Sub. Messages published
// while nobody is subscribed are simply lost, which matches the contract.
type RedisChannel struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisChannel(cli *redis.Client, l logger.Logger) *RedisChannel {
	return &RedisChannel{
		cli: cli,
		l:   l,
	}
}

func (c *RedisChannel) Publish(ctx context.Context, topic string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if err := c.cli.Publish(ctx, topic, data).Err(); err != nil {
		c.l.Errorf(ctx, "RedisChannel.Publish: %v", err)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	c.l.Debugf(ctx, "Published event %s to %s", env.Event, topic)

	return nil
}

func (c *RedisChannel) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	pubsub := c.cli.Subscribe(ctx, topic)

	// Force the SUBSCRIBE round trip so a rejected subscription surfaces
	// here instead of as a silent dead feed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		c.l.Warnf(ctx, "RedisChannel.Subscribe %s: %v", topic, err)
		return nil, fmt.Errorf("%w: %v", pkgErrors.ErrSubscriptionRejected, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan Envelope, 64),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}

	go sub.run(c.l)

	c.l.Infof(ctx, "Subscribed to topic %s", topic)

	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan Envelope
	errs   chan error

	closeOnce sync.Once
	done      chan struct{}
}

func (s *redisSubscription) run(l logger.Logger) {
	defer close(s.events)

	ctx := context.Background()
	ch := s.pubsub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				select {
				case s.errs <- pkgErrors.ErrChannelClosed:
				default:
				}
				return
			}

			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				// Malformed events are a protocol error: log and drop.
				l.Warnf(ctx, "Dropping malformed event on %s: %v", msg.Channel, err)
				continue
			}

			select {
			case s.events <- env:
			case <-s.done:
				return
			}

		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Events() <-chan Envelope { return s.events }

func (s *redisSubscription) Err() <-chan error { return s.errs }

func (s *redisSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
