package transport

import (
	"context"
	"sync"

	pkgErrors "github.com/vogiaan1904/repairhub-display/internal/errors"
)

// MemoryChannel is an in-process Channel used by unit tests and the intake
// simulator. Delivery is at-least-once while the subscriber keeps up; a
// full subscriber buffer drops the event, matching the best-effort contract.
type MemoryChannel struct {
	mu     sync.RWMutex
	subs   map[string][]*memorySubscription
	closed bool
}

func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{subs: make(map[string][]*memorySubscription)}
}

func (c *MemoryChannel) Publish(_ context.Context, topic string, env Envelope) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return pkgErrors.ErrChannelClosed
	}
	subs := append([]*memorySubscription(nil), c.subs[topic]...)
	c.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(env)
	}

	return nil
}

func (c *MemoryChannel) Subscribe(_ context.Context, topic string) (Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, pkgErrors.ErrSubscriptionRejected
	}

	sub := &memorySubscription{
		ch:     c,
		topic:  topic,
		events: make(chan Envelope, 64),
		errs:   make(chan error, 1),
	}
	c.subs[topic] = append(c.subs[topic], sub)

	return sub, nil
}

// CloseTopic simulates a transport-side closure of every subscription on
// the topic, as seen after a network drop.
func (c *MemoryChannel) CloseTopic(topic string) {
	c.mu.Lock()
	subs := c.subs[topic]
	delete(c.subs, topic)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.fail(pkgErrors.ErrChannelClosed)
	}
}

// Close shuts the channel down; further publishes and subscribes fail.
func (c *MemoryChannel) Close() {
	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[string][]*memorySubscription)
	c.closed = true
	c.mu.Unlock()

	for _, topicSubs := range subs {
		for _, sub := range topicSubs {
			sub.fail(pkgErrors.ErrChannelClosed)
		}
	}
}

func (c *MemoryChannel) remove(topic string, target *memorySubscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	subs := c.subs[topic]
	for i, sub := range subs {
		if sub == target {
			c.subs[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
}

// SubscriberCount reports live subscriptions on a topic. Test helper.
func (c *MemoryChannel) SubscriberCount(topic string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs[topic])
}

type memorySubscription struct {
	ch     *MemoryChannel
	topic  string
	events chan Envelope
	errs   chan error

	mu     sync.Mutex
	closed bool
}

func (s *memorySubscription) Events() <-chan Envelope { return s.events }

func (s *memorySubscription) Err() <-chan error { return s.errs }

func (s *memorySubscription) deliver(env Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.events <- env:
	default:
		// Subscriber not keeping up; best-effort drop.
	}
}

func (s *memorySubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.ch.remove(s.topic, s)
	close(s.events)

	return nil
}

func (s *memorySubscription) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	select {
	case s.errs <- err:
	default:
	}
	close(s.events)
}
