// Package transport delivers named broadcast events to subscribers of a
// location-scoped topic. Delivery is best effort: a subscriber that is not
// connected at publish time never sees that event.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vogiaan1904/repairhub-display/internal/models"
)

// Envelope is the wire format for every event on the channel.
type Envelope struct {
	Event   models.EventName `json:"event"`
	Payload json.RawMessage  `json:"payload,omitempty"`
	SentAt  time.Time        `json:"sent_at"`
}

// NewEnvelope marshals payload into an Envelope. A nil payload produces an
// envelope with no body (session_cancelled, session_completed).
func NewEnvelope(event models.EventName, payload any) (Envelope, error) {
	env := Envelope{
		Event:  event,
		SentAt: time.Now(),
	}
	if payload == nil {
		return env, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	env.Payload = raw

	return env, nil
}

// Decode unmarshals the envelope payload into dst.
func (e Envelope) Decode(dst any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Event, err)
	}
	return nil
}

// Subscription is a live feed of one topic's events.
type Subscription interface {
	// Events yields envelopes as delivered. The channel is closed when the
	// subscription ends for any reason.
	Events() <-chan Envelope
	// Err yields transport-reported failures. A receive here means the
	// subscription is no longer live.
	Err() <-chan error
	// Close tears the subscription down. Idempotent.
	Close() error
}

// Channel is the broadcast transport. It holds no business state.
type Channel interface {
	Publish(ctx context.Context, topic string, env Envelope) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}
