// Package operator implements the intake wizard's side of the display
// channel: the single writer of session content.
package operator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	kafkaDelivery "github.com/vogiaan1904/repairhub-display/internal/delivery/kafka"
	pkgErrors "github.com/vogiaan1904/repairhub-display/internal/errors"
	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/internal/transport"
	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// ResponseCallbacks receives the customer's answers from the kiosk. Each
// callback fires at most once per request, even when the kiosk double
// publishes.
type ResponseCallbacks struct {
	OnDataConfirmed      func()
	OnPasswordSubmitted  func(value string)
	OnPasswordSkipped    func()
	OnSignatureSubmitted func(signatureData string)
}

// Controller drives one intake session. It publishes lifecycle events on
// the location's broadcast topic and listens for customer responses on the
// session-scoped response topic. It never reads display state back.
type Controller struct {
	ch         transport.Channel
	audit      kafkaDelivery.Producer
	locationID string
	l          logger.Logger

	sessionID string

	mu                 sync.Mutex
	session            models.IntakeSession
	started            bool
	ended              bool
	passwordRequested  bool
	signatureRequested bool

	respSub transport.Subscription

	dataConfirmed bool
	passwordDone  bool
	signatureDone bool
}

// NewController builds a controller for one intake. audit may be nil when
// the shop runs without Kafka; the intake trail is then simply not emitted.
func NewController(ch transport.Channel, audit kafkaDelivery.Producer, locationID string, l logger.Logger) *Controller {
	return &Controller{
		ch:         ch,
		audit:      audit,
		locationID: locationID,
		l:          l,
		sessionID:  uuid.New().String(),
	}
}

func (c *Controller) SessionID() string { return c.sessionID }

// StartSession publishes session_started with the full initial payload.
// One-shot: a second call is a caller error, since a duplicate
// session_started would reset the display mid-flow.
func (c *Controller) StartSession(ctx context.Context, initial models.IntakeSession) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return pkgErrors.ErrSessionAlreadyStarted
	}
	c.started = true
	initial.SessionID = c.sessionID
	c.session = initial
	c.mu.Unlock()

	env, err := transport.NewEnvelope(models.EventSessionStarted, initial)
	if err != nil {
		return err
	}

	if err := c.ch.Publish(ctx, c.sessionTopic(), env); err != nil {
		return err
	}

	c.l.Infof(ctx, "Intake session started - session_id: %s, location_id: %s",
		c.sessionID, c.locationID)

	return nil
}

// UpdateSession publishes a partial update. Safe to call on every
// keystroke; the display merges patches idempotently.
func (c *Controller) UpdateSession(ctx context.Context, patch models.SessionPatch) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return pkgErrors.ErrSessionNotStarted
	}
	if c.ended {
		c.mu.Unlock()
		return pkgErrors.ErrSessionEnded
	}
	c.session.Apply(patch)
	c.mu.Unlock()

	env, err := transport.NewEnvelope(models.EventSessionUpdate, patch)
	if err != nil {
		return err
	}

	return c.ch.Publish(ctx, c.sessionTopic(), env)
}

// RequestPassword asks the kiosk to show the device-password capture
// screen. Fires once per session; revisiting the wizard step must not
// re-prompt the customer.
func (c *Controller) RequestPassword(ctx context.Context) error {
	c.mu.Lock()
	if !c.started || c.ended || c.passwordRequested {
		c.mu.Unlock()
		return nil
	}
	c.passwordRequested = true
	c.mu.Unlock()

	env, err := transport.NewEnvelope(models.EventPasswordRequested, nil)
	if err != nil {
		return err
	}

	return c.ch.Publish(ctx, c.sessionTopic(), env)
}

// RequestSignature asks the kiosk to show the signature capture screen.
// Fires once per session.
func (c *Controller) RequestSignature(ctx context.Context) error {
	c.mu.Lock()
	if !c.started || c.ended || c.signatureRequested {
		c.mu.Unlock()
		return nil
	}
	c.signatureRequested = true
	c.mu.Unlock()

	env, err := transport.NewEnvelope(models.EventSignatureRequested, nil)
	if err != nil {
		return err
	}

	return c.ch.Publish(ctx, c.sessionTopic(), env)
}

// CancelIntake publishes session_cancelled and releases the listener.
// Idempotent, and a no-op after completion; call it unconditionally on
// wizard teardown so the display is never left stuck in confirm_data.
func (c *Controller) CancelIntake(ctx context.Context) error {
	c.mu.Lock()
	if !c.started || c.ended {
		c.mu.Unlock()
		c.closeListener()
		return nil
	}
	c.ended = true
	c.mu.Unlock()

	defer c.closeListener()

	env, err := transport.NewEnvelope(models.EventSessionCancelled, nil)
	if err != nil {
		return err
	}

	if err := c.ch.Publish(ctx, c.sessionTopic(), env); err != nil {
		return err
	}

	c.l.Infof(ctx, "Intake session cancelled - session_id: %s", c.sessionID)

	if c.audit != nil {
		err := c.audit.PublishIntakeCancelled(ctx, kafkaDelivery.IntakeCancelledEvent{
			SessionID:   c.sessionID,
			LocationID:  c.locationID,
			Reason:      "operator_cancelled",
			CancelledAt: time.Now(),
		})
		if err != nil {
			c.l.Warnf(ctx, "Failed to publish intake cancelled event: %v", err)
		}
	}

	return nil
}

// CompleteIntake publishes session_completed. The display shows its
// success screen and returns to standby on its own dwell timer.
func (c *Controller) CompleteIntake(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return pkgErrors.ErrSessionNotStarted
	}
	if c.ended {
		c.mu.Unlock()
		return pkgErrors.ErrSessionEnded
	}
	c.ended = true
	snapshot := c.session
	c.mu.Unlock()

	defer c.closeListener()

	env, err := transport.NewEnvelope(models.EventSessionCompleted, nil)
	if err != nil {
		return err
	}

	if err := c.ch.Publish(ctx, c.sessionTopic(), env); err != nil {
		return err
	}

	c.l.Infof(ctx, "Intake session completed - session_id: %s", c.sessionID)

	if c.audit != nil {
		err := c.audit.PublishIntakeCompleted(ctx, kafkaDelivery.IntakeCompletedEvent{
			SessionID:      c.sessionID,
			LocationID:     c.locationID,
			CustomerName:   snapshot.Customer.Name,
			DeviceBrand:    snapshot.Device.Brand,
			DeviceModel:    snapshot.Device.Model,
			EstimatedTotal: snapshot.Quote.EstimatedTotal,
			CompletedAt:    time.Now(),
		})
		if err != nil {
			c.l.Warnf(ctx, "Failed to publish intake completed event: %v", err)
		}
	}

	return nil
}

// ListenForResponses subscribes to the session-scoped response topic and
// dispatches customer responses to the callbacks. Responses carrying a
// foreign session id are dropped.
func (c *Controller) ListenForResponses(ctx context.Context, cb ResponseCallbacks) error {
	sub, err := c.ch.Subscribe(ctx, c.responseTopic())
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.respSub != nil {
		c.mu.Unlock()
		_ = sub.Close()
		return nil
	}
	c.respSub = sub
	c.mu.Unlock()

	go c.dispatchResponses(ctx, sub, cb)

	return nil
}

func (c *Controller) dispatchResponses(ctx context.Context, sub transport.Subscription, cb ResponseCallbacks) {
	for {
		select {
		case env, ok := <-sub.Events():
			if !ok {
				return
			}
			c.handleResponse(ctx, env, cb)

		case err := <-sub.Err():
			c.l.Warnf(ctx, "Response subscription dropped - session_id: %s, error: %v",
				c.sessionID, err)
			return

		case <-ctx.Done():
			return
		}
	}
}

func (c *Controller) handleResponse(ctx context.Context, env transport.Envelope, cb ResponseCallbacks) {
	switch env.Event {
	case models.EventCustomerConfirmed:
		var payload models.ConfirmDataPayload
		if err := env.Decode(&payload); err != nil || payload.SessionID != c.sessionID {
			return
		}
		c.mu.Lock()
		fire := !c.dataConfirmed
		c.dataConfirmed = true
		c.mu.Unlock()
		if fire && cb.OnDataConfirmed != nil {
			cb.OnDataConfirmed()
		}

	case models.EventPasswordSubmitted:
		var payload models.PasswordPayload
		if err := env.Decode(&payload); err != nil || payload.SessionID != c.sessionID {
			return
		}
		c.mu.Lock()
		fire := !c.passwordDone
		c.passwordDone = true
		c.mu.Unlock()
		// A duplicate submission must not overwrite the captured value.
		if fire && cb.OnPasswordSubmitted != nil {
			cb.OnPasswordSubmitted(payload.Value)
		}

	case models.EventPasswordSkipped:
		var payload models.PasswordPayload
		if err := env.Decode(&payload); err != nil || payload.SessionID != c.sessionID {
			return
		}
		c.mu.Lock()
		fire := !c.passwordDone
		c.passwordDone = true
		c.mu.Unlock()
		if fire && cb.OnPasswordSkipped != nil {
			cb.OnPasswordSkipped()
		}

	case models.EventSignatureSubmitted:
		var payload models.SignaturePayload
		if err := env.Decode(&payload); err != nil || payload.SessionID != c.sessionID {
			return
		}
		c.mu.Lock()
		fire := !c.signatureDone
		c.signatureDone = true
		c.mu.Unlock()
		if fire && cb.OnSignatureSubmitted != nil {
			cb.OnSignatureSubmitted(payload.SignatureData)
		}

	default:
		c.l.Debugf(ctx, "Ignoring unexpected response event %s", env.Event)
	}
}

func (c *Controller) closeListener() {
	c.mu.Lock()
	sub := c.respSub
	c.respSub = nil
	c.mu.Unlock()

	if sub != nil {
		_ = sub.Close()
	}
}

func (c *Controller) sessionTopic() string {
	return models.SessionTopic(c.locationID)
}

func (c *Controller) responseTopic() string {
	return models.ResponseTopic(c.locationID, c.sessionID)
}
