package transport

import (
	"context"
	"sync"
	"time"

	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/pkg/clock"
	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// Supervisor keeps exactly one live subscription on a topic alive,
// rebuilding it after transport failures. The retry loop is unbounded: the
// display is an unattended kiosk with nobody around to press reconnect.
type Supervisor struct {
	ch    Channel
	topic string
	delay time.Duration
	clk   clock.Clock
	l     logger.Logger

	events chan Envelope

	mu         sync.Mutex
	state      models.ConnectionState
	onState    func(models.ConnectionState)
	sub        Subscription
	retryTimer clock.Timer
	closed     bool
	done       chan struct{}
}

type SupervisorConfig struct {
	Topic          string
	ReconnectDelay time.Duration
	Clock          clock.Clock
}

func NewSupervisor(ch Channel, cfg SupervisorConfig, l logger.Logger) *Supervisor {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &Supervisor{
		ch:     ch,
		topic:  cfg.Topic,
		delay:  cfg.ReconnectDelay,
		clk:    clk,
		l:      l,
		events: make(chan Envelope, 64),
		state:  models.ConnectionConnecting,
		done:   make(chan struct{}),
	}
}

// Events is the merged feed across reconnects. Never closed; consumers
// stop via their own lifecycle.
func (s *Supervisor) Events() <-chan Envelope { return s.events }

func (s *Supervisor) State() models.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnStateChange registers a single observer for connection state changes.
// Must be called before Start.
func (s *Supervisor) OnStateChange(fn func(models.ConnectionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = fn
}

// Start begins the subscribe/retry loop. Returns immediately.
func (s *Supervisor) Start(ctx context.Context) {
	go s.connect(ctx)
}

// Close tears the supervisor down: the active subscription is closed and
// the pending retry timer stopped. A closed supervisor never reconnects.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	sub := s.sub
	s.sub = nil
	close(s.done)
	s.mu.Unlock()

	if sub != nil {
		return sub.Close()
	}
	return nil
}

func (s *Supervisor) connect(ctx context.Context) {
	if !s.setState(models.ConnectionConnecting) {
		return
	}

	sub, err := s.ch.Subscribe(ctx, s.topic)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if sub != nil {
			_ = sub.Close()
		}
		return
	}
	if err == nil {
		s.sub = sub
	}
	s.mu.Unlock()

	if err != nil {
		s.l.Warnf(ctx, "Subscribe to %s failed: %v", s.topic, err)
		s.setState(models.ConnectionDisconnected)
		s.scheduleRetry(ctx)
		return
	}

	s.setState(models.ConnectionConnected)
	go s.pump(ctx, sub)
}

func (s *Supervisor) pump(ctx context.Context, sub Subscription) {
	for {
		select {
		case env, ok := <-sub.Events():
			if !ok {
				s.handleDrop(ctx, sub, nil)
				return
			}
			select {
			case s.events <- env:
			case <-s.done:
				return
			}

		case err := <-sub.Err():
			s.handleDrop(ctx, sub, err)
			return

		case <-s.done:
			return
		}
	}
}

// handleDrop tears down the failed subscription before any new one is
// created, so duplicate delivery across reconnects cannot happen.
func (s *Supervisor) handleDrop(ctx context.Context, sub Subscription, err error) {
	_ = sub.Close()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.sub == sub {
		s.sub = nil
	}
	s.mu.Unlock()

	if err != nil {
		s.l.Warnf(ctx, "Subscription to %s dropped: %v", s.topic, err)
	} else {
		s.l.Warnf(ctx, "Subscription to %s closed by transport", s.topic)
	}

	s.setState(models.ConnectionDisconnected)
	s.scheduleRetry(ctx)
}

func (s *Supervisor) scheduleRetry(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.retryTimer != nil {
		return
	}

	s.retryTimer = s.clk.AfterFunc(s.delay, func() {
		s.mu.Lock()
		s.retryTimer = nil
		closed := s.closed
		s.mu.Unlock()

		if closed {
			return
		}
		s.connect(ctx)
	})
}

// setState reports false when the supervisor is already closed.
func (s *Supervisor) setState(state models.ConnectionState) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	changed := s.state != state
	s.state = state
	fn := s.onState
	s.mu.Unlock()

	if changed && fn != nil {
		fn(state)
	}
	return true
}
