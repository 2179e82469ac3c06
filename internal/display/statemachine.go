// Package display owns the kiosk-side session state machine and screen
// rendering. It holds no business logic, only transition rules.
package display

import (
	"context"
	"sync"
	"time"

	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/internal/transport"
	"github.com/vogiaan1904/repairhub-display/pkg/clock"
	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// Prompt is the capture step the operator has requested from the customer.
type Prompt string

const (
	PromptNone      Prompt = ""
	PromptPassword  Prompt = "password"
	PromptSignature Prompt = "signature"
)

// Snapshot is an immutable view of the state machine handed to observers.
type Snapshot struct {
	Mode    models.DisplayMode
	Session models.IntakeSession
	Prompt  Prompt
}

type StateMachineConfig struct {
	CompletedDwell time.Duration
	Clock          clock.Clock
}

// StateMachine applies session lifecycle events and projects one of the
// three display modes. Events arriving in the wrong state are ignored so
// stale deliveries from a previous session cannot corrupt the screen.
type StateMachine struct {
	dwell time.Duration
	clk   clock.Clock
	l     logger.Logger

	mu         sync.Mutex
	mode       models.DisplayMode
	session    models.IntakeSession
	prompt     Prompt
	dwellTimer clock.Timer
	onChange   func(Snapshot)
	closed     bool
}

func NewStateMachine(cfg StateMachineConfig, l logger.Logger) *StateMachine {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &StateMachine{
		dwell: cfg.CompletedDwell,
		clk:   clk,
		l:     l,
		mode:  models.ModeStandby,
	}
}

// OnChange registers the observer notified after every applied transition.
// Must be called before events start flowing.
func (m *StateMachine) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

func (m *StateMachine) Mode() models.DisplayMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Session returns the current session content. The second return is false
// in standby, where no session is held.
func (m *StateMachine) Session() (models.IntakeSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.mode != models.ModeStandby
}

func (m *StateMachine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Mode: m.mode, Session: m.session, Prompt: m.prompt}
}

// Handle applies one event. Malformed payloads and out-of-state events are
// dropped; nothing here may take the display down.
func (m *StateMachine) Handle(ctx context.Context, env transport.Envelope) {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return
	}

	applied := false

	switch env.Event {
	case models.EventSessionStarted:
		// A second session_started while one is live fully replaces the
		// old session, no merge.
		if m.mode == models.ModeCompleted {
			break
		}
		var session models.IntakeSession
		if err := env.Decode(&session); err != nil {
			m.l.Warnf(ctx, "statemachine: %v", err)
			break
		}
		m.mode = models.ModeConfirmData
		m.session = session
		m.prompt = PromptNone
		applied = true

	case models.EventSessionUpdate:
		if m.mode != models.ModeConfirmData {
			break
		}
		var patch models.SessionPatch
		if err := env.Decode(&patch); err != nil {
			m.l.Warnf(ctx, "statemachine: %v", err)
			break
		}
		m.session.Apply(patch)
		applied = true

	case models.EventSessionCancelled:
		if m.mode != models.ModeConfirmData {
			break
		}
		m.toStandbyLocked()
		applied = true

	case models.EventSessionCompleted:
		if m.mode != models.ModeConfirmData {
			break
		}
		m.mode = models.ModeCompleted
		m.prompt = PromptNone
		m.startDwellLocked()
		applied = true

	case models.EventPasswordRequested:
		if m.mode != models.ModeConfirmData {
			break
		}
		m.prompt = PromptPassword
		applied = true

	case models.EventSignatureRequested:
		if m.mode != models.ModeConfirmData {
			break
		}
		m.prompt = PromptSignature
		applied = true

	default:
		m.l.Debugf(ctx, "statemachine: ignoring unknown event %s", env.Event)
	}

	if !applied {
		m.mu.Unlock()
		return
	}

	snap := Snapshot{Mode: m.mode, Session: m.session, Prompt: m.prompt}
	fn := m.onChange
	m.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// startDwellLocked arms the completed-mode dwell timer. Nothing cancels or
// extends it; expiry returns to standby unconditionally.
func (m *StateMachine) startDwellLocked() {
	m.dwellTimer = m.clk.AfterFunc(m.dwell, func() {
		m.mu.Lock()
		if m.closed || m.mode != models.ModeCompleted {
			m.mu.Unlock()
			return
		}
		m.toStandbyLocked()
		snap := Snapshot{Mode: m.mode}
		fn := m.onChange
		m.mu.Unlock()

		if fn != nil {
			fn(snap)
		}
	})
}

func (m *StateMachine) toStandbyLocked() {
	m.mode = models.ModeStandby
	m.session = models.IntakeSession{}
	m.prompt = PromptNone
}

// Close stops the dwell timer. Part of the display teardown path.
func (m *StateMachine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.dwellTimer != nil {
		m.dwellTimer.Stop()
		m.dwellTimer = nil
	}
}
