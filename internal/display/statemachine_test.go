package display

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/internal/transport"
	"github.com/vogiaan1904/repairhub-display/pkg/clock"
	pkgLog "github.com/vogiaan1904/repairhub-display/pkg/logger"
)

func newTestStateMachine(t *testing.T, mock *clock.Mock) *StateMachine {
	t.Helper()

	sm := NewStateMachine(StateMachineConfig{
		CompletedDwell: 8 * time.Second,
		Clock:          mock,
	}, pkgLog.InitializeTestZapLogger())
	t.Cleanup(sm.Close)

	return sm
}

func mustEnvelope(t *testing.T, event models.EventName, payload any) transport.Envelope {
	t.Helper()

	env, err := transport.NewEnvelope(event, payload)
	require.NoError(t, err)
	return env
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestStateMachine_StartsInStandby(t *testing.T) {
	sm := newTestStateMachine(t, clock.NewMock())

	assert.Equal(t, models.ModeStandby, sm.Mode())
	_, ok := sm.Session()
	assert.False(t, ok)
}

func TestStateMachine_SessionStarted(t *testing.T) {
	ctx := context.Background()
	sm := newTestStateMachine(t, clock.NewMock())

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{
		SessionID: "s-1",
		Customer:  models.Customer{Name: "Dana Willis"},
	}))

	require.Equal(t, models.ModeConfirmData, sm.Mode())
	session, ok := sm.Session()
	require.True(t, ok)
	assert.Equal(t, "s-1", session.SessionID)
	assert.Equal(t, "Dana Willis", session.Customer.Name)
}

func TestStateMachine_UpdateMergesPartialPatches(t *testing.T) {
	ctx := context.Background()
	sm := newTestStateMachine(t, clock.NewMock())

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{
		SessionID: "s-1",
		Customer:  models.Customer{Name: "Dana Willis", Phone: "555-0132"},
	}))

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionUpdate, models.SessionPatch{
		Device: &models.DevicePatch{Brand: strPtr("Apple"), Model: strPtr("iPhone 14 Pro")},
	}))
	sm.Handle(ctx, mustEnvelope(t, models.EventSessionUpdate, models.SessionPatch{
		Device: &models.DevicePatch{IssueDescription: strPtr("Cracked screen")},
		Quote:  &models.QuotePatch{EstimatedTotal: f64Ptr(289)},
	}))

	session, _ := sm.Session()
	assert.Equal(t, "Dana Willis", session.Customer.Name, "untouched fields survive patches")
	assert.Equal(t, "Apple", session.Device.Brand)
	assert.Equal(t, "iPhone 14 Pro", session.Device.Model)
	assert.Equal(t, "Cracked screen", session.Device.IssueDescription)
	assert.Equal(t, 289.0, session.Quote.EstimatedTotal)
}

func TestStateMachine_UpdateReplacesLineItemsWholesale(t *testing.T) {
	ctx := context.Background()
	sm := newTestStateMachine(t, clock.NewMock())

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{
		SessionID: "s-1",
		Quote: models.Quote{LineItems: []models.QuoteLineItem{
			{Name: "Screen assembly", Kind: models.LineItemKindPart},
			{Name: "Repair labor", Kind: models.LineItemKindLabor},
		}},
	}))

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionUpdate, models.SessionPatch{
		Quote: &models.QuotePatch{LineItems: &[]models.QuoteLineItem{
			{Name: "Battery", Kind: models.LineItemKindPart},
		}},
	}))

	session, _ := sm.Session()
	require.Len(t, session.Quote.LineItems, 1)
	assert.Equal(t, "Battery", session.Quote.LineItems[0].Name)
}

func TestStateMachine_SecondStartReplacesSession(t *testing.T) {
	ctx := context.Background()
	sm := newTestStateMachine(t, clock.NewMock())

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{
		SessionID: "s-1",
		Customer:  models.Customer{Name: "Dana Willis", Phone: "555-0132"},
	}))
	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{
		SessionID: "s-2",
		Customer:  models.Customer{Name: "Riley Chen"},
	}))

	session, _ := sm.Session()
	assert.Equal(t, "s-2", session.SessionID)
	assert.Equal(t, "Riley Chen", session.Customer.Name)
	assert.Empty(t, session.Customer.Phone, "replacement is not a merge")
}

func TestStateMachine_UpdateIgnoredInStandby(t *testing.T) {
	ctx := context.Background()
	sm := newTestStateMachine(t, clock.NewMock())

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionUpdate, models.SessionPatch{
		Customer: &models.CustomerPatch{Name: strPtr("Ghost")},
	}))

	assert.Equal(t, models.ModeStandby, sm.Mode())
	_, ok := sm.Session()
	assert.False(t, ok)
}

func TestStateMachine_CancelReturnsToStandby(t *testing.T) {
	ctx := context.Background()
	sm := newTestStateMachine(t, clock.NewMock())

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{SessionID: "s-1"}))
	sm.Handle(ctx, mustEnvelope(t, models.EventSessionCancelled, nil))

	assert.Equal(t, models.ModeStandby, sm.Mode())
	session, ok := sm.Session()
	assert.False(t, ok)
	assert.Empty(t, session.SessionID, "session content is discarded")
}

func TestStateMachine_PromptLifecycle(t *testing.T) {
	ctx := context.Background()
	sm := newTestStateMachine(t, clock.NewMock())

	sm.Handle(ctx, mustEnvelope(t, models.EventPasswordRequested, nil))
	assert.Equal(t, PromptNone, sm.Snapshot().Prompt, "prompt ignored in standby")

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{SessionID: "s-1"}))
	sm.Handle(ctx, mustEnvelope(t, models.EventPasswordRequested, nil))
	assert.Equal(t, PromptPassword, sm.Snapshot().Prompt)

	sm.Handle(ctx, mustEnvelope(t, models.EventSignatureRequested, nil))
	assert.Equal(t, PromptSignature, sm.Snapshot().Prompt)

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionCompleted, nil))
	assert.Equal(t, PromptNone, sm.Snapshot().Prompt)
}

func TestStateMachine_CompletedDwellReturnsToStandby(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	sm := newTestStateMachine(t, mock)

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{SessionID: "s-1"}))
	sm.Handle(ctx, mustEnvelope(t, models.EventSessionCompleted, nil))
	require.Equal(t, models.ModeCompleted, sm.Mode())

	mock.Advance(7 * time.Second)
	assert.Equal(t, models.ModeCompleted, sm.Mode(), "dwell has not elapsed yet")

	mock.Advance(1 * time.Second)
	assert.Equal(t, models.ModeStandby, sm.Mode())
}

func TestStateMachine_DwellIgnoresInterveningEvents(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	sm := newTestStateMachine(t, mock)

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{SessionID: "s-1"}))
	sm.Handle(ctx, mustEnvelope(t, models.EventSessionCompleted, nil))

	mock.Advance(4 * time.Second)
	// A new intake starting mid-dwell must not cut the success screen short.
	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{SessionID: "s-2"}))
	sm.Handle(ctx, mustEnvelope(t, models.EventSessionUpdate, models.SessionPatch{}))
	assert.Equal(t, models.ModeCompleted, sm.Mode())

	mock.Advance(4 * time.Second)
	assert.Equal(t, models.ModeStandby, sm.Mode())
}

func TestStateMachine_MalformedPayloadDropped(t *testing.T) {
	ctx := context.Background()
	sm := newTestStateMachine(t, clock.NewMock())

	sm.Handle(ctx, transport.Envelope{
		Event:   models.EventSessionStarted,
		Payload: json.RawMessage(`{"session_id": 42`),
	})

	assert.Equal(t, models.ModeStandby, sm.Mode())
}

func TestStateMachine_ObserverSeesEachTransition(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	sm := newTestStateMachine(t, mock)

	var modes []models.DisplayMode
	sm.OnChange(func(snap Snapshot) {
		modes = append(modes, snap.Mode)
	})

	sm.Handle(ctx, mustEnvelope(t, models.EventSessionStarted, models.IntakeSession{SessionID: "s-1"}))
	sm.Handle(ctx, mustEnvelope(t, models.EventSessionCompleted, nil))
	mock.Advance(8 * time.Second)

	assert.Equal(t, []models.DisplayMode{
		models.ModeConfirmData,
		models.ModeCompleted,
		models.ModeStandby,
	}, modes)
}
