package operator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgErrors "github.com/vogiaan1904/repairhub-display/internal/errors"
	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/internal/transport"
	pkgLog "github.com/vogiaan1904/repairhub-display/pkg/logger"
)

func newTestController(t *testing.T) (*Controller, transport.Subscription) {
	t.Helper()

	ch := transport.NewMemoryChannel()
	ctrl := NewController(ch, nil, "loc-1", pkgLog.InitializeTestZapLogger())

	sub, err := ch.Subscribe(context.Background(), models.SessionTopic("loc-1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	return ctrl, sub
}

func collectEvents(sub transport.Subscription) []models.EventName {
	var events []models.EventName
	for {
		select {
		case env := <-sub.Events():
			events = append(events, env.Event)
		case <-time.After(50 * time.Millisecond):
			return events
		}
	}
}

func TestController_StartSessionIsOneShot(t *testing.T) {
	ctx := context.Background()
	ctrl, sub := newTestController(t)

	require.NoError(t, ctrl.StartSession(ctx, models.IntakeSession{
		Customer: models.Customer{Name: "Dana Willis"},
	}))

	err := ctrl.StartSession(ctx, models.IntakeSession{})
	require.ErrorIs(t, err, pkgErrors.ErrSessionAlreadyStarted)

	assert.Equal(t, []models.EventName{models.EventSessionStarted}, collectEvents(sub))
}

func TestController_StartStampsSessionID(t *testing.T) {
	ctx := context.Background()
	ctrl, sub := newTestController(t)

	require.NoError(t, ctrl.StartSession(ctx, models.IntakeSession{SessionID: "forged"}))

	env := <-sub.Events()
	var session models.IntakeSession
	require.NoError(t, env.Decode(&session))
	assert.Equal(t, ctrl.SessionID(), session.SessionID)
}

func TestController_UpdateRequiresLiveSession(t *testing.T) {
	ctx := context.Background()
	ctrl, _ := newTestController(t)

	err := ctrl.UpdateSession(ctx, models.SessionPatch{})
	require.ErrorIs(t, err, pkgErrors.ErrSessionNotStarted)

	require.NoError(t, ctrl.StartSession(ctx, models.IntakeSession{}))
	require.NoError(t, ctrl.UpdateSession(ctx, models.SessionPatch{}))

	require.NoError(t, ctrl.CompleteIntake(ctx))
	err = ctrl.UpdateSession(ctx, models.SessionPatch{})
	require.ErrorIs(t, err, pkgErrors.ErrSessionEnded)
}

func TestController_CancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ctrl, sub := newTestController(t)

	require.NoError(t, ctrl.StartSession(ctx, models.IntakeSession{}))
	require.NoError(t, ctrl.CancelIntake(ctx))
	require.NoError(t, ctrl.CancelIntake(ctx))
	require.NoError(t, ctrl.CancelIntake(ctx))

	assert.Equal(t, []models.EventName{
		models.EventSessionStarted,
		models.EventSessionCancelled,
	}, collectEvents(sub), "repeat cancels publish nothing")
}

func TestController_CancelAfterCompleteIsNoOp(t *testing.T) {
	ctx := context.Background()
	ctrl, sub := newTestController(t)

	require.NoError(t, ctrl.StartSession(ctx, models.IntakeSession{}))
	require.NoError(t, ctrl.CompleteIntake(ctx))
	require.NoError(t, ctrl.CancelIntake(ctx))

	assert.Equal(t, []models.EventName{
		models.EventSessionStarted,
		models.EventSessionCompleted,
	}, collectEvents(sub))
}

func TestController_PromptRequestsFireOncePerSession(t *testing.T) {
	ctx := context.Background()
	ctrl, sub := newTestController(t)

	require.NoError(t, ctrl.StartSession(ctx, models.IntakeSession{}))

	// Revisiting a wizard step must not re-prompt the customer.
	require.NoError(t, ctrl.RequestPassword(ctx))
	require.NoError(t, ctrl.RequestPassword(ctx))
	require.NoError(t, ctrl.RequestSignature(ctx))
	require.NoError(t, ctrl.RequestSignature(ctx))

	assert.Equal(t, []models.EventName{
		models.EventSessionStarted,
		models.EventPasswordRequested,
		models.EventSignatureRequested,
	}, collectEvents(sub))
}

func TestController_ResponsesDispatchAtMostOnce(t *testing.T) {
	ctx := context.Background()
	ch := transport.NewMemoryChannel()
	ctrl := NewController(ch, nil, "loc-1", pkgLog.InitializeTestZapLogger())

	var confirmed, passwords, signatures int
	var capturedPassword string
	done := make(chan struct{}, 8)

	require.NoError(t, ctrl.ListenForResponses(ctx, ResponseCallbacks{
		OnDataConfirmed: func() {
			confirmed++
			done <- struct{}{}
		},
		OnPasswordSubmitted: func(value string) {
			passwords++
			capturedPassword = value
			done <- struct{}{}
		},
		OnSignatureSubmitted: func(string) {
			signatures++
			done <- struct{}{}
		},
	}))

	topic := models.ResponseTopic("loc-1", ctrl.SessionID())
	publish := func(event models.EventName, payload any) {
		env, err := transport.NewEnvelope(event, payload)
		require.NoError(t, err)
		require.NoError(t, ch.Publish(ctx, topic, env))
	}

	publish(models.EventCustomerConfirmed, models.ConfirmDataPayload{SessionID: ctrl.SessionID(), Confirmed: true})
	publish(models.EventCustomerConfirmed, models.ConfirmDataPayload{SessionID: ctrl.SessionID(), Confirmed: true})
	publish(models.EventPasswordSubmitted, models.PasswordPayload{SessionID: ctrl.SessionID(), Value: "1234"})
	publish(models.EventPasswordSubmitted, models.PasswordPayload{SessionID: ctrl.SessionID(), Value: "9999"})
	publish(models.EventSignatureSubmitted, models.SignaturePayload{SessionID: ctrl.SessionID(), SignatureData: "sig"})

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("callback never fired")
		}
	}
	time.Sleep(50 * time.Millisecond) // let any duplicate dispatch land

	assert.Equal(t, 1, confirmed)
	assert.Equal(t, 1, passwords)
	assert.Equal(t, 1, signatures)
	assert.Equal(t, "1234", capturedPassword, "the duplicate must not overwrite the captured value")
}

func TestController_ForeignSessionResponsesDropped(t *testing.T) {
	ctx := context.Background()
	ch := transport.NewMemoryChannel()
	ctrl := NewController(ch, nil, "loc-1", pkgLog.InitializeTestZapLogger())

	fired := make(chan struct{}, 1)
	require.NoError(t, ctrl.ListenForResponses(ctx, ResponseCallbacks{
		OnDataConfirmed: func() { fired <- struct{}{} },
	}))

	env, err := transport.NewEnvelope(models.EventCustomerConfirmed, models.ConfirmDataPayload{
		SessionID: "someone-else",
		Confirmed: true,
	})
	require.NoError(t, err)
	require.NoError(t, ch.Publish(ctx, models.ResponseTopic("loc-1", ctrl.SessionID()), env))

	select {
	case <-fired:
		t.Fatal("response for a foreign session must be dropped")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestController_CompleteReleasesResponseListener(t *testing.T) {
	ctx := context.Background()
	ch := transport.NewMemoryChannel()
	ctrl := NewController(ch, nil, "loc-1", pkgLog.InitializeTestZapLogger())

	require.NoError(t, ctrl.ListenForResponses(ctx, ResponseCallbacks{}))
	require.NoError(t, ctrl.StartSession(ctx, models.IntakeSession{}))

	topic := models.ResponseTopic("loc-1", ctrl.SessionID())
	require.Equal(t, 1, ch.SubscriberCount(topic))

	require.NoError(t, ctrl.CompleteIntake(ctx))
	assert.Equal(t, 0, ch.SubscriberCount(topic))
}
