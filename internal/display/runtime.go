package display

import (
	"context"
	"sync"
	"time"

	"github.com/vogiaan1904/repairhub-display/internal/ads"
	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/internal/transport"
	"github.com/vogiaan1904/repairhub-display/pkg/clock"
	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// View is everything the renderer needs to paint one frame of the kiosk.
type View struct {
	Connection models.ConnectionState
	Mode       models.DisplayMode
	Session    models.IntakeSession
	Prompt     Prompt
	Ad         models.PlaylistItem
	Branding   models.Branding
}

type Renderer interface {
	Render(view View)
}

type RuntimeConfig struct {
	LocationID           string
	ReconnectDelay       time.Duration
	CompletedDwell       time.Duration
	DefaultSlideDuration time.Duration
	Clock                clock.Clock
}

// Runtime composes the kiosk: connection supervision, the session state
// machine, the advertisement rotation and the customer-response path. The
// operator owns session content; the runtime only projects it and sends
// the customer's responses back.
type Runtime struct {
	ch         transport.Channel
	locationID string
	clk        clock.Clock
	l          logger.Logger

	sup   *transport.Supervisor
	sm    *StateMachine
	sched *ads.Scheduler

	renderer Renderer

	mu       sync.Mutex
	conn     models.ConnectionState
	ad       models.PlaylistItem
	branding models.Branding

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewRuntime(ch transport.Channel, cfg RuntimeConfig, renderer Renderer, l logger.Logger) *Runtime {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}

	r := &Runtime{
		ch:         ch,
		locationID: cfg.LocationID,
		clk:        clk,
		l:          l,
		renderer:   renderer,
		conn:       models.ConnectionConnecting,
		done:       make(chan struct{}),
	}

	r.sup = transport.NewSupervisor(ch, transport.SupervisorConfig{
		Topic:          models.SessionTopic(cfg.LocationID),
		ReconnectDelay: cfg.ReconnectDelay,
		Clock:          clk,
	}, l)

	r.sm = NewStateMachine(StateMachineConfig{
		CompletedDwell: cfg.CompletedDwell,
		Clock:          clk,
	}, l)

	r.sched = ads.NewScheduler(ads.SchedulerConfig{
		DefaultSlideDuration: cfg.DefaultSlideDuration,
		Clock:                clk,
	}, r.onAdShown)

	return r
}

// Start wires the pieces together and begins rotation in standby with the
// built-in playlist; polled content replaces it as soon as it arrives.
func (r *Runtime) Start(ctx context.Context) {
	r.sm.OnChange(r.onSessionChange)
	r.sup.OnStateChange(r.onConnectionChange)

	r.sched.SetPlaylist(ads.BuildPlaylist(models.ContentBundle{}, r.clk.Now()))
	r.sched.Start()

	r.sup.Start(ctx)

	r.wg.Add(1)
	go r.consumeEvents(ctx)
}

// Close is the single teardown path: supervisor retry loop, dwell timer
// and rotation timer all stop here.
func (r *Runtime) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		_ = r.sup.Close()
		r.sm.Close()
		r.sched.Close()
	})
	r.wg.Wait()
}

// SetContent applies a freshly polled content bundle. Campaign/config
// refreshes only ever touch the rotation, never session state.
func (r *Runtime) SetContent(bundle models.ContentBundle) {
	r.mu.Lock()
	r.branding = bundle.Branding
	r.mu.Unlock()

	r.sched.SetPlaylist(ads.BuildPlaylist(bundle, r.clk.Now()))
}

func (r *Runtime) ConnectionState() models.ConnectionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn
}

func (r *Runtime) Mode() models.DisplayMode { return r.sm.Mode() }

func (r *Runtime) Session() (models.IntakeSession, bool) { return r.sm.Session() }

// ConfirmData sends the customer's confirmation back to the operator.
func (r *Runtime) ConfirmData(ctx context.Context) error {
	session, ok := r.sm.Session()
	if !ok {
		return nil
	}
	return r.respond(ctx, session.SessionID, models.EventCustomerConfirmed, models.ConfirmDataPayload{
		SessionID: session.SessionID,
		Confirmed: true,
	})
}

func (r *Runtime) SubmitPassword(ctx context.Context, value string) error {
	session, ok := r.sm.Session()
	if !ok {
		return nil
	}
	return r.respond(ctx, session.SessionID, models.EventPasswordSubmitted, models.PasswordPayload{
		SessionID: session.SessionID,
		Value:     value,
	})
}

func (r *Runtime) SkipPassword(ctx context.Context) error {
	session, ok := r.sm.Session()
	if !ok {
		return nil
	}
	return r.respond(ctx, session.SessionID, models.EventPasswordSkipped, models.PasswordPayload{
		SessionID: session.SessionID,
	})
}

func (r *Runtime) SubmitSignature(ctx context.Context, signatureData string) error {
	session, ok := r.sm.Session()
	if !ok {
		return nil
	}
	return r.respond(ctx, session.SessionID, models.EventSignatureSubmitted, models.SignaturePayload{
		SessionID:     session.SessionID,
		SignatureData: signatureData,
	})
}

func (r *Runtime) respond(ctx context.Context, sessionID string, event models.EventName, payload any) error {
	env, err := transport.NewEnvelope(event, payload)
	if err != nil {
		return err
	}

	topic := models.ResponseTopic(r.locationID, sessionID)
	if err := r.ch.Publish(ctx, topic, env); err != nil {
		// Best-effort: the customer can tap again; the operator side
		// deduplicates.
		r.l.Warnf(ctx, "Failed to publish %s: %v", event, err)
		return err
	}

	return nil
}

func (r *Runtime) consumeEvents(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case env := <-r.sup.Events():
			r.sm.Handle(ctx, env)
		case <-r.done:
			return
		}
	}
}

// onSessionChange gates the ad rotation on the display mode: rotation
// runs in standby only and resumes from the same index afterwards.
func (r *Runtime) onSessionChange(snap Snapshot) {
	if snap.Mode == models.ModeStandby {
		r.sched.Start()
	} else {
		r.sched.Stop()
	}

	r.render()
}

func (r *Runtime) onConnectionChange(state models.ConnectionState) {
	r.mu.Lock()
	r.conn = state
	r.mu.Unlock()

	r.render()
}

func (r *Runtime) onAdShown(item models.PlaylistItem) {
	r.mu.Lock()
	r.ad = item
	r.mu.Unlock()

	r.render()
}

func (r *Runtime) render() {
	if r.renderer == nil {
		return
	}

	snap := r.sm.Snapshot()

	r.mu.Lock()
	view := View{
		Connection: r.conn,
		Mode:       snap.Mode,
		Session:    snap.Session,
		Prompt:     snap.Prompt,
		Ad:         r.ad,
		Branding:   r.branding,
	}
	r.mu.Unlock()

	r.renderer.Render(view)
}
