package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/pkg/clock"
	"github.com/vogiaan1904/repairhub-display/pkg/logger"
)

// ContentFetcher is the read contract the poller refreshes against,
// typically the content HTTP API.
type ContentFetcher interface {
	FetchContent(ctx context.Context, locationID string) (*models.ContentBundle, error)
}

// ContentPoller refetches the campaign/config set on a fixed interval
// regardless of realtime transport health. Deliberate redundancy: an
// unauthenticated kiosk may never receive change notifications for
// administrative tables, so it trades staleness for guaranteed eventual
// consistency. Session-level events are untouched by this path.
type ContentPoller struct {
	fetcher    ContentFetcher
	locationID string
	interval   time.Duration
	clk        clock.Clock
	l          logger.Logger
	onContent  func(models.ContentBundle)

	mu        sync.Mutex
	lastGood  *models.ContentBundle
	isRunning bool
	stopCh    chan struct{}
	ticker    clock.Ticker
	wg        sync.WaitGroup
}

type PollerConfig struct {
	LocationID string
	Interval   time.Duration
	Clock      clock.Clock
}

// NewContentPoller builds a stopped poller. onContent fires on every
// successful refresh with the new bundle.
func NewContentPoller(
	fetcher ContentFetcher,
	cfg PollerConfig,
	l logger.Logger,
	onContent func(models.ContentBundle),
) *ContentPoller {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &ContentPoller{
		fetcher:    fetcher,
		locationID: cfg.LocationID,
		interval:   cfg.Interval,
		clk:        clk,
		l:          l,
		onContent:  onContent,
		stopCh:     make(chan struct{}),
	}
}

// Start fetches once immediately, then refreshes on the configured
// interval until Stop.
func (p *ContentPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return errors.New("content poller is already running")
	}
	p.isRunning = true
	p.ticker = p.clk.NewTicker(p.interval)
	p.mu.Unlock()

	p.refresh(ctx)

	p.wg.Add(1)
	go p.pollLoop(ctx)

	p.l.Infof(ctx, "Content poller started - location_id: %s, interval: %v",
		p.locationID, p.interval)

	return nil
}

// Stop halts the poll loop and waits for it to exit.
func (p *ContentPoller) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = false
	close(p.stopCh)
	if p.ticker != nil {
		p.ticker.Stop()
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// LastKnownGood returns the most recent successfully fetched bundle.
func (p *ContentPoller) LastKnownGood() (models.ContentBundle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastGood == nil {
		return models.ContentBundle{}, false
	}
	return *p.lastGood, true
}

func (p *ContentPoller) pollLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-p.ticker.C():
			p.refresh(ctx)
		}
	}
}

// refresh fetches the bundle. A failed fetch keeps the last-known-good
// content; the display must never go blank because the backend is down.
func (p *ContentPoller) refresh(ctx context.Context) {
	bundle, err := p.fetcher.FetchContent(ctx, p.locationID)
	if err != nil {
		p.l.Warnf(ctx, "Content refresh failed, keeping last known good - location_id: %s, error: %v",
			p.locationID, err)
		return
	}

	p.mu.Lock()
	p.lastGood = bundle
	p.mu.Unlock()

	if p.onContent != nil {
		p.onContent(*bundle)
	}
}
