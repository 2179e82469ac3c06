package ads

import (
	"sync"
	"time"

	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/pkg/clock"
)

// Scheduler cycles through the playlist one item at a time while the
// display sits in standby. Every item is scheduled on its own single-shot
// timer because paid campaigns carry arbitrary, non-uniform durations; a
// fixed global tick cannot honor them.
type Scheduler struct {
	defaultDuration time.Duration
	clk             clock.Clock
	onShow          func(models.PlaylistItem)

	mu      sync.Mutex
	items   []models.PlaylistItem
	idx     int
	timer   clock.Timer
	running bool
	closed  bool
}

type SchedulerConfig struct {
	DefaultSlideDuration time.Duration
	Clock                clock.Clock
}

// NewScheduler builds a stopped scheduler. onShow fires for each item as
// it becomes current, including on Start and on playlist swaps.
func NewScheduler(cfg SchedulerConfig, onShow func(models.PlaylistItem)) *Scheduler {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &Scheduler{
		defaultDuration: cfg.DefaultSlideDuration,
		clk:             clk,
		onShow:          onShow,
	}
}

// SetPlaylist swaps the rotation content. While running, the current item
// restarts on the new playlist; the index is preserved modulo the new
// length so a refresh does not reset rotation fairness.
func (s *Scheduler) SetPlaylist(items []models.PlaylistItem) {
	s.mu.Lock()
	s.items = items
	if len(items) > 0 {
		s.idx = s.idx % len(items)
	} else {
		s.idx = 0
	}
	if !s.running || s.closed {
		s.mu.Unlock()
		return
	}
	s.showLocked()
	s.mu.Unlock()
}

// Start begins rotation from the current index. Called on entering
// standby; the index deliberately survives session interruptions so ads
// are not penalized by intake traffic.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running || s.closed {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.showLocked()
	s.mu.Unlock()
}

// Stop cancels the rotation timer without touching the index. Called on
// leaving standby.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.stopTimerLocked()
}

// Close permanently shuts the scheduler down.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.running = false
	s.stopTimerLocked()
}

// Current returns the item on screen, if any.
func (s *Scheduler) Current() (models.PlaylistItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return models.PlaylistItem{}, false
	}
	return s.items[s.idx], true
}

// showLocked presents the current item and arms its single-shot timer.
func (s *Scheduler) showLocked() {
	s.stopTimerLocked()

	if len(s.items) == 0 {
		return
	}

	item := s.items[s.idx]
	s.timer = s.clk.AfterFunc(item.Duration(s.defaultDuration), s.advance)

	if s.onShow != nil {
		// Callback runs under the lock; observers only snapshot the item.
		s.onShow(item)
	}
}

// advance moves to the next item modulo playlist length and reschedules
// for that item's own duration.
func (s *Scheduler) advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.closed || len(s.items) == 0 {
		return
	}

	s.idx = (s.idx + 1) % len(s.items)
	s.showLocked()
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
