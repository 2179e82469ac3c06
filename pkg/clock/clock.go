// Package clock abstracts wall-clock time and timers so timer-driven
// components (ad rotation, dwell, reconnect backoff, polling) can be
// exercised in tests with a simulated clock.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	// AfterFunc schedules fn to run after d and returns a cancellable timer.
	AfterFunc(d time.Duration, fn func()) Timer
	// NewTicker returns a ticker firing every d.
	NewTicker(d time.Duration) Ticker
}

type Timer interface {
	// Stop prevents the timer from firing. It reports whether it stopped
	// the timer before it fired. Safe to call multiple times.
	Stop() bool
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real returns a Clock backed by the time package.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTimer struct {
	t *time.Timer
}

func (rt realTimer) Stop() bool { return rt.t.Stop() }

type realTicker struct {
	t *time.Ticker
}

func (rt *realTicker) C() <-chan time.Time { return rt.t.C }
func (rt *realTicker) Stop()               { rt.t.Stop() }

// Mock is a manually advanced Clock for tests. Timers fire synchronously
// inside Advance, in scheduling order.
type Mock struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*mockTimer
	tickers []*mockTicker
	seq     int
}

func NewMock() *Mock {
	return &Mock{now: time.Unix(0, 0)}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &mockTimer{
		clock:    m,
		deadline: m.now.Add(d),
		fn:       fn,
		seq:      m.seq,
	}
	m.timers = append(m.timers, t)
	return t
}

func (m *Mock) NewTicker(d time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &mockTicker{
		clock:    m,
		interval: d,
		next:     m.now.Add(d),
		ch:       make(chan time.Time, 64),
	}
	m.tickers = append(m.tickers, t)
	return t
}

// Advance moves the clock forward by d, firing due timers and tickers.
// Callbacks run on the calling goroutine without the clock lock held, so
// they may schedule new timers (per-item rotation reschedules this way).
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		fn := m.fireNext(target)
		if fn == nil {
			break
		}
		fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// fireNext pops the earliest timer or ticker tick due at or before target,
// advances now to its deadline, and returns the work to run.
func (m *Mock) fireNext(target time.Time) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		bestTimer  *mockTimer
		bestTicker *mockTicker
		bestAt     time.Time
	)

	for _, t := range m.timers {
		if t.stopped || t.deadline.After(target) {
			continue
		}
		if bestTimer == nil || t.deadline.Before(bestAt) ||
			(t.deadline.Equal(bestAt) && t.seq < bestTimer.seq) {
			bestTimer = t
			bestAt = t.deadline
		}
	}
	for _, tk := range m.tickers {
		if tk.stopped || tk.next.After(target) {
			continue
		}
		if (bestTimer == nil && bestTicker == nil) || tk.next.Before(bestAt) {
			bestTimer = nil
			bestTicker = tk
			bestAt = tk.next
		}
	}

	switch {
	case bestTimer != nil:
		bestTimer.stopped = true
		m.now = bestTimer.deadline
		return bestTimer.fn
	case bestTicker != nil:
		m.now = bestTicker.next
		bestTicker.next = bestTicker.next.Add(bestTicker.interval)
		tk, at := bestTicker, m.now
		return func() {
			select {
			case tk.ch <- at:
			default:
			}
		}
	default:
		return nil
	}
}

type mockTimer struct {
	clock    *Mock
	deadline time.Time
	fn       func()
	stopped  bool
	seq      int
}

func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

type mockTicker struct {
	clock    *Mock
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *mockTicker) C() <-chan time.Time { return t.ch }

func (t *mockTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}
