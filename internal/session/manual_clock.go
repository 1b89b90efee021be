package session

import (
	"sync"
	"time"
)

// ManualClock is a Clock driven by Advance. Tickers and timers fire
// synchronously: Advance blocks until every due event has been received.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
	timers  []*manualTimer
}

type manualTicker struct {
	c       chan time.Time
	period  time.Duration
	next    time.Time
	stopped bool
}

type manualTimer struct {
	c   chan time.Time
	at  time.Time
	hit bool
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (m *ManualClock) NewTicker(d time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTicker{c: make(chan time.Time), period: d, next: m.now.Add(d)}
	m.tickers = append(m.tickers, t)
	return &manualTickerHandle{clock: m, t: t}
}

func (m *ManualClock) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTimer{c: make(chan time.Time, 1), at: m.now.Add(d)}
	if d <= 0 {
		t.hit = true
		t.c <- m.now
		return t.c
	}
	m.timers = append(m.timers, t)
	return t.c
}

// Advance moves time forward one step at a time, delivering ticks in order.
// Tick channels are unbuffered, so a tick is only consumed by a receiver
// that is still listening; stopped tickers are skipped.
func (m *ManualClock) Advance(d time.Duration, step time.Duration) {
	if step <= 0 {
		step = d
	}
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		m.step(step)
	}
}

func (m *ManualClock) step(step time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(step)
	now := m.now

	var due []*manualTicker
	for _, t := range m.tickers {
		if !t.stopped && !t.next.After(now) {
			t.next = t.next.Add(t.period)
			due = append(due, t)
		}
	}
	for _, t := range m.timers {
		if !t.hit && !t.at.After(now) {
			t.hit = true
			t.c <- now
		}
	}
	m.mu.Unlock()

	for _, t := range due {
		m.deliver(t, now)
	}
}

func (m *ManualClock) deliver(t *manualTicker, now time.Time) {
	for {
		m.mu.Lock()
		stopped := t.stopped
		m.mu.Unlock()
		if stopped {
			return
		}
		select {
		case t.c <- now:
			return
		case <-time.After(time.Millisecond):
		}
	}
}

func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

type manualTickerHandle struct {
	clock *ManualClock
	t     *manualTicker
}

func (h *manualTickerHandle) C() <-chan time.Time { return h.t.c }

func (h *manualTickerHandle) Stop() {
	h.clock.mu.Lock()
	h.t.stopped = true
	h.clock.mu.Unlock()
}
