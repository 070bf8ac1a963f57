package app

import (
	"context"
	"sync"
	"time"

	"github.com/example/dayof/internal/clock"
	"github.com/example/dayof/internal/core/otp"
	"github.com/example/dayof/internal/ports/primary"
)

// CountdownInterval is the cadence at which remaining time is recomputed.
const CountdownInterval = time.Second

// CountdownManager runs at most one countdown per OTP kind. Each countdown
// recomputes the remaining time from the server's sentAt on every tick, so
// a delayed tick never drifts. Countdowns never touch the Event.
type CountdownManager struct {
	clock    clock.Clock
	ttl      time.Duration
	interval time.Duration
	ticks    chan primary.Tick

	mu      sync.Mutex
	running map[otp.Kind]*countdown
	closed  bool
	wg      sync.WaitGroup
}

type countdown struct {
	sentAt time.Time
	cancel context.CancelFunc
}

// NewCountdownManager creates a manager for challenges valid for ttl.
func NewCountdownManager(clk clock.Clock, ttl time.Duration) *CountdownManager {
	if ttl <= 0 {
		ttl = otp.DefaultTTL
	}
	return &CountdownManager{
		clock:    clk,
		ttl:      ttl,
		interval: CountdownInterval,
		ticks:    make(chan primary.Tick, 8),
		running:  make(map[otp.Kind]*countdown),
	}
}

// Ticks delivers ticks from every countdown. It is closed by StopAll.
func (m *CountdownManager) Ticks() <-chan primary.Tick {
	return m.ticks
}

// Start begins a countdown for kind bound to sentAt, replacing any
// countdown already running for kind. An initial tick is emitted at once.
func (m *CountdownManager) Start(kind otp.Kind, sentAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if cur, ok := m.running[kind]; ok {
		cur.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &countdown{sentAt: sentAt, cancel: cancel}
	m.running[kind] = c

	// Ticker and first instant are taken here so a test clock advanced right
	// after Start is observed by the goroutine.
	ticker := m.clock.NewTicker(m.interval)
	first := m.clock.Now()

	m.wg.Add(1)
	go m.run(ctx, kind, c, ticker, first)
}

// Stop cancels the countdown for kind, if any.
func (m *CountdownManager) Stop(kind otp.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.running[kind]; ok {
		cur.cancel()
		delete(m.running, kind)
	}
}

// Running reports whether a countdown for kind is active.
func (m *CountdownManager) Running(kind otp.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.running[kind]
	return ok
}

// StopAll cancels every countdown, waits for them to exit and closes Ticks.
// The manager cannot be restarted.
func (m *CountdownManager) StopAll() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for kind, c := range m.running {
		c.cancel()
		delete(m.running, kind)
	}
	m.mu.Unlock()

	m.wg.Wait()
	close(m.ticks)
}

func (m *CountdownManager) run(ctx context.Context, kind otp.Kind, c *countdown, ticker clock.Ticker, first time.Time) {
	defer m.wg.Done()
	defer ticker.Stop()
	defer m.release(kind, c)

	if !m.emit(ctx, kind, c.sentAt, first) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C():
			if !m.emit(ctx, kind, c.sentAt, now) {
				return
			}
		}
	}
}

// emit publishes one tick and reports whether the countdown should go on.
func (m *CountdownManager) emit(ctx context.Context, kind otp.Kind, sentAt, now time.Time) bool {
	if ctx.Err() != nil {
		return false
	}
	ch := otp.Challenge{SentAt: &sentAt, TTL: m.ttl}
	remaining, _ := ch.Remaining(now)
	state := ch.State(now)

	select {
	case m.ticks <- primary.Tick{Kind: kind, Remaining: remaining, State: state}:
	case <-ctx.Done():
		return false
	}
	return state == otp.StatePending
}

// release forgets c once it has exited on its own (expiry).
func (m *CountdownManager) release(kind otp.Kind, c *countdown) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running[kind] == c {
		c.cancel()
		delete(m.running, kind)
	}
}
