// Package frame provides the cooperative, single-threaded scheduler that
// linked charts use to defer work to the next animation frame.
//
// Hosts post gesture completions with Post and advance frames with Tick.
// Callbacks always run on the goroutine that calls Drain, Tick or
// RunUntilIdle; the queues themselves may be fed from any goroutine.
package frame

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BYTE-6D65/bigchart/pkg/clock"
)

// ErrClosed is returned when scheduling on a closed Loop.
var ErrClosed = errors.New("frame: loop is closed")

// Loop holds two FIFO queues: host events and next-frame callbacks.
type Loop struct {
	mu     sync.Mutex
	clock  clock.Clock
	events []func()
	frames []func(clock.MonoTime)
	closed bool

	pending prometheus.Gauge
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the clock whose time is passed to frame callbacks.
func WithClock(c clock.Clock) Option {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithPendingGauge reports the number of queued frame callbacks to g.
func WithPendingGauge(g prometheus.Gauge) Option {
	return func(l *Loop) {
		l.pending = g
	}
}

// New creates a Loop. Without WithClock it uses a SystemClock.
func New(opts ...Option) *Loop {
	l := &Loop{}
	for _, opt := range opts {
		opt(l)
	}
	if l.clock == nil {
		l.clock = clock.NewSystemClock()
	}
	return l
}

// Post appends fn to the event queue.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.events = append(l.events, fn)
	return nil
}

// RequestFrame schedules fn to run on the next Tick. Callbacks requested
// while a tick is running wait for the following one.
func (l *Loop) RequestFrame(fn func(clock.MonoTime)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.frames = append(l.frames, fn)
	l.report()
	return nil
}

// Drain runs posted events until the event queue is empty, including events
// posted by the ones it runs. It returns the number of events run.
func (l *Loop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.events) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.events[0]
		l.events[0] = nil
		l.events = l.events[1:]
		l.mu.Unlock()

		fn()
		n++
	}
}

// Tick runs every frame callback registered before the call, in
// registration order, and returns how many ran.
func (l *Loop) Tick() int {
	l.mu.Lock()
	batch := l.frames
	l.frames = nil
	l.report()
	l.mu.Unlock()

	if len(batch) == 0 {
		return 0
	}

	now := l.clock.Now()
	for _, fn := range batch {
		fn(now)
	}
	return len(batch)
}

// RunUntilIdle alternates Drain and Tick until both queues stay empty or ctx
// is done.
func (l *Loop) RunUntilIdle(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.Drain()+l.Tick() == 0 {
			return nil
		}
	}
}

// Run drains and ticks once per interval until ctx is done.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Drain()
			l.Tick()
		}
	}
}

// Pending returns the number of queued events.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// PendingFrames returns the number of callbacks waiting for the next Tick.
func (l *Loop) PendingFrames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}

// Close discards everything still queued and rejects further scheduling.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.events = nil
	l.frames = nil
	l.report()
}

// report must be called with mu held.
func (l *Loop) report() {
	if l.pending != nil {
		l.pending.Set(float64(len(l.frames)))
	}
}
