// Package clock supplies the monotonic timestamps handed to frame callbacks.
package clock

import (
	"sync"
	"time"
)

// MonoTime is a monotonic timestamp in nanoseconds since an arbitrary epoch.
type MonoTime int64

// Duration converts m to a time.Duration measured from the clock's epoch.
func (m MonoTime) Duration() time.Duration {
	return time.Duration(m)
}

// FromDuration converts d to a MonoTime.
func FromDuration(d time.Duration) MonoTime {
	return MonoTime(d.Nanoseconds())
}

// Clock reports monotonic time for frame scheduling.
type Clock interface {
	// Now returns the current monotonic time.
	Now() MonoTime

	// Since returns the time elapsed since t.
	Since(t MonoTime) time.Duration
}

// SystemClock reads the process monotonic clock.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock returns a SystemClock whose epoch is the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

func (s *SystemClock) Now() MonoTime {
	return FromDuration(time.Since(s.epoch))
}

func (s *SystemClock) Since(t MonoTime) time.Duration {
	return (s.Now() - t).Duration()
}

// StepClock only moves when told to. Tests and headless renders use it to
// drive frames with a fixed, reproducible interval.
type StepClock struct {
	mu      sync.RWMutex
	current MonoTime
	step    time.Duration
}

// NewStepClock returns a StepClock at time zero advancing by step per Tick.
// A non-positive step defaults to one 60 Hz frame.
func NewStepClock(step time.Duration) *StepClock {
	if step <= 0 {
		step = time.Second / 60
	}
	return &StepClock{step: step}
}

func (c *StepClock) Now() MonoTime {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *StepClock) Since(t MonoTime) time.Duration {
	return (c.Now() - t).Duration()
}

// Tick advances the clock by one step and returns the new time.
func (c *StepClock) Tick() MonoTime {
	return c.Advance(c.step)
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (c *StepClock) Advance(d time.Duration) MonoTime {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.current += FromDuration(d)
	}
	return c.current
}

// Step returns the per-Tick increment.
func (c *StepClock) Step() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step
}
