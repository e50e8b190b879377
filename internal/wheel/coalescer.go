// Package wheel turns a stream of continuous wheel deltas into discrete
// reveal triggers.
package wheel

import (
	"fmt"
	"math"
	"time"
)

// Config controls coalescing.
type Config struct {
	Threshold float64       // Accumulated magnitude required to trigger.
	IdleReset time.Duration // Gap after which the accumulator restarts from zero.
	Cooldown  time.Duration // Minimum time between two triggers.
}

// DefaultConfig returns defaults tuned for both touch-pads and notched wheels.
func DefaultConfig() Config {
	return Config{
		Threshold: 200,
		IdleReset: 300 * time.Millisecond,
		Cooldown:  500 * time.Millisecond,
	}
}

// Validate checks that the configuration can ever trigger.
func (c Config) Validate() error {
	if c.Threshold <= 0 || math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) {
		return fmt.Errorf("wheel threshold must be a positive number, got %v", c.Threshold)
	}
	if c.IdleReset < 0 {
		return fmt.Errorf("wheel idle reset must not be negative, got %s", c.IdleReset)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("wheel cooldown must not be negative, got %s", c.Cooldown)
	}
	return nil
}

// Target is what a trigger advances.
type Target interface {
	HasHidden() bool
	RevealNext() bool
}

// Event is one raw wheel sample. Positive Delta scrolls forward.
type Event struct {
	Delta float64
	At    time.Time
}

// Result describes what the coalescer did with an event. Intercepted events
// must have their default scroll effect suppressed by the caller.
type Result struct {
	Intercepted bool
	Triggered   bool
}

// Coalescer emits at most one reveal per qualifying gesture.
//
// Coalescer is not safe for concurrent use.
type Coalescer struct {
	cfg    Config
	target Target
	now    func() time.Time

	accumulated float64
	lastEvent   time.Time
	lastTrigger time.Time
}

// New creates a coalescer driving target.
func New(cfg Config, target Target) *Coalescer {
	return &Coalescer{
		cfg:    cfg,
		target: target,
		now:    time.Now,
	}
}

// SetClock replaces the clock used for events without a timestamp.
func (c *Coalescer) SetClock(now func() time.Time) {
	c.now = now
}

// Handle consumes one wheel event.
func (c *Coalescer) Handle(ev Event) Result {
	// Backward and zero deltas are left to native scrolling.
	if !(ev.Delta > 0) {
		return Result{}
	}
	if !c.target.HasHidden() {
		return Result{}
	}

	now := ev.At
	if now.IsZero() {
		now = c.now()
	}

	if !c.lastTrigger.IsZero() && now.Sub(c.lastTrigger) < c.cfg.Cooldown {
		return Result{Intercepted: true}
	}
	if c.lastEvent.IsZero() || now.Sub(c.lastEvent) > c.cfg.IdleReset {
		c.accumulated = 0
	}
	c.accumulated += math.Abs(ev.Delta)
	c.lastEvent = now

	if c.accumulated < c.cfg.Threshold {
		return Result{Intercepted: true}
	}
	c.target.RevealNext()
	c.accumulated = 0
	c.lastTrigger = now
	return Result{Intercepted: true, Triggered: true}
}

// Accumulated returns the current accumulated magnitude.
func (c *Coalescer) Accumulated() float64 {
	return c.accumulated
}

// Reset forgets any partial gesture and cooldown.
func (c *Coalescer) Reset() {
	c.accumulated = 0
	c.lastEvent = time.Time{}
	c.lastTrigger = time.Time{}
}
