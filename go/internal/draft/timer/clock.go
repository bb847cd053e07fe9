// Package timer implements the per-room pick countdown. Remaining time is
// always derived from a wall-clock deadline, never from a decrementing
// counter, so a clock can be rebuilt after a restart from
// (startedAt, totalSeconds) alone and connected clients that drop and rejoin
// see the same remaining time the server does.
package timer

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// PickClock tracks one armed pick countdown. It is not safe for concurrent
// use; the room actor is its only caller.
type PickClock struct {
	clock clockwork.Clock

	total     time.Duration
	startedAt time.Time
	deadline  time.Time

	paused          bool
	remainingPaused time.Duration

	timer clockwork.Timer
	armed bool
}

// NewPickClock returns an unarmed clock driven by the given clockwork clock.
func NewPickClock(clock clockwork.Clock) *PickClock {
	return &PickClock{clock: clock}
}

// Arm resets the countdown to total and starts it. Any previously armed
// countdown is discarded.
func (c *PickClock) Arm(total time.Duration) {
	c.stopTimer()
	now := c.clock.Now()
	c.total = total
	c.startedAt = now
	c.deadline = now.Add(total)
	c.paused = false
	if c.timer == nil {
		c.timer = c.clock.NewTimer(total)
	} else {
		c.timer.Reset(total)
	}
	c.armed = true
}

// Rebuild re-arms the clock from a persisted start time, as after a process
// restart. A deadline already in the past yields an immediately firing timer.
func (c *PickClock) Rebuild(startedAt time.Time, total time.Duration) {
	c.stopTimer()
	c.total = total
	c.startedAt = startedAt
	c.deadline = startedAt.Add(total)
	c.paused = false
	wait := c.deadline.Sub(c.clock.Now())
	if wait < 0 {
		wait = 0
	}
	if c.timer == nil {
		c.timer = c.clock.NewTimer(wait)
	} else {
		c.timer.Reset(wait)
	}
	c.armed = true
}

// C returns the channel that fires when the countdown expires. It fires at
// most once per Arm; callers must not read it while the clock is paused or
// unarmed.
func (c *PickClock) C() <-chan time.Time {
	if c.timer == nil {
		return nil
	}
	return c.timer.Chan()
}

// Pause freezes the countdown, retaining the remaining time.
func (c *PickClock) Pause() {
	if !c.armed || c.paused {
		return
	}
	c.remainingPaused = c.remaining()
	c.stopTimer()
	c.paused = true
}

// Resume unfreezes a paused countdown from where it left off.
func (c *PickClock) Resume() {
	if !c.armed || !c.paused {
		return
	}
	now := c.clock.Now()
	c.deadline = now.Add(c.remainingPaused)
	c.startedAt = c.deadline.Add(-c.total)
	c.timer.Reset(c.remainingPaused)
	c.paused = false
}

// Remaining derives the time left on the countdown from the wall clock. It
// never goes negative.
func (c *PickClock) Remaining() time.Duration {
	if !c.armed {
		return 0
	}
	if c.paused {
		return c.remainingPaused
	}
	return c.remaining()
}

// Deadline returns the absolute expiry time, or false while unarmed or
// paused.
func (c *PickClock) Deadline() (time.Time, bool) {
	if !c.armed || c.paused {
		return time.Time{}, false
	}
	return c.deadline, true
}

// Total returns the duration the countdown was armed with.
func (c *PickClock) Total() time.Duration {
	return c.total
}

// Paused reports whether the countdown is frozen.
func (c *PickClock) Paused() bool {
	return c.paused
}

// Stop disarms the clock entirely.
func (c *PickClock) Stop() {
	c.stopTimer()
	c.armed = false
	c.paused = false
}

func (c *PickClock) remaining() time.Duration {
	rem := c.deadline.Sub(c.clock.Now())
	if rem < 0 {
		return 0
	}
	return rem
}

// stopTimer stops and drains the underlying timer so a stale expiry can
// never be read after a re-arm, per the time.Timer.Stop contract.
func (c *PickClock) stopTimer() {
	if c.timer == nil {
		return
	}
	if !c.timer.Stop() {
		select {
		case <-c.timer.Chan():
		default:
		}
	}
}
