package oitview

import (
	"time"
)

// UPS is the default simulation rate in updates per second.
const UPS = 20

// DefaultMaxCatchUp bounds the simulation debt, in ticks, carried into a frame.
const DefaultMaxCatchUp = 5

// Timer decouples the fixed simulation rate from the display rate.
// Reset once per displayed frame, then drain with
//
//	for t.ShouldUpdate() { step(); t.Update() }
type Timer struct {
	accumulator time.Duration
	delta       time.Duration
	current     time.Time
	tick        time.Duration

	// MaxCatchUp caps the accumulator at MaxCatchUp ticks after Reset.
	// Zero leaves the accumulator unbounded.
	MaxCatchUp int
	dropped    time.Duration

	now func() time.Time
}

func NewTimer(ups, maxCatchUp int) *Timer {
	return NewTimerWithClock(ups, maxCatchUp, time.Now)
}

func NewTimerWithClock(ups, maxCatchUp int, now func() time.Time) *Timer {
	if ups <= 0 {
		ups = UPS
	}
	return &Timer{
		current:    now(),
		tick:       time.Second / time.Duration(ups),
		MaxCatchUp: maxCatchUp,
		now:        now,
	}
}

func (t *Timer) Reset() {
	now := t.now()
	t.delta = now.Sub(t.current)
	t.current = now
	t.accumulator += t.delta
	t.dropped = 0

	if t.MaxCatchUp > 0 {
		limit := time.Duration(t.MaxCatchUp) * t.tick
		if t.accumulator > limit {
			t.dropped = t.accumulator - limit
			t.accumulator = limit
		}
	}
}

func (t *Timer) ShouldUpdate() bool {
	return t.accumulator >= t.tick
}

func (t *Timer) Update() {
	if t.accumulator < t.tick {
		t.accumulator = 0
		return
	}
	t.accumulator -= t.tick
}

func (t *Timer) Delta() time.Duration {
	return t.delta
}

// Tick is the fixed simulation step.
func (t *Timer) Tick() time.Duration {
	return t.tick
}

// Dropped reports simulation time discarded by the last Reset.
func (t *Timer) Dropped() time.Duration {
	return t.dropped
}
