package systems

import (
	"math"
	"time"
)

// Tick carries the timing of one simulation step.
type Tick struct {
	DtMs    float64 // clamped frame delta
	DtRatio float64 // DtMs relative to the reference frame
	SimTime float64 // accumulated simulation time after this tick
	Step    uint64  // monotonically increasing step counter
}

// Clock turns wall-clock frame times into clamped simulation ticks.
type Clock struct {
	ReferenceDtMs float64
	MaxDtMs       float64
	TimeScale     float64 // sim time advanced per reference frame

	elapsed float64
	last    time.Duration
	started bool
	step    uint64
}

// NewClock creates a clock with the given reference frame, clamp and time scale.
func NewClock(referenceDtMs, maxDtMs, timeScale float64) *Clock {
	return &Clock{
		ReferenceDtMs: referenceDtMs,
		MaxDtMs:       maxDtMs,
		TimeScale:     timeScale,
	}
}

// Advance computes the tick for a frame observed at now.
// The first frame has a zero delta.
func (c *Clock) Advance(now time.Duration) Tick {
	var dtMs float64
	if c.started {
		dtMs = float64(now-c.last) / float64(time.Millisecond)
	}
	c.started = true
	c.last = now
	return c.AdvanceBy(dtMs)
}

// AdvanceBy advances the clock by an explicit delta in milliseconds.
// Negative and non-finite deltas count as zero; large ones clamp to MaxDtMs.
func (c *Clock) AdvanceBy(dtMs float64) Tick {
	if dtMs < 0 || math.IsNaN(dtMs) {
		dtMs = 0
	}
	if dtMs > c.MaxDtMs {
		dtMs = c.MaxDtMs
	}
	ratio := dtMs / c.ReferenceDtMs
	c.elapsed += c.TimeScale * ratio
	c.step++
	return Tick{DtMs: dtMs, DtRatio: ratio, SimTime: c.elapsed, Step: c.step}
}

// Elapsed returns the accumulated simulation time.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
