// Package input turns pointer events into the forcing state consumed by the
// simulation, plus the decaying trail image used in trail mode.
package input

import (
	"math"
	"sync"

	"github.com/charmbracelet/harmonica"
)

// TrailPoint is a pointer sample in normalized [-1,1] coordinates, +y up.
type TrailPoint struct {
	X, Y float32
}

// ForcingState is a consistent copy of the tracker's state.
type ForcingState struct {
	Pointer [2]float32 // forcing point, smoothed when a spring is configured
	Active  bool       // true once any pointer input has arrived
	Trail   []TrailPoint
	Version uint64 // bumped on every accepted input event
}

// Tracker accumulates pointer input. Producers never block on consumers;
// the tick goroutine reads through Snapshot.
type Tracker struct {
	mu       sync.Mutex
	capacity int
	raw      [2]float32
	active   bool
	trail    []TrailPoint
	version  uint64

	spring   *harmonica.Spring
	smoothed [2]float64
	velocity [2]float64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithSpring eases the forcing point toward the pointer with a damped spring
// advanced once per Smooth call at the given frame rate.
func WithSpring(fps int, frequency, damping float64) Option {
	return func(t *Tracker) {
		if frequency <= 0 || fps <= 0 {
			return
		}
		s := harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)
		t.spring = &s
	}
}

// NewTracker creates a tracker keeping at most capacity trail points.
func NewTracker(capacity int, opts ...Option) *Tracker {
	if capacity <= 0 {
		capacity = 1
	}
	t := &Tracker{
		capacity: capacity,
		trail:    make([]TrailPoint, 0, capacity),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// PointerMove records a pointer position in client pixels for a viewport of w×h.
func (t *Tracker) PointerMove(x, y, w, h float64) error {
	if err := checkPayload("pointermove", x, y, w, h); err != nil {
		return err
	}
	t.record(normalize(x, y, w, h))
	return nil
}

// TouchMove records the first touch point. Other touches are ignored.
func (t *Tracker) TouchMove(touches [][2]float64, w, h float64) error {
	if len(touches) == 0 {
		return &InputError{Event: "touchmove", Reason: "no touch points"}
	}
	x, y := touches[0][0], touches[0][1]
	if err := checkPayload("touchmove", x, y, w, h); err != nil {
		return err
	}
	t.record(normalize(x, y, w, h))
	return nil
}

// Smooth advances the spring one frame. Without a spring it does nothing.
func (t *Tracker) Smooth() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.spring == nil || !t.active {
		return
	}
	for i := range t.smoothed {
		t.smoothed[i], t.velocity[i] = t.spring.Update(t.smoothed[i], t.velocity[i], float64(t.raw[i]))
	}
}

// Snapshot returns a copy of the current state; later input does not affect it.
func (t *Tracker) Snapshot() ForcingState {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := ForcingState{
		Pointer: t.raw,
		Active:  t.active,
		Trail:   make([]TrailPoint, len(t.trail)),
		Version: t.version,
	}
	copy(s.Trail, t.trail)
	if t.spring != nil {
		s.Pointer = [2]float32{float32(t.smoothed[0]), float32(t.smoothed[1])}
	}
	return s
}

// Capacity returns the maximum trail length.
func (t *Tracker) Capacity() int {
	return t.capacity
}

func (t *Tracker) record(p TrailPoint) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active && t.spring != nil {
		// start the spring at the first sample instead of the origin
		t.smoothed = [2]float64{float64(p.X), float64(p.Y)}
	}
	t.raw = [2]float32{p.X, p.Y}
	t.active = true

	if len(t.trail) == t.capacity {
		copy(t.trail, t.trail[1:])
		t.trail = t.trail[:len(t.trail)-1]
	}
	t.trail = append(t.trail, p)
	t.version++
}

func normalize(x, y, w, h float64) TrailPoint {
	return TrailPoint{
		X: float32(x/w*2 - 1),
		Y: float32(-(y/h)*2 + 1),
	}
}

func checkPayload(event string, x, y, w, h float64) error {
	if !finite(x) || !finite(y) {
		return &InputError{Event: event, Reason: "non-finite position"}
	}
	if !finite(w) || !finite(h) || w <= 0 || h <= 0 {
		return &InputError{Event: event, Reason: "invalid viewport"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
