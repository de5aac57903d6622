// Package game drives the particle field: it owns the session lifecycle,
// the ping-pong state and the per-frame step and render sequence.
package game

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/wisp/camera"
	"github.com/pthm-cable/wisp/config"
	"github.com/pthm-cable/wisp/input"
	"github.com/pthm-cable/wisp/renderer"
	"github.com/pthm-cable/wisp/systems"
	"github.com/pthm-cable/wisp/telemetry"
)

// State is the driver's lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateRunning
	StateDisposed
	StateFailed
)

var stateNames = []string{"uninitialized", "loading", "running", "disposed", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Driver sequences loading, stepping and rendering. Every method except the
// input ones must be called from the goroutine that owns the backend.
type Driver struct {
	opts   Options
	cfg    *config.Config
	logger *slog.Logger
	seed   int64

	state State
	err   error

	cancel context.CancelFunc
	loadCh chan loadResult

	backend renderer.Backend
	res     *resources

	tracker  *input.Tracker
	camera   *camera.Camera
	viewport atomic.Pointer[viewport] // camera size as seen by input producers
	clock    *systems.Clock

	store       *systems.StateStore
	stepper     *systems.Stepper
	field       *renderer.ParticleField
	trail       *input.TrailMap
	trailPixels []color.RGBA

	perf        *telemetry.PerfCollector
	stats       *telemetry.Collector
	lastFlush   time.Duration
	lastFrame   telemetry.FrameRecord
	lastForcing systems.Forcing
	lastWindow  telemetry.WindowStats
}

// viewport is an immutable copy of the camera size, swapped on resize.
type viewport struct {
	w, h float64
}

// NewDriver creates a driver in the Uninitialized state. The tracker and
// camera exist from construction so the host can deliver input and resizes
// before Start.
func NewDriver(opts Options) (*Driver, error) {
	opts = opts.withDefaults()
	cfg := opts.Config

	cam, err := camera.New(cfg.Camera.Fov, cfg.Camera.Near, cfg.Camera.Far, cfg.Camera.Distance,
		float64(cfg.Screen.Width), float64(cfg.Screen.Height))
	if err != nil {
		return nil, fmt.Errorf("creating camera: %w", err)
	}

	seed := cfg.Particles.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sim := cfg.Simulation
	d := &Driver{
		opts:    opts,
		cfg:     cfg,
		logger:  opts.Logger,
		seed:    seed,
		tracker: input.NewTracker(cfg.Pointer.TrailLength, input.WithSpring(cfg.Screen.TargetFPS, cfg.Pointer.SpringFrequency, cfg.Pointer.SpringDamping)),
		camera:  cam,
		clock:   systems.NewClock(sim.ReferenceDTMs, sim.MaxDTMs, sim.TimeScale),
		perf:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		stats:   telemetry.NewCollector(),
	}
	d.viewport.Store(&viewport{w: cam.ViewportW, h: cam.ViewportH})
	d.setState(StateUninitialized)
	return d, nil
}

// State returns the current lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Err returns the error that moved the driver to Failed, or nil.
func (d *Driver) Err() error {
	return d.err
}

// Config returns the session configuration.
func (d *Driver) Config() *config.Config {
	return d.cfg
}

// Seed returns the resolved particle seed.
func (d *Driver) Seed() int64 {
	return d.seed
}

// Camera returns the viewport camera.
func (d *Driver) Camera() *camera.Camera {
	return d.camera
}

// Tracker returns the pointer tracker.
func (d *Driver) Tracker() *input.Tracker {
	return d.tracker
}

// LastFrame returns the record of the most recent running frame.
func (d *Driver) LastFrame() telemetry.FrameRecord {
	return d.lastFrame
}

// WindowStats returns the most recently flushed field statistics.
func (d *Driver) WindowStats() telemetry.WindowStats {
	return d.lastWindow
}

// Perf returns the current perf window statistics.
func (d *Driver) Perf() telemetry.PerfStats {
	return d.perf.Stats()
}

// Resize updates the viewport. Sizes the camera rejects leave it unchanged
// and return an *input.InputError.
func (d *Driver) Resize(w, h int) error {
	if err := d.camera.Resize(float64(w), float64(h)); err != nil {
		return &input.InputError{Event: "resize", Reason: err.Error()}
	}
	d.viewport.Store(&viewport{w: d.camera.ViewportW, h: d.camera.ViewportH})
	if d.backend != nil && d.state != StateDisposed && d.state != StateFailed {
		d.backend.Resize(w, h)
	}
	return nil
}

// PointerMove delivers a pointer event in client pixels. Malformed events
// are logged and dropped. Safe to call from any goroutine.
func (d *Driver) PointerMove(x, y float64) {
	vp := d.viewport.Load()
	if err := d.tracker.PointerMove(x, y, vp.w, vp.h); err != nil {
		d.dropInput(err)
	}
}

// TouchMove delivers a touch event; only the first touch is used. Safe to
// call from any goroutine.
func (d *Driver) TouchMove(touches [][2]float64) {
	vp := d.viewport.Load()
	if err := d.tracker.TouchMove(touches, vp.w, vp.h); err != nil {
		d.dropInput(err)
	}
}

func (d *Driver) dropInput(err error) {
	d.logger.Debug("input dropped", "error", err)
	d.opts.Metrics.InputDropped()
}

func (d *Driver) setState(s State) {
	if d.state != s {
		d.logger.Info("driver state", "from", d.state.String(), "to", s.String())
	}
	d.state = s
	d.opts.Metrics.SetState(s.String(), stateNames)
}

// fail moves the driver to Failed, releasing everything it owns. Only the
// first failure is reported.
func (d *Driver) fail(err error) {
	if d.state == StateFailed || d.state == StateDisposed {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.res.release()
	d.err = err
	d.logger.Error("driver failed", "error", err)
	d.setState(StateFailed)
	if d.opts.OnError != nil {
		d.opts.OnError(err)
	}
}
