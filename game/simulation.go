package game

import (
	"fmt"
	"time"

	"github.com/pthm-cable/wisp/input"
	"github.com/pthm-cable/wisp/systems"
	"github.com/pthm-cable/wisp/telemetry"
)

// Tick advances the driver for a display refresh observed at now, measured
// from any fixed origin. It does nothing unless the driver is Loading or
// Running.
func (d *Driver) Tick(now time.Duration) {
	switch d.state {
	case StateLoading:
		d.pollLoad()
	case StateRunning:
		if err := d.frame(now); err != nil {
			d.fail(err)
		}
	}
}

// frame runs one step, swap and render. Step-then-swap-then-render is strict.
func (d *Driver) frame(now time.Duration) error {
	d.perf.StartTick()

	d.perf.StartPhase(telemetry.PhaseForcing)
	tick := d.clock.Advance(now)
	d.tracker.Smooth()
	snap := d.tracker.Snapshot()
	forcing := d.forcing(snap)

	repaint := false
	if d.trail != nil {
		d.perf.StartPhase(telemetry.PhaseTrail)
		var err error
		if repaint, err = d.trail.Update(snap, tick.DtRatio); err != nil {
			return fmt.Errorf("trail update: %w", err)
		}
		d.trail.FillRGBA(d.trailPixels)
		if err := d.res.overlay.Update(d.trailPixels); err != nil {
			return fmt.Errorf("trail upload: %w", err)
		}
	}

	d.perf.StartPhase(telemetry.PhaseStep)
	stats, err := d.stepper.Step(d.store.Current(), d.store.Next(), forcing, tick)
	if err != nil {
		return err
	}

	d.perf.StartPhase(telemetry.PhaseSwap)
	d.store.Swap()

	d.perf.StartPhase(telemetry.PhaseRender)
	visible, err := d.render(tick)
	if err != nil {
		return err
	}

	d.lastForcing = forcing
	elapsed := d.perf.EndTick()
	d.perf.RecordFrame()
	d.recordFrame(telemetry.FrameRecord{
		Step:     tick.Step,
		SimTime:  tick.SimTime,
		DtMs:     tick.DtMs,
		Respawns: stats.Respawns,
		Visible:  visible,
		Repaint:  repaint,
	}, elapsed, now)
	return nil
}

// forcing builds the stepper input from a tracker snapshot and the camera.
func (d *Driver) forcing(snap input.ForcingState) systems.Forcing {
	sx, sy := d.camera.MouseScale()
	f := systems.Forcing{
		Mouse:      [2]float64{float64(snap.Pointer[0]), float64(snap.Pointer[1])},
		MouseScale: [2]float64{sx, sy},
	}
	if d.trail != nil {
		f.Field = d.trail
	}
	return f
}
