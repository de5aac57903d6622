package game

import (
	"math"
	"time"

	"github.com/pthm-cable/wisp/telemetry"
)

// recordFrame publishes a finished frame and flushes the stats window when due.
func (d *Driver) recordFrame(r telemetry.FrameRecord, elapsed, now time.Duration) {
	d.lastFrame = r
	d.stats.RecordFrame(r)
	d.opts.Metrics.ObserveFrame(r, elapsed)

	if err := d.opts.Output.WriteFrame(r); err != nil {
		d.logger.Error("failed to write frame", "error", err)
	}

	d.flushTelemetry(r, now)
}

// flushTelemetry logs and exports perf and field stats once per stats window.
func (d *Driver) flushTelemetry(r telemetry.FrameRecord, now time.Duration) {
	window := d.opts.statsWindow()
	if window <= 0 || now-d.lastFlush < window {
		return
	}
	d.lastFlush = now

	perf := d.perf.Stats()
	ws := d.stats.Flush(r.Step, r.SimTime, d.sample())
	d.lastWindow = ws
	if d.opts.LogStats {
		perf.LogStats(d.logger)
		ws.LogStats(d.logger)
	}
	d.opts.Metrics.ObservePerf(perf)
	d.opts.Metrics.ObserveWindow(ws)
	if err := d.opts.Output.WritePerf(perf, r.Step); err != nil {
		d.logger.Error("failed to write perf", "error", err)
	}
	if err := d.opts.Output.WriteStats(ws); err != nil {
		d.logger.Error("failed to write stats", "error", err)
	}
}

// sample reads the live particles of the current state buffer.
func (d *Driver) sample() telemetry.FieldSample {
	state := d.store.Current()
	target := d.lastForcing.Target()

	var s telemetry.FieldSample
	for i := range state.Len() {
		t := state.At(i)
		if t.Life <= 0 {
			continue
		}
		x, y, z := float64(t.X), float64(t.Y), float64(t.Z)
		dx, dy, dz := x-target.X, y-target.Y, z-target.Z
		s.Lives = append(s.Lives, float64(t.Life))
		s.Radii = append(s.Radii, math.Sqrt(x*x+y*y+z*z))
		s.TargetDist = append(s.TargetDist, math.Sqrt(dx*dx+dy*dy+dz*dz))
	}
	return s
}
