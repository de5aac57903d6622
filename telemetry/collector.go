package telemetry

// FieldSample is the particle state sampled at the end of a window.
type FieldSample struct {
	Lives      []float64
	Radii      []float64
	TargetDist []float64
}

// Collector accumulates frame events within a window and produces WindowStats.
type Collector struct {
	windowStart uint64

	// Event counters for current window
	frames   int
	respawns int
	repaints int
	visible  int
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordFrame adds one frame's events to the current window.
func (c *Collector) RecordFrame(r FrameRecord) {
	c.frames++
	c.respawns += r.Respawns
	c.visible += r.Visible
	if r.Repaint {
		c.repaints++
	}
}

// Frames returns the number of frames recorded in the current window.
func (c *Collector) Frames() int {
	return c.frames
}

// Flush produces a WindowStats and resets counters for the next window.
// The sample's slices are sorted in place.
func (c *Collector) Flush(step uint64, simTime float64, sample FieldSample) WindowStats {
	stats := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   step,
		SimTime:     simTime,
		Frames:      c.frames,
		Respawns:    c.respawns,
		Repaints:    c.repaints,
	}
	if c.frames > 0 {
		stats.RespawnRate = float64(c.respawns) / float64(c.frames)
		stats.VisibleMean = float64(c.visible) / float64(c.frames)
	}

	stats.LifeMean, stats.LifeP10, stats.LifeP50, stats.LifeP90 = Distribution(sample.Lives)
	stats.RadiusMean, _, _, stats.RadiusP90 = Distribution(sample.Radii)
	stats.TargetDistMean, stats.TargetDistP10, _, _ = Distribution(sample.TargetDist)

	// Reset for next window
	c.windowStart = step
	c.frames = 0
	c.respawns = 0
	c.repaints = 0
	c.visible = 0

	return stats
}
