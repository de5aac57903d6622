package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated field statistics for one stats window.
type WindowStats struct {
	WindowStart uint64  `csv:"-"`
	WindowEnd   uint64  `csv:"window_end"`
	SimTime     float64 `csv:"sim_time"`

	// Events during window
	Frames      int     `csv:"frames"`
	Respawns    int     `csv:"respawns"`
	RespawnRate float64 `csv:"respawns_per_frame"`
	Repaints    int     `csv:"trail_repaints"`
	VisibleMean float64 `csv:"visible_mean"`

	// Life distribution (sampled at window end)
	LifeMean float64 `csv:"life_mean"`
	LifeP10  float64 `csv:"life_p10"`
	LifeP50  float64 `csv:"life_p50"`
	LifeP90  float64 `csv:"life_p90"`

	// Distance from the origin
	RadiusMean float64 `csv:"radius_mean"`
	RadiusP90  float64 `csv:"radius_p90"`

	// Distance from the forcing target
	TargetDistMean float64 `csv:"target_dist_mean"`
	TargetDistP10  float64 `csv:"target_dist_p10"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution calculates mean and percentiles. values is sorted in place.
func Distribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sort.Float64s(values)
	return mean, Percentile(values, 0.10), Percentile(values, 0.50), Percentile(values, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStart),
		slog.Uint64("window_end", s.WindowEnd),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("frames", s.Frames),
		slog.Int("respawns", s.Respawns),
		slog.Float64("respawns_per_frame", s.RespawnRate),
		slog.Int("trail_repaints", s.Repaints),
		slog.Float64("visible_mean", s.VisibleMean),
		slog.Float64("life_mean", s.LifeMean),
		slog.Float64("life_p10", s.LifeP10),
		slog.Float64("life_p50", s.LifeP50),
		slog.Float64("life_p90", s.LifeP90),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("radius_p90", s.RadiusP90),
		slog.Float64("target_dist_mean", s.TargetDistMean),
		slog.Float64("target_dist_p10", s.TargetDistP10),
	)
}

// LogStats logs the window stats.
func (s WindowStats) LogStats(logger *slog.Logger) {
	logger.Info("stats", "window", s)
}
