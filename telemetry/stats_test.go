package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestDistribution(t *testing.T) {
	values := []float64{1.0, 0.2, 0.9, 0.4, 0.5, 0.6, 0.7, 0.8, 0.3, 0.1}
	mean, p10, p50, p90 := Distribution(values)

	if math.Abs(mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", mean)
	}
	if math.Abs(p10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", p10)
	}
	if math.Abs(p50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", p50)
	}
	if math.Abs(p90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", p90)
	}
}

func TestDistributionEmpty(t *testing.T) {
	mean, p10, p50, p90 := Distribution(nil)
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorFlushResetsWindow(t *testing.T) {
	c := NewCollector()
	c.RecordFrame(FrameRecord{Step: 1, Respawns: 4, Visible: 100, Repaint: true})
	c.RecordFrame(FrameRecord{Step: 2, Respawns: 2, Visible: 80})

	s := c.Flush(2, 0.1, FieldSample{
		Lives:      []float64{0.5, 0.1, 0.9},
		Radii:      []float64{1, 2, 3},
		TargetDist: []float64{0.5, 1.5},
	})
	if s.Frames != 2 || s.Respawns != 6 || s.Repaints != 1 {
		t.Errorf("unexpected counters: %+v", s)
	}
	if s.RespawnRate != 3 || s.VisibleMean != 90 {
		t.Errorf("unexpected rates: respawn %f visible %f", s.RespawnRate, s.VisibleMean)
	}
	if s.LifeP50 != 0.5 || s.RadiusMean != 2 || s.TargetDistMean != 1 {
		t.Errorf("unexpected distributions: %+v", s)
	}

	next := c.Flush(5, 0.2, FieldSample{})
	if next.WindowStart != 2 || next.Frames != 0 || next.Respawns != 0 {
		t.Errorf("window not reset: %+v", next)
	}
}
