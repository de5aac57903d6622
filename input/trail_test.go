package input

import (
	"image/color"
	"testing"
)

func newTestTrail(t *testing.T) *TrailMap {
	t.Helper()
	m, err := NewTrailMap(64, 0.02, 4, 10)
	if err != nil {
		t.Fatalf("NewTrailMap: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func trailThroughCenter(t *testing.T) ForcingState {
	t.Helper()
	tr := NewTracker(20)
	for _, x := range []float64{10, 20, 32, 44, 54} {
		if err := tr.PointerMove(x, 32, 64, 64); err != nil {
			t.Fatal(err)
		}
	}
	return tr.Snapshot()
}

func TestTrailPaintsAtPointer(t *testing.T) {
	m := newTestTrail(t)
	painted, err := m.Update(trailThroughCenter(t), 1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !painted {
		t.Fatal("expected first update to paint")
	}

	if v := m.Sample(54.0/64, 0.5); v < 0.5 {
		t.Errorf("expected bright trail at the head, got %f", v)
	}
	if v := m.Sample(0.05, 0.05); v != 0 {
		t.Errorf("expected dark corner, got %f", v)
	}
}

func TestTrailRepaintsOnlyOnNewInput(t *testing.T) {
	m := newTestTrail(t)
	s := trailThroughCenter(t)
	if _, err := m.Update(s, 1); err != nil {
		t.Fatal(err)
	}
	painted, err := m.Update(s, 1)
	if err != nil {
		t.Fatal(err)
	}
	if painted {
		t.Error("unchanged version should not repaint")
	}
}

func TestTrailDecayIsMonotonicAndBounded(t *testing.T) {
	m := newTestTrail(t)
	s := trailThroughCenter(t)
	if _, err := m.Update(s, 1); err != nil {
		t.Fatal(err)
	}

	prev := append([]float32(nil), m.Intensity()...)
	// (1-0.02)^n < 1/255 once n > 274
	for tick := 0; tick < 300; tick++ {
		if _, err := m.Update(s, 1); err != nil {
			t.Fatal(err)
		}
		for i, v := range m.Intensity() {
			if v > prev[i] {
				t.Fatalf("tick %d: texel %d increased %f -> %f", tick, i, prev[i], v)
			}
			if v < 0 || v > 1 {
				t.Fatalf("tick %d: texel %d out of range: %f", tick, i, v)
			}
		}
		copy(prev, m.Intensity())
	}

	for i, v := range m.Intensity() {
		if v != 0 {
			t.Fatalf("texel %d did not return to background: %f", i, v)
		}
	}
}

func TestTrailZeroDtDoesNotFade(t *testing.T) {
	m := newTestTrail(t)
	if _, err := m.Update(trailThroughCenter(t), 0); err != nil {
		t.Fatal(err)
	}
	before := m.Sample(54.0/64, 0.5)
	if _, err := m.Update(ForcingState{}, 0); err != nil {
		t.Fatal(err)
	}
	if after := m.Sample(54.0/64, 0.5); after != before {
		t.Errorf("zero dt changed intensity %f -> %f", before, after)
	}
}

func TestTrailSampleClampsOutside(t *testing.T) {
	m := newTestTrail(t)
	m.Intensity()[0] = 1
	if v := m.Sample(-3, -3); v != 1 {
		t.Errorf("expected clamped corner sample 1, got %f", v)
	}
}

func TestTrailFillRGBA(t *testing.T) {
	m := newTestTrail(t)
	m.Intensity()[5] = 1
	dst := make([]color.RGBA, m.Size()*m.Size())
	m.FillRGBA(dst)
	if dst[5].A != 255 || dst[0].A != 0 {
		t.Errorf("unexpected overlay alpha: %d, %d", dst[5].A, dst[0].A)
	}
}

func TestNewTrailMapRejects(t *testing.T) {
	if _, err := NewTrailMap(0, 0.02, 1, 1); err == nil {
		t.Error("expected error for zero size")
	}
	if _, err := NewTrailMap(8, 1, 1, 1); err == nil {
		t.Error("expected error for fade 1")
	}
}
