package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func testParams() Params {
	return Params{
		Speed:      0.025,
		DieSpeed:   0.00025,
		Radius:     0.1,
		CurlSize:   0.5,
		Attraction: 5,
		NoiseScale: 0.5,
		Seed:       ShellSeed{Inner: 1, Outer: 2},
	}
}

func directForcing() Forcing {
	return Forcing{MouseScale: [2]float64{3.8, 2.1}}
}

func TestStepLifeAndApproach(t *testing.T) {
	params := testParams()
	params.CurlSize = 0

	store, _ := NewStateStore(8, params.Seed, rand.New(rand.NewSource(3)))
	// keep every particle well above the respawn threshold
	cur := store.Current()
	for i := 0; i < cur.Len(); i++ {
		p := cur.At(i)
		p.Life = 0.5
		cur.Set(i, p)
	}

	s := NewStepper(params, 3, 1)
	defer s.Close()

	f := directForcing()
	clock := NewClock(16.6667, 50, 0.05)
	tick := clock.AdvanceBy(16.6667)

	if _, err := s.Step(store.Current(), store.Next(), f, tick); err != nil {
		t.Fatalf("Step: %v", err)
	}

	target := f.Target()
	before, after := store.Current(), store.Next()
	for i := 0; i < before.Len(); i++ {
		b, a := before.At(i), after.At(i)
		if math.Abs(float64(a.Life)-(0.5-params.DieSpeed)) > 1e-6 {
			t.Errorf("particle %d: expected life %f, got %f", i, 0.5-params.DieSpeed, a.Life)
		}
		db := r3.Norm(r3.Sub(target, r3.Vec{X: float64(b.X), Y: float64(b.Y), Z: float64(b.Z)}))
		da := r3.Norm(r3.Sub(target, r3.Vec{X: float64(a.X), Y: float64(a.Y), Z: float64(a.Z)}))
		if da >= db {
			t.Errorf("particle %d did not approach target: %f -> %f", i, db, da)
		}
	}
}

func TestStepNeverOvershootsTarget(t *testing.T) {
	params := testParams()
	params.CurlSize = 0
	params.Attraction = 1000

	cur, next := NewStateBuffer(1), NewStateBuffer(1)
	cur.Set(0, Texel{X: 0.05, Life: 1})

	s := NewStepper(params, 1, 1)
	defer s.Close()

	tick := Tick{DtMs: 50, DtRatio: 3, Step: 1}
	if _, err := s.Step(cur, next, directForcing(), tick); err != nil {
		t.Fatal(err)
	}
	if x := next.At(0).X; x < 0 || x > 0.05 {
		t.Errorf("expected particle to land between target and start, got x=%f", x)
	}
}

func TestStepZeroDtIsIdentity(t *testing.T) {
	params := testParams()
	store, _ := NewStateStore(8, params.Seed, rand.New(rand.NewSource(9)))

	s := NewStepper(params, 9, 2)
	defer s.Close()

	tick := NewClock(16.6667, 50, 0.05).AdvanceBy(0)
	if _, err := s.Step(store.Current(), store.Next(), directForcing(), tick); err != nil {
		t.Fatal(err)
	}
	for i, v := range store.Current().Texels {
		if store.Next().Texels[i] != v {
			t.Fatalf("component %d changed under zero dt: %f -> %f", i, v, store.Next().Texels[i])
		}
	}
}

func TestStepRespawnsExpiredParticles(t *testing.T) {
	params := testParams()
	cur, next := NewStateBuffer(4), NewStateBuffer(4)
	for i := 0; i < cur.Len(); i++ {
		cur.Set(i, Texel{X: 1, Life: 0.0001})
	}

	s := NewStepper(params, 5, 1)
	defer s.Close()

	stats, err := s.Step(cur, next, directForcing(), Tick{DtMs: 16.6667, DtRatio: 1, Step: 1})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Respawns != cur.Len() {
		t.Errorf("expected %d respawns, got %d", cur.Len(), stats.Respawns)
	}
	for i := 0; i < next.Len(); i++ {
		p := next.At(i)
		if p.Life < 0 || p.Life > 1 {
			t.Errorf("particle %d respawned with life %f", i, p.Life)
		}
		r := math.Sqrt(float64(p.X*p.X + p.Y*p.Y + p.Z*p.Z))
		if r < 1-1e-5 || r > 2+1e-5 {
			t.Errorf("particle %d respawned at radius %f", i, r)
		}
	}
}

func TestStepNoNegativeLifeOverManySteps(t *testing.T) {
	params := testParams()
	params.DieSpeed = 0.05

	store, _ := NewStateStore(8, params.Seed, rand.New(rand.NewSource(11)))
	s := NewStepper(params, 11, 4)
	defer s.Close()

	clock := NewClock(16.6667, 50, 0.05)
	for step := 0; step < 200; step++ {
		tick := clock.AdvanceBy(50)
		if _, err := s.Step(store.Current(), store.Next(), directForcing(), tick); err != nil {
			t.Fatal(err)
		}
		store.Swap()
		cur := store.Current()
		for i := 0; i < cur.Len(); i++ {
			if l := cur.At(i).Life; l < 0 {
				t.Fatalf("step %d: particle %d has negative life %f", step, i, l)
			}
		}
	}
}

func TestStepDeterministicAcrossWorkerCounts(t *testing.T) {
	params := testParams()
	params.DieSpeed = 0.01

	run := func(workers int) []float32 {
		store, _ := NewStateStore(32, params.Seed, rand.New(rand.NewSource(21)))
		s := NewStepper(params, 21, workers)
		defer s.Close()
		clock := NewClock(16.6667, 50, 0.05)
		for i := 0; i < 20; i++ {
			tick := clock.AdvanceBy(33)
			if _, err := s.Step(store.Current(), store.Next(), directForcing(), tick); err != nil {
				t.Fatal(err)
			}
			store.Swap()
		}
		return store.Current().Texels
	}

	serial, parallel := run(1), run(8)
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("component %d differs between 1 and 8 workers: %f vs %f", i, serial[i], parallel[i])
		}
	}
}

func TestStepRejectsAliasedBuffers(t *testing.T) {
	s := NewStepper(testParams(), 1, 1)
	defer s.Close()
	buf := NewStateBuffer(2)
	if _, err := s.Step(buf, buf, directForcing(), Tick{}); err == nil {
		t.Error("expected error when current and next alias")
	}
}

type constField float64

func (c constField) Sample(u, v float64) float64 { return float64(c) }

func TestStepTrailFieldGatesAttraction(t *testing.T) {
	params := testParams()
	params.CurlSize = 0

	cur, next := NewStateBuffer(1), NewStateBuffer(1)
	cur.Set(0, Texel{X: 1, Life: 1})

	s := NewStepper(params, 1, 1)
	defer s.Close()

	f := directForcing()
	f.Field = constField(0)
	if _, err := s.Step(cur, next, f, Tick{DtRatio: 1, Step: 1}); err != nil {
		t.Fatal(err)
	}
	if next.At(0).X != 1 {
		t.Errorf("dark field should not attract, x moved to %f", next.At(0).X)
	}

	f.Field = constField(1)
	if _, err := s.Step(cur, next, f, Tick{DtRatio: 1, Step: 2}); err != nil {
		t.Fatal(err)
	}
	if next.At(0).X >= 1 {
		t.Errorf("bright field should attract, x stayed at %f", next.At(0).X)
	}
}

func TestCurlFieldIsDivergenceFree(t *testing.T) {
	f := NewCurlField(4)
	const h = 1e-2
	points := []r3.Vec{{X: 0.3, Y: -0.2, Z: 0.7}, {X: 1.5, Y: 0.25, Z: -1}, {X: -2, Y: 2, Z: 0}}
	for _, p := range points {
		div := (f.At(r3.Add(p, r3.Vec{X: h}), 0.1).X - f.At(r3.Sub(p, r3.Vec{X: h}), 0.1).X +
			f.At(r3.Add(p, r3.Vec{Y: h}), 0.1).Y - f.At(r3.Sub(p, r3.Vec{Y: h}), 0.1).Y +
			f.At(r3.Add(p, r3.Vec{Z: h}), 0.1).Z - f.At(r3.Sub(p, r3.Vec{Z: h}), 0.1).Z) / (2 * h)
		mag := r3.Norm(f.At(p, 0.1))
		if math.Abs(div) > 0.05*(1+mag) {
			t.Errorf("divergence at %v is %f (|curl|=%f)", p, div, mag)
		}
	}
}

func BenchmarkStep64(b *testing.B) {
	params := testParams()
	store, _ := NewStateStore(64, params.Seed, rand.New(rand.NewSource(1)))
	s := NewStepper(params, 1, 0)
	defer s.Close()
	clock := NewClock(16.6667, 50, 0.05)
	f := directForcing()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tick := clock.AdvanceBy(16.6667)
		if _, err := s.Step(store.Current(), store.Next(), f, tick); err != nil {
			b.Fatal(err)
		}
		store.Swap()
	}
}
