package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Params are the per-session stepper tunables.
type Params struct {
	Speed      float64
	DieSpeed   float64
	Radius     float64 // near-field clamp for attraction
	CurlSize   float64 // turbulence amplitude; 0 disables turbulence
	Attraction float64
	NoiseScale float64
	Excite     float64 // turbulence boost where the trail field is bright
	Seed       ShellSeed
}

// FieldSampler returns a forcing weight in [0,1] at a normalized field coordinate.
type FieldSampler interface {
	Sample(u, v float64) float64
}

// Forcing is the pointer-derived input to one step.
type Forcing struct {
	Mouse      [2]float64 // normalized device coordinates in [-1,1]
	MouseScale [2]float64 // half the visible world extent at the focal plane
	Field      FieldSampler
}

// Target returns the world-space attraction point.
func (f Forcing) Target() r3.Vec {
	return r3.Vec{X: f.Mouse[0] * f.MouseScale[0], Y: f.Mouse[1] * f.MouseScale[1]}
}

// fieldUV projects a world position onto the forcing field's coordinates.
func (f Forcing) fieldUV(p r3.Vec) (u, v float64) {
	u = (p.X/f.MouseScale[0] + 1) / 2
	v = (1 - p.Y/f.MouseScale[1]) / 2
	return u, v
}

// StepStats summarizes one step.
type StepStats struct {
	Respawns int
}

// Stepper advances particle state one tick at a time. Each particle's next
// state depends only on its own current state, the forcing and the tick, so
// the result does not depend on how work is split across workers.
type Stepper struct {
	params Params
	curl   *CurlField
	seed   uint64
	pool   *workerPool

	respawns []int
}

// NewStepper creates a stepper. workers <= 0 uses GOMAXPROCS.
func NewStepper(params Params, seed int64, workers int) *Stepper {
	pool := newWorkerPool(workers)
	return &Stepper{
		params:   params,
		curl:     NewCurlField(seed),
		seed:     uint64(seed),
		pool:     pool,
		respawns: make([]int, pool.numWorkers),
	}
}

// Step reads cur and writes the next state of every particle into next.
func (s *Stepper) Step(cur, next *StateBuffer, f Forcing, t Tick) (StepStats, error) {
	if cur == next {
		return StepStats{}, fmt.Errorf("step: current and next buffers are the same")
	}
	if cur.Size != next.Size {
		return StepStats{}, fmt.Errorf("step: buffer sizes differ (%d vs %d)", cur.Size, next.Size)
	}

	clear(s.respawns)
	s.pool.run(cur.Len(), func(start, end, slot int) {
		s.respawns[slot] += s.stepRange(cur, next, f, t, start, end)
	})

	var stats StepStats
	for _, n := range s.respawns {
		stats.Respawns += n
	}
	return stats, nil
}

// Close stops the worker pool.
func (s *Stepper) Close() {
	s.pool.stop()
}

func (s *Stepper) stepRange(cur, next *StateBuffer, f Forcing, t Tick, start, end int) int {
	p := &s.params
	target := f.Target()
	move := p.Speed * t.DtRatio
	respawns := 0

	for i := start; i < end; i++ {
		texel := cur.At(i)

		life := float64(texel.Life) - p.DieSpeed*t.DtRatio
		if life < 0 {
			next.Set(i, s.respawn(i, t.Step))
			respawns++
			continue
		}

		pos := r3.Vec{X: float64(texel.X), Y: float64(texel.Y), Z: float64(texel.Z)}

		weight, turbulence := 1.0, p.CurlSize
		if f.Field != nil {
			weight = clampUnit(f.Field.Sample(f.fieldUV(pos)))
			turbulence *= 1 + p.Excite*weight
		}

		var delta r3.Vec
		if turbulence != 0 {
			vel := r3.Scale(turbulence, s.curl.At(r3.Scale(p.NoiseScale, pos), t.SimTime))
			delta = r3.Scale(move, vel)
		}

		toTarget := r3.Sub(target, pos)
		if d := r3.Norm(toTarget); d > 0 && p.Attraction != 0 && weight > 0 {
			pull := move * p.Attraction * weight / math.Max(d, p.Radius)
			// attraction alone never carries a particle past the target
			pull = math.Min(pull, d)
			delta = r3.Add(delta, r3.Scale(pull/d, toTarget))
		}
		pos = r3.Add(pos, delta)

		next.Set(i, Texel{
			X:    float32(pos.X),
			Y:    float32(pos.Y),
			Z:    float32(pos.Z),
			Life: float32(life),
		})
	}
	return respawns
}

func (s *Stepper) respawn(i int, step uint64) Texel {
	idx := uint64(i)
	return s.params.Seed.Sample(
		hashUniform(s.seed, idx, step, 0),
		hashUniform(s.seed, idx, step, 1),
		hashUniform(s.seed, idx, step, 2),
		hashUniform(s.seed, idx, step, 3),
	)
}

func clampUnit(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
