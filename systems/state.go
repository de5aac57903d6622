package systems

import (
	"fmt"
	"math"
	"math/rand"
)

// Texel is one particle's state: position and remaining life.
type Texel struct {
	X, Y, Z float32
	Life    float32
}

// StateBuffer is an S×S image of particle state, four float32 channels per
// texel (x, y, z, life), row-major.
type StateBuffer struct {
	Size   int
	Texels []float32
}

// NewStateBuffer allocates a zeroed size×size buffer.
func NewStateBuffer(size int) *StateBuffer {
	return &StateBuffer{
		Size:   size,
		Texels: make([]float32, size*size*4),
	}
}

// Len returns the number of particles the buffer holds.
func (b *StateBuffer) Len() int {
	return b.Size * b.Size
}

// At returns the state of particle i.
func (b *StateBuffer) At(i int) Texel {
	o := i * 4
	t := b.Texels[o : o+4 : o+4]
	return Texel{X: t[0], Y: t[1], Z: t[2], Life: t[3]}
}

// Set writes the state of particle i.
func (b *StateBuffer) Set(i int, t Texel) {
	o := i * 4
	s := b.Texels[o : o+4 : o+4]
	s[0], s[1], s[2], s[3] = t.X, t.Y, t.Z, t.Life
}

// Sample returns the texel nearest to the reference coordinate (u, v).
// Coordinates outside [0,1) clamp to the edge.
func (b *StateBuffer) Sample(u, v float32) Texel {
	s := b.Size
	x := int(math.Floor(float64(u)*float64(s) + 0.5))
	y := int(math.Floor(float64(v)*float64(s) + 0.5))
	x = min(max(x, 0), s-1)
	y = min(max(y, 0), s-1)
	return b.At(y*s + x)
}

// ReferenceUV returns the fixed lookup coordinate of particle i in an S×S buffer.
func ReferenceUV(i, size int) (u, v float32) {
	return float32(i%size) / float32(size), float32(i/size) / float32(size)
}

// StateStore owns the two ping-pong buffers. Exactly one is current; the other
// is the write target of the next step.
type StateStore struct {
	buffers [2]*StateBuffer
	current int
}

// NewStateStore allocates both buffers and seeds the first current one.
// The other buffer is scratch until the first step writes it.
func NewStateStore(size int, seed ShellSeed, rng *rand.Rand) (*StateStore, error) {
	if size <= 0 {
		return nil, fmt.Errorf("state store: invalid size %d", size)
	}
	s := &StateStore{
		buffers: [2]*StateBuffer{NewStateBuffer(size), NewStateBuffer(size)},
	}
	a := s.buffers[0]
	for i := 0; i < a.Len(); i++ {
		a.Set(i, seed.Sample(rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()))
	}
	return s, nil
}

// Size returns S.
func (s *StateStore) Size() int {
	return s.buffers[0].Size
}

// Current returns the buffer holding the latest state.
func (s *StateStore) Current() *StateBuffer {
	return s.buffers[s.current]
}

// Next returns the buffer the next step writes.
func (s *StateStore) Next() *StateBuffer {
	return s.buffers[1-s.current]
}

// Swap makes the freshly written buffer current.
func (s *StateStore) Swap() {
	s.current = 1 - s.current
}
