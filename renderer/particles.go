package renderer

import (
	"github.com/pthm-cable/wisp/systems"
)

// DefaultLifeEdge is the fraction of the life range over which particles fade.
const DefaultLifeEdge = 0.1

// Vertex is a particle's fixed reference coordinate into the state buffer.
type Vertex struct {
	U, V float32
}

// Vertices builds the N = size² reference coordinates, one per particle.
func Vertices(size int) []Vertex {
	out := make([]Vertex, size*size)
	for i := range out {
		u, v := systems.ReferenceUV(i, size)
		out[i] = Vertex{U: u, V: v}
	}
	return out
}

// LifeAlpha fades a particle in near the top of its life and out toward
// death. Life outside [0,1] is invisible.
func LifeAlpha(life, edge float32) float32 {
	if life <= 0 || life > 1 {
		return 0
	}
	return smoothstep(0, edge, life) * (1 - smoothstep(1-edge, 1, life))
}

func smoothstep(e0, e1, x float32) float32 {
	if e1 <= e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// ParticleField draws the state buffer as additive soft sprites. Its
// vertices are built once per session and never change.
type ParticleField struct {
	vertices  []Vertex
	program   Program
	sprite    Texture
	worldSize float32
	edge      float32

	sprites []Sprite
}

// NewParticleField creates a field for an S×S state buffer.
func NewParticleField(size int, program Program, sprite Texture, worldSize float32) *ParticleField {
	v := Vertices(size)
	return &ParticleField{
		vertices:  v,
		program:   program,
		sprite:    sprite,
		worldSize: worldSize,
		edge:      DefaultLifeEdge,
		sprites:   make([]Sprite, 0, len(v)),
	}
}

// Len returns the number of vertices.
func (f *ParticleField) Len() int {
	return len(f.vertices)
}

// Render samples every vertex's state and submits the visible ones as one
// additive pass. It returns the number of sprites submitted.
func (f *ParticleField) Render(b Backend, state *systems.StateBuffer, time float32) (int, error) {
	f.sprites = f.sprites[:0]
	for _, v := range f.vertices {
		t := state.Sample(v.U, v.V)
		a := LifeAlpha(t.Life, f.edge)
		if a <= 0 {
			continue
		}
		f.sprites = append(f.sprites, Sprite{X: t.X, Y: t.Y, Z: t.Z, Alpha: a})
	}

	f.program.Set("time", time)
	pass := Pass{
		Program:     f.program,
		Texture:     f.sprite,
		Sprites:     f.sprites,
		WorldSize:   f.worldSize,
		Blend:       BlendAdditive,
		DepthWrite:  false,
		Transparent: true,
	}
	if err := b.DrawParticles(&pass); err != nil {
		return 0, err
	}
	return len(f.sprites), nil
}
