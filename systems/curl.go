package systems

import (
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r3"
)

// curlEpsilon is the finite-difference step for the potential derivatives.
const curlEpsilon = 1e-3

// Offsets decorrelating the three potential components.
var (
	potentialOffsetY = r3.Vec{X: 31.416, Y: -47.853, Z: 12.793}
	potentialOffsetZ = r3.Vec{X: -233.145, Y: -113.408, Z: -185.31}
)

// CurlField is a divergence-free, time-varying vector field built from the
// curl of a 3-component OpenSimplex potential. Safe for concurrent use.
type CurlField struct {
	noise opensimplex.Noise
}

// NewCurlField creates a field for the given seed.
func NewCurlField(seed int64) *CurlField {
	return &CurlField{noise: opensimplex.New(seed)}
}

// At returns the curl of the potential at p and time t.
func (f *CurlField) At(p r3.Vec, t float64) r3.Vec {
	const e = curlEpsilon
	dx := r3.Vec{X: e}
	dy := r3.Vec{Y: e}
	dz := r3.Vec{Z: e}

	px0, px1 := f.potential(r3.Sub(p, dx), t), f.potential(r3.Add(p, dx), t)
	py0, py1 := f.potential(r3.Sub(p, dy), t), f.potential(r3.Add(p, dy), t)
	pz0, pz1 := f.potential(r3.Sub(p, dz), t), f.potential(r3.Add(p, dz), t)

	c := r3.Vec{
		X: (py1.Z - py0.Z) - (pz1.Y - pz0.Y),
		Y: (pz1.X - pz0.X) - (px1.Z - px0.Z),
		Z: (px1.Y - px0.Y) - (py1.X - py0.X),
	}
	return r3.Scale(1/(2*e), c)
}

func (f *CurlField) potential(p r3.Vec, t float64) r3.Vec {
	py := r3.Add(p, potentialOffsetY)
	pz := r3.Add(p, potentialOffsetZ)
	return r3.Vec{
		X: f.noise.Eval4(p.X, p.Y, p.Z, t),
		Y: f.noise.Eval4(py.X, py.Y, py.Z, t),
		Z: f.noise.Eval4(pz.X, pz.Y, pz.Z, t),
	}
}
