package systems

import "math"

// ShellSeed distributes particles in a spherical shell between Inner and Outer
// with a fresh life in [0,1).
type ShellSeed struct {
	Inner, Outer float64
}

// Sample maps four uniforms in [0,1) to a particle state.
// The polar angle covers [-π/2, π/2) and the azimuth [0, 2π).
func (s ShellSeed) Sample(ur, uphi, utheta, ulife float64) Texel {
	r := s.Inner + ur*(s.Outer-s.Inner)
	phi := (uphi - 0.5) * math.Pi
	theta := utheta * 2 * math.Pi

	cosPhi := math.Cos(phi)
	return Texel{
		X:    float32(r * math.Cos(theta) * cosPhi),
		Y:    float32(r * math.Sin(phi)),
		Z:    float32(r * math.Sin(theta) * cosPhi),
		Life: float32(ulife),
	}
}

// hashUniform returns a uniform in [0,1) that depends only on its inputs,
// so respawns are reproducible regardless of how particles are partitioned.
func hashUniform(seed, particle, step, k uint64) float64 {
	h := splitmix64(seed ^ splitmix64(particle^splitmix64(step^splitmix64(k))))
	return float64(h>>11) / (1 << 53)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
