// Package camera provides the perspective camera and viewport adapter.
package camera

import (
	"fmt"
	"math"
)

// Camera is a perspective camera on the +Z axis looking at the origin.
type Camera struct {
	// Vertical field of view in degrees
	Fov float64

	// Clip planes
	Near, Far float64

	// Distance from the origin along +Z
	Distance float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64
}

// ViewportError reports a resize that cannot be applied.
type ViewportError struct {
	W, H float64
}

func (e *ViewportError) Error() string {
	return fmt.Sprintf("invalid viewport %gx%g", e.W, e.H)
}

// New creates a camera for the given viewport.
func New(fov, near, far, distance, viewportW, viewportH float64) (*Camera, error) {
	c := &Camera{Fov: fov, Near: near, Far: far, Distance: distance}
	if err := c.Resize(viewportW, viewportH); err != nil {
		return nil, err
	}
	return c, nil
}

// Resize updates the viewport. Repeating the same size is a no-op and
// an invalid size leaves the camera unchanged.
func (c *Camera) Resize(w, h float64) error {
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return &ViewportError{W: w, H: h}
	}
	if w == c.ViewportW && h == c.ViewportH {
		return nil
	}
	c.ViewportW = w
	c.ViewportH = h
	return nil
}

// Aspect returns width over height.
func (c *Camera) Aspect() float64 {
	return c.ViewportW / c.ViewportH
}

// VisibleDimensions returns the world extent visible at the focal plane
// through the origin.
func (c *Camera) VisibleDimensions() (w, h float64) {
	h = 2 * math.Tan(c.Fov*math.Pi/360) * c.Distance
	w = h * c.Aspect()
	return w, h
}

// MouseScale maps normalized pointer coordinates to world units at the focal plane.
func (c *Camera) MouseScale() (sx, sy float64) {
	w, h := c.VisibleDimensions()
	return w / 2, h / 2
}

// Project maps a world position to screen pixels. scale is the number of
// pixels per world unit at that depth; ok is false for points outside the
// clip range.
func (c *Camera) Project(x, y, z float64) (sx, sy, scale float64, ok bool) {
	depth := c.Distance - z
	if depth < c.Near || depth > c.Far {
		return 0, 0, 0, false
	}
	focal := c.ViewportH / (2 * math.Tan(c.Fov*math.Pi/360))
	scale = focal / depth
	sx = c.ViewportW/2 + x*scale
	sy = c.ViewportH/2 - y*scale
	return sx, sy, scale, true
}

// Normalize converts a screen position to [-1,1] coordinates with +y up.
func (c *Camera) Normalize(sx, sy float64) (nx, ny float64) {
	return sx/c.ViewportW*2 - 1, -(sy/c.ViewportH)*2 + 1
}
