// Package renderer draws the particle field through a pluggable backend:
// raylib for the interactive window and a software rasterizer for headless
// runs and tests.
package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pthm-cable/wisp/camera"
	"github.com/pthm-cable/wisp/shader"
)

// Program is a compiled shader program owned by a backend.
type Program interface {
	Name() string
	// Set assigns a float, vec2, vec3 or vec4 uniform by length of values.
	// Unknown names are ignored.
	Set(name string, values ...float32)
	Release()
}

// Texture is an image resident on a backend.
type Texture interface {
	Size() (w, h int)
	// Update replaces the texel data; pixels must cover the whole texture.
	Update(pixels []color.RGBA) error
	Release()
}

// Backend owns the graphics context. All calls happen on the tick goroutine.
type Backend interface {
	CompileProgram(set *shader.ProgramSet) (Program, error)
	LoadTexture(img image.Image) (Texture, error)

	BeginFrame(cam *camera.Camera)
	DrawOverlay(tex Texture) error
	DrawParticles(pass *Pass) error
	EndFrame() error

	Resize(w, h int)
	Close() error
}

// BlendMode selects how fragments combine with the frame.
type BlendMode int

const (
	// BlendAdditive sums source colour onto the destination.
	BlendAdditive BlendMode = iota
	// BlendAlpha is conventional over-compositing.
	BlendAlpha
)

func (m BlendMode) String() string {
	switch m {
	case BlendAdditive:
		return "additive"
	case BlendAlpha:
		return "alpha"
	}
	return fmt.Sprintf("BlendMode(%d)", int(m))
}

// Sprite is one particle billboard in world space.
type Sprite struct {
	X, Y, Z float32
	Alpha   float32
}

// Pass is a batch of billboards drawn with one program and texture.
type Pass struct {
	Program     Program
	Texture     Texture
	Sprites     []Sprite
	WorldSize   float32 // billboard edge length in world units
	Blend       BlendMode
	DepthWrite  bool
	Transparent bool
}

// ResourceError reports a texture or program the backend could not allocate.
// It is fatal for the session.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %s: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
