package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"

	"github.com/pthm-cable/wisp/camera"
	"github.com/pthm-cable/wisp/shader"
)

// Software is a CPU backend. It accumulates additive light in a float
// canvas, so overlapping sprites sum and never occlude each other.
type Software struct {
	width, height int
	canvas        []float32 // rgb per pixel
	cam           *camera.Camera

	programs int
	textures int
	frames   int
	closed   bool
}

// NewSoftware creates a software backend with a w×h canvas.
func NewSoftware(w, h int) *Software {
	s := &Software{}
	s.Resize(w, h)
	return s
}

type softwareProgram struct {
	owner    *Software
	name     string
	uniforms map[string][]float32
	released bool
}

func (p *softwareProgram) Name() string { return p.name }

func (p *softwareProgram) Set(name string, values ...float32) {
	if _, ok := p.uniforms[name]; !ok {
		return
	}
	p.uniforms[name] = append(p.uniforms[name][:0], values...)
}

func (p *softwareProgram) Release() {
	if p.released {
		return
	}
	p.released = true
	p.owner.programs--
}

type softwareTexture struct {
	owner    *Software
	w, h     int
	texels   []float32 // premultiplied rgba
	released bool
}

func (t *softwareTexture) Size() (int, int) { return t.w, t.h }

func (t *softwareTexture) Update(pixels []color.RGBA) error {
	if len(pixels) != t.w*t.h {
		return fmt.Errorf("texture update: got %d pixels, want %d", len(pixels), t.w*t.h)
	}
	for i, c := range pixels {
		o := i * 4
		t.texels[o] = float32(c.R) / 255
		t.texels[o+1] = float32(c.G) / 255
		t.texels[o+2] = float32(c.B) / 255
		t.texels[o+3] = float32(c.A) / 255
	}
	return nil
}

func (t *softwareTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.texels = nil
	t.owner.textures--
}

// CompileProgram checks the sources against their uniform contract; the
// software path has nothing else to compile.
func (s *Software) CompileProgram(set *shader.ProgramSet) (Program, error) {
	if err := shader.Validate(set); err != nil {
		return nil, err
	}
	p := &softwareProgram{owner: s, name: set.Name, uniforms: make(map[string][]float32)}
	for name := range shader.Uniforms(set.Vertex) {
		p.uniforms[name] = nil
	}
	for name := range shader.Uniforms(set.Fragment) {
		p.uniforms[name] = nil
	}
	s.programs++
	return p, nil
}

// LoadTexture copies img into a float texture.
func (s *Software) LoadTexture(img image.Image) (Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, &ResourceError{Resource: "texture", Err: fmt.Errorf("empty image")}
	}
	t := &softwareTexture{owner: s, w: b.Dx(), h: b.Dy(), texels: make([]float32, b.Dx()*b.Dy()*4)}
	for y := 0; y < t.h; y++ {
		for x := 0; x < t.w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			o := (y*t.w + x) * 4
			t.texels[o] = float32(r) / 0xffff
			t.texels[o+1] = float32(g) / 0xffff
			t.texels[o+2] = float32(bl) / 0xffff
			t.texels[o+3] = float32(a) / 0xffff
		}
	}
	s.textures++
	return t, nil
}

// BeginFrame clears the canvas to black.
func (s *Software) BeginFrame(cam *camera.Camera) {
	s.cam = cam
	clear(s.canvas)
}

// DrawOverlay stretches tex over the whole canvas additively.
func (s *Software) DrawOverlay(tex Texture) error {
	t, ok := tex.(*softwareTexture)
	if !ok || t.released {
		return fmt.Errorf("software: foreign or released overlay texture")
	}
	for y := 0; y < s.height; y++ {
		ty := y * t.h / s.height
		for x := 0; x < s.width; x++ {
			tx := x * t.w / s.width
			src := t.texels[(ty*t.w+tx)*4:]
			dst := s.canvas[(y*s.width+x)*3:]
			dst[0] += src[0]
			dst[1] += src[1]
			dst[2] += src[2]
		}
	}
	return nil
}

// DrawParticles splats every sprite as a screen-aligned square scaled by
// perspective.
func (s *Software) DrawParticles(pass *Pass) error {
	if s.cam == nil {
		return fmt.Errorf("software: DrawParticles outside a frame")
	}
	t, ok := pass.Texture.(*softwareTexture)
	if !ok || t.released {
		return fmt.Errorf("software: foreign or released sprite texture")
	}
	if pass.Blend != BlendAdditive {
		return fmt.Errorf("software: unsupported blend mode %s", pass.Blend)
	}

	for _, sp := range pass.Sprites {
		sx, sy, scale, ok := s.cam.Project(float64(sp.X), float64(sp.Y), float64(sp.Z))
		if !ok {
			continue
		}
		half := float64(pass.WorldSize) * scale / 2
		s.splat(t, sx, sy, half, sp.Alpha)
	}
	return nil
}

func (s *Software) splat(t *softwareTexture, cx, cy, half float64, alpha float32) {
	if half < 0.5 {
		// sub-pixel sprite: deposit the texture centre
		x, y := int(cx), int(cy)
		if x < 0 || y < 0 || x >= s.width || y >= s.height {
			return
		}
		src := t.texels[((t.h/2)*t.w+t.w/2)*4:]
		s.add(x, y, src, alpha)
		return
	}

	x0 := max(int(math.Floor(cx-half)), 0)
	x1 := min(int(math.Ceil(cx+half)), s.width)
	y0 := max(int(math.Floor(cy-half)), 0)
	y1 := min(int(math.Ceil(cy+half)), s.height)
	size := 2 * half

	for y := y0; y < y1; y++ {
		v := (float64(y) + 0.5 - (cy - half)) / size
		if v < 0 || v >= 1 {
			continue
		}
		ty := int(v * float64(t.h))
		for x := x0; x < x1; x++ {
			u := (float64(x) + 0.5 - (cx - half)) / size
			if u < 0 || u >= 1 {
				continue
			}
			tx := int(u * float64(t.w))
			s.add(x, y, t.texels[(ty*t.w+tx)*4:], alpha)
		}
	}
}

func (s *Software) add(x, y int, src []float32, alpha float32) {
	dst := s.canvas[(y*s.width+x)*3:]
	dst[0] += src[0] * alpha
	dst[1] += src[1] * alpha
	dst[2] += src[2] * alpha
}

// EndFrame finishes the frame.
func (s *Software) EndFrame() error {
	s.cam = nil
	s.frames++
	return nil
}

// Resize reallocates the canvas. Repeating the same size is a no-op.
func (s *Software) Resize(w, h int) {
	if w <= 0 || h <= 0 || (w == s.width && h == s.height) {
		return
	}
	s.width, s.height = w, h
	s.canvas = make([]float32, w*h*3)
}

// Close marks the backend closed.
func (s *Software) Close() error {
	s.closed = true
	return nil
}

// Live reports programs and textures allocated but not yet released.
func (s *Software) Live() (programs, textures int) {
	return s.programs, s.textures
}

// Frames returns the number of completed frames.
func (s *Software) Frames() int {
	return s.frames
}

// Luminance returns the summed canvas energy of pixel (x, y).
func (s *Software) Luminance(x, y int) float32 {
	p := s.canvas[(y*s.width+x)*3:]
	return p[0] + p[1] + p[2]
}

// Image returns the canvas clamped to 8 bits over black.
func (s *Software) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for i := 0; i < s.width*s.height; i++ {
		src := s.canvas[i*3:]
		img.Pix[i*4] = to8(src[0])
		img.Pix[i*4+1] = to8(src[1])
		img.Pix[i*4+2] = to8(src[2])
		img.Pix[i*4+3] = 255
	}
	return img
}

// WritePNG saves the canvas to path.
func (s *Software) WritePNG(path string) error {
	if err := gg.FromImage(s.Image()).SavePNG(path); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
