package renderer

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wisp/camera"
	"github.com/pthm-cable/wisp/shader"
)

// Raylib draws into the current raylib window. The host owns
// BeginDrawing/EndDrawing so UI can be layered after the field.
type Raylib struct {
	cam    rl.Camera3D
	width  int
	height int
	logger *slog.Logger
}

// NewRaylib creates a backend for an already-open window.
func NewRaylib(logger *slog.Logger) *Raylib {
	if logger == nil {
		logger = slog.Default()
	}
	return &Raylib{
		width:  rl.GetScreenWidth(),
		height: rl.GetScreenHeight(),
		logger: logger,
	}
}

type raylibProgram struct {
	name     string
	shader   rl.Shader
	locs     map[string]int32
	released bool
}

func (p *raylibProgram) Name() string { return p.name }

func (p *raylibProgram) Set(name string, values ...float32) {
	loc, ok := p.locs[name]
	if !ok {
		loc = rl.GetShaderLocation(p.shader, name)
		p.locs[name] = loc
	}
	if loc < 0 {
		return
	}
	var kind rl.ShaderUniformDataType
	switch len(values) {
	case 1:
		kind = rl.ShaderUniformFloat
	case 2:
		kind = rl.ShaderUniformVec2
	case 3:
		kind = rl.ShaderUniformVec3
	case 4:
		kind = rl.ShaderUniformVec4
	default:
		return
	}
	rl.SetShaderValue(p.shader, loc, values, kind)
}

func (p *raylibProgram) Release() {
	if p.released {
		return
	}
	p.released = true
	rl.UnloadShader(p.shader)
}

type raylibTexture struct {
	tex      rl.Texture2D
	released bool
}

func (t *raylibTexture) Size() (int, int) { return int(t.tex.Width), int(t.tex.Height) }

func (t *raylibTexture) Update(pixels []color.RGBA) error {
	if len(pixels) != int(t.tex.Width*t.tex.Height) {
		return fmt.Errorf("texture update: got %d pixels, want %d", len(pixels), t.tex.Width*t.tex.Height)
	}
	rl.UpdateTexture(t.tex, pixels)
	return nil
}

func (t *raylibTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	rl.UnloadTexture(t.tex)
}

// CompileProgram compiles set on the GPU. raylib falls back to its default
// shader on compile errors, so every contract uniform must resolve to an
// active location.
func (r *Raylib) CompileProgram(set *shader.ProgramSet) (Program, error) {
	sh := rl.LoadShaderFromMemory(set.Vertex, set.Fragment)
	if sh.ID == 0 {
		return nil, &shader.LoadError{Program: set.Name, Stage: shader.StageCompile, Err: fmt.Errorf("no program id")}
	}

	p := &raylibProgram{name: set.Name, shader: sh, locs: make(map[string]int32)}
	for _, name := range shader.Contracts[set.Name] {
		loc := rl.GetShaderLocation(sh, name)
		if loc < 0 {
			rl.UnloadShader(sh)
			return nil, &shader.LoadError{
				Program: set.Name,
				Stage:   shader.StageCompile,
				Err:     fmt.Errorf("uniform %q inactive after link", name),
			}
		}
		p.locs[name] = loc
	}
	r.logger.Info("shader compiled", "program", set.Name, "id", sh.ID)
	return p, nil
}

// LoadTexture uploads img with bilinear filtering.
func (r *Raylib) LoadTexture(img image.Image) (Texture, error) {
	rimg := rl.NewImageFromImage(img)
	defer rl.UnloadImage(rimg)

	tex := rl.LoadTextureFromImage(rimg)
	if tex.ID == 0 {
		return nil, &ResourceError{Resource: "texture", Err: fmt.Errorf("upload of %dx%d image failed", rimg.Width, rimg.Height)}
	}
	rl.SetTextureFilter(tex, rl.FilterBilinear)
	return &raylibTexture{tex: tex}, nil
}

// BeginFrame clears the window and positions the 3D camera.
func (r *Raylib) BeginFrame(cam *camera.Camera) {
	r.cam = rl.NewCamera3D(
		rl.NewVector3(0, 0, float32(cam.Distance)),
		rl.NewVector3(0, 0, 0),
		rl.NewVector3(0, 1, 0),
		float32(cam.Fov),
		rl.CameraPerspective,
	)
	rl.ClearBackground(rl.Black)
}

// DrawOverlay stretches tex across the window with additive blending.
func (r *Raylib) DrawOverlay(tex Texture) error {
	t, ok := tex.(*raylibTexture)
	if !ok || t.released {
		return fmt.Errorf("raylib: foreign or released overlay texture")
	}
	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(t.tex.Width), Height: float32(t.tex.Height)}
	dstRect := rl.Rectangle{X: 0, Y: 0, Width: float32(r.width), Height: float32(r.height)}

	rl.BeginBlendMode(rl.BlendAdditive)
	rl.DrawTexturePro(t.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
	rl.EndBlendMode()
	return nil
}

// DrawParticles draws the pass as camera-facing billboards. Life alpha
// travels in the vertex colour.
func (r *Raylib) DrawParticles(pass *Pass) error {
	p, ok := pass.Program.(*raylibProgram)
	if !ok || p.released {
		return fmt.Errorf("raylib: foreign or released program")
	}
	t, ok := pass.Texture.(*raylibTexture)
	if !ok || t.released {
		return fmt.Errorf("raylib: foreign or released sprite texture")
	}

	blend := rl.BlendAdditive
	if pass.Blend == BlendAlpha {
		blend = rl.BlendAlpha
	}

	rl.BeginMode3D(r.cam)
	// flush pending geometry so depth-mask state applies only to this pass
	rl.DrawRenderBatchActive()
	if !pass.DepthWrite {
		rl.DisableDepthMask()
	}
	rl.BeginBlendMode(blend)
	rl.BeginShaderMode(p.shader)

	for _, s := range pass.Sprites {
		tint := rl.Fade(rl.White, s.Alpha)
		rl.DrawBillboard(r.cam, t.tex, rl.NewVector3(s.X, s.Y, s.Z), pass.WorldSize, tint)
	}

	rl.EndShaderMode()
	rl.EndBlendMode()
	rl.DrawRenderBatchActive()
	if !pass.DepthWrite {
		rl.EnableDepthMask()
	}
	rl.EndMode3D()
	return nil
}

// DrawFullscreen covers the window with one quad shaded by prog. Debug
// tooling uses it to inspect a program's output without geometry.
func (r *Raylib) DrawFullscreen(prog Program) error {
	p, ok := prog.(*raylibProgram)
	if !ok || p.released {
		return fmt.Errorf("raylib: foreign or released program")
	}
	rl.BeginShaderMode(p.shader)
	rl.DrawRectangle(0, 0, int32(r.width), int32(r.height), rl.White)
	rl.EndShaderMode()
	return nil
}

// EndFrame is a no-op; the host ends drawing.
func (r *Raylib) EndFrame() error {
	return nil
}

// Resize records the new window size for overlay stretching.
func (r *Raylib) Resize(w, h int) {
	r.width, r.height = w, h
}

// Close is a no-op; the host closes the window.
func (r *Raylib) Close() error {
	return nil
}
