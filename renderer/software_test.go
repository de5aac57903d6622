package renderer

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/wisp/shader"
)

func TestSpriteImageFalloff(t *testing.T) {
	img, err := SpriteImage(64)
	if err != nil {
		t.Fatal(err)
	}
	_, _, _, center := img.At(32, 32).RGBA()
	_, _, _, corner := img.At(0, 0).RGBA()
	_, _, _, mid := img.At(32+16, 32).RGBA()
	if center < 0xf000 {
		t.Errorf("expected opaque centre, got alpha %d", center)
	}
	if corner != 0 {
		t.Errorf("expected transparent corner, got alpha %d", corner)
	}
	if !(mid < center && mid > 0) {
		t.Errorf("expected falloff between centre (%d) and edge, got %d", center, mid)
	}
}

func TestSoftwareReleaseAccounting(t *testing.T) {
	b := NewSoftware(16, 16)
	set := &shader.ProgramSet{Name: shader.Particle, Vertex: "void main(){}", Fragment: "uniform float time;"}
	p, err := b.CompileProgram(set)
	if err != nil {
		t.Fatal(err)
	}
	tex, err := b.LoadTexture(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatal(err)
	}

	if progs, texs := b.Live(); progs != 1 || texs != 1 {
		t.Fatalf("expected 1/1 live, got %d/%d", progs, texs)
	}
	p.Release()
	p.Release()
	tex.Release()
	tex.Release()
	if progs, texs := b.Live(); progs != 0 || texs != 0 {
		t.Errorf("expected nothing live after double release, got %d/%d", progs, texs)
	}
}

func TestSoftwareCompileRejectsContractViolation(t *testing.T) {
	b := NewSoftware(16, 16)
	_, err := b.CompileProgram(&shader.ProgramSet{Name: shader.Simulation, Vertex: "x", Fragment: "y"})
	var le *shader.LoadError
	if !errors.As(err, &le) {
		t.Errorf("expected LoadError, got %v", err)
	}
}

func TestSoftwareLoadTextureRejectsEmpty(t *testing.T) {
	b := NewSoftware(16, 16)
	_, err := b.LoadTexture(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	var re *ResourceError
	if !errors.As(err, &re) {
		t.Errorf("expected ResourceError, got %v", err)
	}
}

func TestSoftwareOverlayAndSnapshot(t *testing.T) {
	b := NewSoftware(8, 8)
	tex, err := b.LoadTexture(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err != nil {
		t.Fatal(err)
	}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if err := tex.Update([]color.RGBA{white, {}, {}, {}}); err != nil {
		t.Fatal(err)
	}
	if err := tex.Update(make([]color.RGBA, 3)); err == nil {
		t.Error("expected error for short pixel slice")
	}

	b.BeginFrame(nil)
	if err := b.DrawOverlay(tex); err != nil {
		t.Fatal(err)
	}
	img := b.Image()
	if img.RGBAAt(0, 0) != white {
		t.Errorf("expected overlay top-left white, got %v", img.RGBAAt(0, 0))
	}
	if c := img.RGBAAt(7, 7); c.R != 0 || c.A != 255 {
		t.Errorf("expected opaque black bottom-right, got %v", c)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := b.WritePNG(path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	saved, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if r, g, bl, _ := saved.At(0, 0).RGBA(); r>>8 != 255 || g>>8 != 255 || bl>>8 != 255 {
		t.Errorf("expected saved top-left white, got %v", saved.At(0, 0))
	}
	if r, _, _, a := saved.At(7, 7).RGBA(); r != 0 || a>>8 != 255 {
		t.Errorf("expected saved bottom-right opaque black, got %v", saved.At(7, 7))
	}
}

func TestSoftwareResizeIdempotent(t *testing.T) {
	b := NewSoftware(8, 8)
	b.canvas[0] = 1
	b.Resize(8, 8)
	if b.canvas[0] != 1 {
		t.Error("same-size resize should keep the canvas")
	}
	b.Resize(16, 4)
	if len(b.canvas) != 16*4*3 {
		t.Errorf("expected resized canvas, got %d floats", len(b.canvas))
	}
}
