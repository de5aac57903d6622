// Shader debug tool - renders a cached program to a PNG file for inspection.
//
// Usage: go run ./cmd/shaderdebug -program simulation -out debug.png
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wisp/renderer"
	"github.com/pthm-cable/wisp/shader"
)

func main() {
	program := flag.String("program", shader.Simulation, "Program to render (simulation|particle)")
	shaderDir := flag.String("shader-dir", "", "Directory holding <program>.vs and .fs (empty = embedded)")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 512, "Render width")
	height := flag.Int("height", 512, "Render height")
	simTime := flag.Float64("time", 0, "Value of the time uniform")
	flag.Parse()

	if err := run(*program, *shaderDir, *outPath, *width, *height, float32(*simTime)); err != nil {
		fmt.Fprintf(os.Stderr, "shaderdebug: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Shader %s rendered to: %s (%dx%d)\n", *program, *outPath, *width, *height)
}

func run(program, shaderDir, outPath string, width, height int, simTime float32) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Fetch and validate through the same cache the app uses
	cache := shader.NewCache(shader.NewFSLoader(shaderDir), logger)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	set, err := cache.Get(ctx, program)
	if err != nil {
		return err
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(width), int32(height), "Shader Debug")
	defer rl.CloseWindow()

	backend := renderer.NewRaylib(logger)
	backend.Resize(width, height)

	prog, err := backend.CompileProgram(set)
	if err != nil {
		return err
	}
	defer prog.Release()

	// Neutral uniforms: pointer at the centre, default tunables
	prog.Set("time", simTime)
	prog.Set("resolution", float32(width), float32(height))
	prog.Set("mouse", 0, 0)
	prog.Set("mouseScale", 1, 1)
	prog.Set("dtRatio", 1)
	prog.Set("speed", 0.025)
	prog.Set("dieSpeed", 0.00025)
	prog.Set("radius", 0.1)
	prog.Set("curlSize", 0.5)
	prog.Set("noiseScale", 0.5)
	prog.Set("attraction", 5)

	// Create render texture
	target := rl.LoadRenderTexture(int32(width), int32(height))
	defer rl.UnloadRenderTexture(target)

	// Render shader to texture
	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	if err := backend.DrawFullscreen(prog); err != nil {
		rl.EndTextureMode()
		return err
	}
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	defer rl.UnloadImage(img)
	rl.ImageFlipVertical(img)

	if !rl.ExportImage(*img, outPath) {
		return fmt.Errorf("exporting %s failed", outPath)
	}
	return nil
}
