// Curl field preview tool - interactive visualization of the turbulence
// field with sliders.
//
// Usage: go run ./cmd/curlpreview
package main

import (
	"fmt"
	"image/color"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/wisp/config"
	"github.com/pthm-cable/wisp/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 620
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	gridSize     = 128
)

// FieldParams holds the preview parameters.
type FieldParams struct {
	NoiseScale float32
	CurlSize   float32
	Extent     float32 // half-width of the previewed slice in world units
	SliceZ     float32
	TimeScale  float32
	Seed       int64
}

func defaultParams() FieldParams {
	sim := config.Defaults().Simulation
	return FieldParams{
		NoiseScale: float32(sim.NoiseScale),
		CurlSize:   float32(sim.CurlSize),
		Extent:     3,
		SliceZ:     0,
		TimeScale:  1,
		Seed:       1,
	}
}

type slider struct {
	label    string
	min, max float32
	format   string
	value    *float32
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Curl Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()
	field := systems.NewCurlField(params.Seed)
	grid := make([]r3.Vec, gridSize*gridSize)
	pixels := make([]color.RGBA, gridSize*gridSize)

	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var simTime float32
	animating := false
	needsRegen := true
	var minMag, maxMag, avgMag float64

	sliders := []slider{
		{"Noise scale (spatial frequency)", 0.05, 3, "%.2f", &params.NoiseScale},
		{"Curl size (turbulence amplitude)", 0, 2, "%.2f", &params.CurlSize},
		{"Extent (world half-width)", 0.5, 10, "%.1f", &params.Extent},
		{"Slice Z", -3, 3, "%.2f", &params.SliceZ},
		{"Time scale", 0, 5, "%.2f", &params.TimeScale},
	}

	for !rl.WindowShouldClose() {
		if animating {
			simTime += rl.GetFrameTime() * params.TimeScale
			needsRegen = true
		}

		if needsRegen {
			sampleField(field, grid, params, simTime)
			minMag, maxMag, avgMag = shade(grid, pixels)
			rl.UpdateTexture(texture, pixels)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		if maxMag > 0 {
			rl.DrawText(fmt.Sprintf("|v| min: %.3f  max: %.3f  avg: %.3f", minMag, maxMag, avgMag), 15, statsY, 16, rl.DarkGray)
		}
		rl.DrawText(fmt.Sprintf("Time: %.2f  Seed: %d", simTime, params.Seed), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText("Hue = direction in the slice, brightness = magnitude", 15, statsY+40, 14, rl.Gray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)
		rl.DrawText("Curl Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				"", "",
				*s.value, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, *s.value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if v != *s.value {
				*s.value = v
				needsRegen = true
			}
			panelY += 35
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			simTime = 0
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			field = systems.NewCurlField(params.Seed)
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			field = systems.NewCurlField(params.Seed)
			simTime = 0
			needsRegen = true
		}
		panelY += 55

		yaml := fmt.Sprintf("simulation:\n  noise_scale: %.2f\n  curl_size: %.2f", params.NoiseScale, params.CurlSize)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		rl.DrawText(yaml, int32(panelX), int32(panelY+25), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// sampleField evaluates the turbulence velocity the stepper would apply
// across a z-slice of the world.
func sampleField(field *systems.CurlField, grid []r3.Vec, params FieldParams, t float32) {
	ext := float64(params.Extent)
	for y := 0; y < gridSize; y++ {
		wy := ext - 2*ext*(float64(y)+0.5)/gridSize
		for x := 0; x < gridSize; x++ {
			wx := -ext + 2*ext*(float64(x)+0.5)/gridSize
			pos := r3.Vec{X: wx, Y: wy, Z: float64(params.SliceZ)}
			v := field.At(r3.Scale(float64(params.NoiseScale), pos), float64(t))
			grid[y*gridSize+x] = r3.Scale(float64(params.CurlSize), v)
		}
	}
}

// shade colours each cell by in-slice direction and normalized magnitude.
func shade(grid []r3.Vec, pixels []color.RGBA) (minMag, maxMag, avgMag float64) {
	minMag = math.Inf(1)
	for _, v := range grid {
		m := r3.Norm(v)
		minMag = math.Min(minMag, m)
		maxMag = math.Max(maxMag, m)
		avgMag += m
	}
	avgMag /= float64(len(grid))

	for i, v := range grid {
		value := 0.0
		if maxMag > 0 {
			value = r3.Norm(v) / maxMag
		}
		hue := (math.Atan2(v.Y, v.X) + math.Pi) * 180 / math.Pi
		c := rl.ColorFromHSV(float32(hue), 0.8, float32(value))
		pixels[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	return minMag, maxMag, avgMag
}
