package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wisp/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	State        string // driver lifecycle state
	Err          error
	Particles    int
	Visible      int
	Step         uint64
	SimTime      float64
	PointerMode  string
	FPS          int32
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// StatusLine returns the status text and its colour for a driver state.
func StatusLine(state string, err error) (string, rl.Color) {
	switch state {
	case "loading":
		return "Loading shaders...", rl.Yellow
	case "failed":
		if err != nil {
			return "Failed: " + err.Error(), rl.Red
		}
		return "Failed", rl.Red
	case "running":
		return "Running", rl.Green
	}
	return state, rl.Gray
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Visible: %d | Mode: %s", data.Particles, data.Visible, data.PointerMode),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Step: %d | Time: %.2f | FPS: %d", data.Step, data.SimTime, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	status, color := StatusLine(data.State, data.Err)
	h.renderer.DrawWrapped(10, 75, data.ScreenWidth-20, 16, status, color)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase frame timing breakdown and the last
// field stats window.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// phaseOrder lists phases in frame order.
var phaseOrder = []string{
	telemetry.PhaseForcing,
	telemetry.PhaseTrail,
	telemetry.PhaseStep,
	telemetry.PhaseSwap,
	telemetry.PhaseRender,
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, field telemetry.WindowStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s (jitter %s)",
		stats.AvgTickDuration.Round(time.Microsecond), stats.TickJitter.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range phaseOrder {
		avg, ok := stats.PhaseAvg[name]
		if !ok {
			continue
		}
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-8s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}

	if field.Frames == 0 {
		return
	}
	y += 6
	rl.DrawText("Field (last window)", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Life p10/p50/p90: %.2f / %.2f / %.2f", field.LifeP10, field.LifeP50, field.LifeP90), x, y, 12, rl.LightGray)
	y += 14
	rl.DrawText(fmt.Sprintf("Respawns/frame: %.1f  Radius: %.2f", field.RespawnRate, field.RadiusMean), x, y, 12, rl.LightGray)
	y += 14
	rl.DrawText(fmt.Sprintf("Target dist mean: %.2f  p10: %.2f", field.TargetDistMean, field.TargetDistP10), x, y, 12, rl.LightGray)
}
