package game

import rl "github.com/gen2brain/raylib-go/raylib"

// HandleInput forwards raylib window events to the driver: resizes, pointer
// motion and touch motion. Call once per frame from the window loop.
func (d *Driver) HandleInput() {
	// Window resize propagation
	d.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if n := rl.GetTouchPointCount(); n > 0 {
		touches := make([][2]float64, n)
		for i := range touches {
			p := rl.GetTouchPosition(int32(i))
			touches[i] = [2]float64{float64(p.X), float64(p.Y)}
		}
		d.TouchMove(touches)
		return
	}

	if delta := rl.GetMouseDelta(); delta.X != 0 || delta.Y != 0 {
		p := rl.GetMousePosition()
		d.PointerMove(float64(p.X), float64(p.Y))
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (d *Driver) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	if err := d.Resize(w, h); err != nil {
		d.logger.Warn("resize ignored", "width", w, "height", h, "error", err)
	}
}
