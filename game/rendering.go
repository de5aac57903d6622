package game

import (
	"fmt"

	"github.com/pthm-cable/wisp/systems"
)

// render draws the current state: trail overlay first, then the additive
// particle pass. It returns the number of visible particles.
func (d *Driver) render(t systems.Tick) (int, error) {
	d.backend.BeginFrame(d.camera)

	if d.res.overlay != nil {
		if err := d.backend.DrawOverlay(d.res.overlay); err != nil {
			return 0, fmt.Errorf("drawing trail overlay: %w", err)
		}
	}

	visible, err := d.field.Render(d.backend, d.store.Current(), float32(t.SimTime))
	if err != nil {
		return 0, fmt.Errorf("drawing particles: %w", err)
	}

	if err := d.backend.EndFrame(); err != nil {
		return 0, fmt.Errorf("ending frame: %w", err)
	}
	return visible, nil
}
