package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wisp/config"
)

// TuningPanel renders sliders for the simulation parameters with Apply and
// Reset buttons.
type TuningPanel struct {
	renderer *Renderer
	tuning   *Tuning
	x, y     int32
	width    int32
	lastErr  error
}

// NewTuningPanel creates a new tuning panel.
func NewTuningPanel(tuning *Tuning, x, y, width int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		tuning:   tuning,
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (c *TuningPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel. It returns the config to restart with when Apply
// was pressed and the edits are valid.
func (c *TuningPanel) Draw() (*config.Config, bool) {
	r := c.renderer
	th := r.Theme
	padding := th.Padding
	rowHeight := th.LineHeight + th.SliderHeight + 4

	panelHeight := th.LineHeight + 4 + int32(len(Tunables))*rowHeight + th.LineHeight*3 + padding*3
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := c.x + padding
	y := r.DrawSectionHeader(x, c.y+padding, "Tuning")
	inner := float32(c.width - padding*2)

	for _, tu := range Tunables {
		value := c.tuning.Value(tu)
		rl.DrawText(tu.Label, x, y, th.FontSize, th.LabelColor)
		valueText := fmt.Sprintf(tu.Format, value)
		rl.DrawText(valueText, x+int32(inner)-rl.MeasureText(valueText, th.FontSize), y, th.FontSize, th.ValueColor)
		y += th.LineHeight

		newValue := gui.SliderBar(
			rl.Rectangle{X: float32(x), Y: float32(y), Width: inner, Height: float32(th.SliderHeight)},
			"", "",
			value, tu.Min, tu.Max,
		)
		if newValue != value {
			c.tuning.Set(tu, newValue)
		}
		y += th.SliderHeight + 4
	}

	trail := gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y), Width: 14, Height: 14}, "Trail forcing", c.tuning.TrailMode())
	c.tuning.SetTrailMode(trail)
	y += th.LineHeight + 4

	half := (inner - float32(padding)) / 2
	applyText := "Apply"
	if c.tuning.Dirty() {
		applyText = "Apply *"
	}

	var applied *config.Config
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: half, Height: 24}, applyText) {
		cfg, err := c.tuning.Apply()
		c.lastErr = err
		applied = cfg
	}
	if gui.Button(rl.Rectangle{X: float32(x) + half + float32(padding), Y: float32(y), Width: half, Height: 24}, "Reset") {
		c.tuning.Reset()
		c.lastErr = nil
	}
	y += 28

	if c.lastErr != nil {
		r.DrawWrapped(x, y, int32(inner), th.FontSize, c.lastErr.Error(), th.ErrorColor)
	}
	return applied, applied != nil
}
