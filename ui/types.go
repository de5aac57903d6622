// Package ui draws the heads-up display, the perf panel and the tuning
// panel on top of the particle field.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wisp/config"
)

// Tunable describes one slider bound to a simulation parameter.
type Tunable struct {
	ID     string  // Unique identifier
	Label  string  // Display label
	Min    float32 // Slider range
	Max    float32
	Format string                        // Printf format for the value
	Field  func(*config.Config) *float64 // Config field the slider edits
}

// Tunables are the parameters exposed in the tuning panel, in display order.
var Tunables = []Tunable{
	{ID: "speed", Label: "Speed", Min: 0, Max: 0.1, Format: "%.3f",
		Field: func(c *config.Config) *float64 { return &c.Simulation.Speed }},
	{ID: "die_speed", Label: "Die speed", Min: 0, Max: 0.002, Format: "%.5f",
		Field: func(c *config.Config) *float64 { return &c.Simulation.DieSpeed }},
	{ID: "curl_size", Label: "Curl size", Min: 0, Max: 2, Format: "%.2f",
		Field: func(c *config.Config) *float64 { return &c.Simulation.CurlSize }},
	{ID: "attraction", Label: "Attraction", Min: 0, Max: 20, Format: "%.1f",
		Field: func(c *config.Config) *float64 { return &c.Simulation.Attraction }},
	{ID: "noise_scale", Label: "Noise scale", Min: 0.05, Max: 2, Format: "%.2f",
		Field: func(c *config.Config) *float64 { return &c.Simulation.NoiseScale }},
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	ErrorColor     rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	SliderHeight   int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		ErrorColor:     rl.Color{R: 230, G: 90, B: 90, A: 255},
		Padding:        10,
		LineHeight:     18,
		LabelWidth:     90,
		SliderHeight:   16,
		FontSize:       12,
		HeaderFontSize: 16,
	}
}
