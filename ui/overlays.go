package ui

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies a toggleable panel.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayHUD    OverlayID = "hud"
	OverlayPerf   OverlayID = "perf"
	OverlayTuning OverlayID = "tuning"
)

// OverlayDescriptor defines a panel that can be toggled from the keyboard.
type OverlayDescriptor struct {
	ID       OverlayID // Unique identifier
	Name     string    // Display name
	Key      int32     // Keyboard key to toggle (0 = no key)
	KeyLabel string    // Key label for display (e.g., "H")
	Default  bool      // Enabled at startup
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	byID    map[OverlayID]OverlayDescriptor
	enabled map[OverlayID]bool
	order   []OverlayID // Maintains insertion order for display
}

// NewOverlayRegistry creates a registry with the standard panels.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.Register(OverlayDescriptor{ID: OverlayHUD, Name: "HUD", Key: rl.KeyH, KeyLabel: "H", Default: true})
	reg.Register(OverlayDescriptor{ID: OverlayPerf, Name: "Perf", Key: rl.KeyP, KeyLabel: "P"})
	reg.Register(OverlayDescriptor{ID: OverlayTuning, Name: "Tuning", Key: rl.KeyT, KeyLabel: "T"})
	return reg
}

// Register adds an overlay. Registering an existing ID replaces it.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	if _, ok := r.byID[desc.ID]; !ok {
		r.order = append(r.order, desc.ID)
	}
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle flips an overlay and returns its new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// IsEnabled reports whether an overlay is shown.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// HandleKeyPress toggles the overlay bound to key. It returns the overlay,
// its new state, and whether any overlay was bound to the key.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, id := range r.order {
		if desc := r.byID[id]; desc.Key != 0 && desc.Key == key {
			return id, r.Toggle(id), true
		}
	}
	return "", false, false
}

// PollKeys toggles overlays for keys pressed this frame.
func (r *OverlayRegistry) PollKeys() {
	for _, id := range r.order {
		if desc := r.byID[id]; desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(id)
		}
	}
}

// Legend returns the key bindings as one line, e.g. "[H] HUD  [P] Perf".
func (r *OverlayRegistry) Legend() string {
	parts := make([]string, 0, len(r.order))
	for _, id := range r.order {
		desc := r.byID[id]
		if desc.KeyLabel == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", desc.KeyLabel, desc.Name))
	}
	return strings.Join(parts, "  ")
}
