package ui

import (
	"fmt"

	"github.com/pthm-cable/wisp/config"
)

// Tuning holds slider edits until they are applied. Parameters are fixed
// for a session, so applying hands back a config for a fresh driver.
type Tuning struct {
	defaults *config.Config
	applied  *config.Config
	pending  *config.Config
}

// NewTuning starts editing from current, which also becomes the Reset target.
func NewTuning(current *config.Config) *Tuning {
	return &Tuning{
		defaults: current.Clone(),
		applied:  current.Clone(),
		pending:  current.Clone(),
	}
}

// Value returns the pending value of tu.
func (t *Tuning) Value(tu Tunable) float32 {
	return float32(*tu.Field(t.pending))
}

// Set stores v, clamped to the tunable's range. It reports whether the
// pending value changed.
func (t *Tuning) Set(tu Tunable, v float32) bool {
	v = min(max(v, tu.Min), tu.Max)
	f := tu.Field(t.pending)
	if float32(*f) == v {
		return false
	}
	*f = float64(v)
	return true
}

// TrailMode reports whether the pending config uses trail forcing.
func (t *Tuning) TrailMode() bool {
	return t.pending.Pointer.Mode == config.PointerTrail
}

// SetTrailMode switches the pending pointer mode.
func (t *Tuning) SetTrailMode(on bool) {
	if on {
		t.pending.Pointer.Mode = config.PointerTrail
	} else {
		t.pending.Pointer.Mode = config.PointerDirect
	}
}

// Dirty reports whether pending edits differ from the applied config.
func (t *Tuning) Dirty() bool {
	if t.pending.Pointer.Mode != t.applied.Pointer.Mode {
		return true
	}
	for _, tu := range Tunables {
		if *tu.Field(t.pending) != *tu.Field(t.applied) {
			return true
		}
	}
	return false
}

// Apply validates the pending edits and returns the config to restart with.
func (t *Tuning) Apply() (*config.Config, error) {
	if err := t.pending.Validate(); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	t.applied = t.pending.Clone()
	return t.applied.Clone(), nil
}

// Reset discards edits and returns to the startup values.
func (t *Tuning) Reset() {
	t.pending = t.defaults.Clone()
}
