package ui

import (
	"errors"
	"strings"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wisp/config"
)

func tunable(t *testing.T, id string) Tunable {
	t.Helper()
	for _, tu := range Tunables {
		if tu.ID == id {
			return tu
		}
	}
	t.Fatalf("no tunable %q", id)
	return Tunable{}
}

func TestTuningSetClampsAndMarksDirty(t *testing.T) {
	tn := NewTuning(config.Defaults())
	curl := tunable(t, "curl_size")

	if tn.Dirty() {
		t.Fatal("fresh tuning should not be dirty")
	}
	if !tn.Set(curl, 99) {
		t.Fatal("expected change")
	}
	if got := tn.Value(curl); got != curl.Max {
		t.Errorf("expected clamp to %f, got %f", curl.Max, got)
	}
	if !tn.Dirty() {
		t.Error("expected dirty after edit")
	}
	if tn.Set(curl, curl.Max) {
		t.Error("setting the same value should report no change")
	}
}

func TestTuningApplyAndReset(t *testing.T) {
	start := config.Defaults()
	tn := NewTuning(start)
	attraction := tunable(t, "attraction")

	tn.Set(attraction, 12)
	tn.SetTrailMode(true)
	cfg, err := tn.Apply()
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Simulation.Attraction != 12 || !cfg.Derived.TrailMode {
		t.Errorf("applied config missing edits: attraction %f trail %v", cfg.Simulation.Attraction, cfg.Derived.TrailMode)
	}
	if tn.Dirty() {
		t.Error("expected clean after apply")
	}
	if start.Simulation.Attraction == 12 {
		t.Error("apply must not mutate the starting config")
	}

	tn.Reset()
	if tn.Value(attraction) != float32(start.Simulation.Attraction) || tn.TrailMode() {
		t.Error("reset should restore startup values")
	}
	if !tn.Dirty() {
		t.Error("reset edits differ from the applied config")
	}
}

func TestTuningApplyRejectsInvalid(t *testing.T) {
	cfg := config.Defaults()
	cfg.Simulation.Radius = 0
	tn := NewTuning(cfg)
	if _, err := tn.Apply(); err == nil {
		t.Error("expected validation error")
	}
}

func TestOverlayRegistry(t *testing.T) {
	reg := NewOverlayRegistry()
	if !reg.IsEnabled(OverlayHUD) || reg.IsEnabled(OverlayTuning) {
		t.Fatal("unexpected default overlay state")
	}

	id, on, ok := reg.HandleKeyPress(rl.KeyT)
	if !ok || id != OverlayTuning || !on {
		t.Errorf("expected tuning toggled on, got %q %v %v", id, on, ok)
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key should not match")
	}
	if legend := reg.Legend(); !strings.Contains(legend, "[T] Tuning") {
		t.Errorf("legend missing tuning binding: %q", legend)
	}
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		state string
		err   error
		want  string
	}{
		{"loading", nil, "Loading shaders..."},
		{"running", nil, "Running"},
		{"failed", errors.New("shader particle: fetch: 404"), "Failed: shader particle: fetch: 404"},
		{"failed", nil, "Failed"},
	}
	for _, tt := range tests {
		if got, _ := StatusLine(tt.state, tt.err); got != tt.want {
			t.Errorf("StatusLine(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	measure := func(s string) int32 { return int32(len(s)) }
	lines := wrap("one two three four", 9, measure)
	want := []string{"one two", "three", "four"}
	if len(lines) != len(want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
	if got := wrap("", 10, measure); len(got) != 0 {
		t.Errorf("expected no lines, got %q", got)
	}
}
