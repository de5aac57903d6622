// Package config provides configuration loading and access for the particle field.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Pointer forcing modes.
const (
	PointerDirect = "direct"
	PointerTrail  = "trail"
)

// Config holds all configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Particles  ParticlesConfig  `yaml:"particles"`
	Simulation SimulationConfig `yaml:"simulation"`
	Camera     CameraConfig     `yaml:"camera"`
	Pointer    PointerConfig    `yaml:"pointer"`
	Trail      TrailConfig      `yaml:"trail"`
	Sprite     SpriteConfig     `yaml:"sprite"`
	Shaders    ShadersConfig    `yaml:"shaders"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ParticlesConfig sizes the particle population.
type ParticlesConfig struct {
	TextureSize int   `yaml:"texture_size"` // S; N = S*S particles
	Seed        int64 `yaml:"seed"`         // 0 = time-based
}

// SimulationConfig holds the stepper's tunables.
type SimulationConfig struct {
	Speed           float64 `yaml:"speed"`
	DieSpeed        float64 `yaml:"die_speed"`
	Radius          float64 `yaml:"radius"`     // near-field clamp for attraction
	CurlSize        float64 `yaml:"curl_size"`  // turbulence amplitude
	Attraction      float64 `yaml:"attraction"` // pull toward the forcing target
	NoiseScale      float64 `yaml:"noise_scale"`
	TimeScale       float64 `yaml:"time_scale"` // sim time advanced per reference frame
	ReferenceDTMs   float64 `yaml:"reference_dt_ms"`
	MaxDTMs         float64 `yaml:"max_dt_ms"`
	SeedInnerRadius float64 `yaml:"seed_inner_radius"`
	SeedOuterRadius float64 `yaml:"seed_outer_radius"`
	TrailExcite     float64 `yaml:"trail_excite"` // turbulence boost under the trail
	Workers         int     `yaml:"workers"`      // 0 = GOMAXPROCS
}

// CameraConfig holds the perspective camera parameters.
type CameraConfig struct {
	Fov      float64 `yaml:"fov"` // vertical, degrees
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
	Distance float64 `yaml:"distance"`
}

// PointerConfig selects how pointer input forces the field.
type PointerConfig struct {
	Mode            string  `yaml:"mode"`
	TrailLength     int     `yaml:"trail_length"`
	SpringFrequency float64 `yaml:"spring_frequency"` // 0 disables smoothing
	SpringDamping   float64 `yaml:"spring_damping"`
}

// TrailConfig holds the decaying trail image parameters.
type TrailConfig struct {
	Size            int     `yaml:"size"`
	Fade            float64 `yaml:"fade"` // per reference frame
	LineWidth       float64 `yaml:"line_width"`
	HighlightRadius float64 `yaml:"highlight_radius"`
}

// SpriteConfig holds the particle sprite parameters.
type SpriteConfig struct {
	TextureSize int     `yaml:"texture_size"`
	WorldSize   float64 `yaml:"world_size"`
}

// ShadersConfig locates shader sources.
type ShadersConfig struct {
	Dir string `yaml:"dir"` // empty = embedded sources
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int     `yaml:"perf_window"`
	StatsWindow float64 `yaml:"stats_window"` // seconds between stats flushes
	MetricsAddr string  `yaml:"metrics_addr"` // empty = no /metrics endpoint
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	NumParticles int     // TextureSize squared
	FovRad       float64 // Camera.Fov in radians
	ScreenW32    float32
	ScreenH32    float32
	TrailMode    bool
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Particles.TextureSize <= 0:
		return fmt.Errorf("particles.texture_size must be positive, got %d", c.Particles.TextureSize)
	case c.Simulation.ReferenceDTMs <= 0:
		return fmt.Errorf("simulation.reference_dt_ms must be positive")
	case c.Simulation.MaxDTMs <= 0:
		return fmt.Errorf("simulation.max_dt_ms must be positive")
	case c.Simulation.Radius <= 0:
		return fmt.Errorf("simulation.radius must be positive")
	case c.Simulation.DieSpeed < 0:
		return fmt.Errorf("simulation.die_speed must not be negative")
	case c.Simulation.SeedInnerRadius < 0 || c.Simulation.SeedOuterRadius < c.Simulation.SeedInnerRadius:
		return fmt.Errorf("simulation seed radii invalid: [%g, %g]",
			c.Simulation.SeedInnerRadius, c.Simulation.SeedOuterRadius)
	case c.Camera.Fov <= 0 || c.Camera.Fov >= 180:
		return fmt.Errorf("camera.fov must be in (0, 180), got %g", c.Camera.Fov)
	case c.Camera.Distance <= 0:
		return fmt.Errorf("camera.distance must be positive")
	case c.Pointer.Mode != PointerDirect && c.Pointer.Mode != PointerTrail:
		return fmt.Errorf("pointer.mode must be %q or %q, got %q", PointerDirect, PointerTrail, c.Pointer.Mode)
	case c.Pointer.TrailLength <= 0:
		return fmt.Errorf("pointer.trail_length must be positive")
	case c.Trail.Fade < 0 || c.Trail.Fade >= 1:
		return fmt.Errorf("trail.fade must be in [0, 1), got %g", c.Trail.Fade)
	case c.Trail.Size <= 0:
		return fmt.Errorf("trail.size must be positive")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.NumParticles = c.Particles.TextureSize * c.Particles.TextureSize
	c.Derived.FovRad = c.Camera.Fov * math.Pi / 180
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.TrailMode = c.Pointer.Mode == PointerTrail
}

// Clone returns a deep copy with derived values recomputed.
func (c *Config) Clone() *Config {
	cp := *c
	cp.computeDerived()
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
