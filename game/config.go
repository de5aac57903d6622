package game

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/wisp/config"
	"github.com/pthm-cable/wisp/shader"
	"github.com/pthm-cable/wisp/telemetry"
)

// Options configures a Driver.
type Options struct {
	// Config is the session configuration. Nil uses config.Defaults().
	Config *config.Config
	// Cache supplies program sources. Nil loads the embedded sources, or
	// Config.Shaders.Dir when set.
	Cache *shader.Cache

	Logger   *slog.Logger
	Metrics  *telemetry.Metrics       // optional
	Output   *telemetry.OutputManager // optional
	LogStats bool                     // log perf and field stats every stats window

	// OnError is called once, on the tick goroutine, when the driver fails.
	OnError func(error)
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.Config == nil {
		o.Config = config.Defaults()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Cache == nil {
		o.Cache = shader.NewCache(shader.NewFSLoader(o.Config.Shaders.Dir), o.Logger)
	}
	return o
}

// statsWindow returns the interval between telemetry flushes.
func (o Options) statsWindow() time.Duration {
	w := o.Config.Telemetry.StatsWindow
	if w <= 0 {
		return 0
	}
	return time.Duration(w * float64(time.Second))
}
