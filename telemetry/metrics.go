package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports frame counters and timings for Prometheus. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	frames       prometheus.Counter
	respawns     prometheus.Counter
	repaints     prometheus.Counter
	inputErrors  prometheus.Counter
	visible      prometheus.Gauge
	simTime      prometheus.Gauge
	lifeMedian   prometheus.Gauge
	state        *prometheus.GaugeVec
	tickDuration prometheus.Histogram
	phaseSeconds *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		frames: f.NewCounter(prometheus.CounterOpts{
			Name: "wisp_frames_total",
			Help: "Frames stepped and rendered.",
		}),
		respawns: f.NewCounter(prometheus.CounterOpts{
			Name: "wisp_respawns_total",
			Help: "Particles respawned after their life ran out.",
		}),
		repaints: f.NewCounter(prometheus.CounterOpts{
			Name: "wisp_trail_repaints_total",
			Help: "Trail image repaints triggered by new pointer input.",
		}),
		inputErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "wisp_input_errors_total",
			Help: "Malformed input events dropped.",
		}),
		visible: f.NewGauge(prometheus.GaugeOpts{
			Name: "wisp_visible_particles",
			Help: "Particles submitted in the last frame.",
		}),
		simTime: f.NewGauge(prometheus.GaugeOpts{
			Name: "wisp_sim_time",
			Help: "Accumulated simulation time.",
		}),
		lifeMedian: f.NewGauge(prometheus.GaugeOpts{
			Name: "wisp_particle_life_median",
			Help: "Median remaining life of live particles at the end of the last stats window.",
		}),
		state: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wisp_driver_state",
			Help: "1 for the frame driver's current lifecycle state.",
		}, []string{"state"}),
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wisp_tick_seconds",
			Help:    "Wall time of one tick.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
		phaseSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wisp_phase_seconds",
			Help:    "Average per-tick phase time, observed once per stats window.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
		}, []string{"phase"}),
	}
}

// Registry returns the registry for gathering or serving.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFrame records one completed frame.
func (m *Metrics) ObserveFrame(r FrameRecord, tick time.Duration) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.respawns.Add(float64(r.Respawns))
	if r.Repaint {
		m.repaints.Inc()
	}
	m.visible.Set(float64(r.Visible))
	m.simTime.Set(r.SimTime)
	m.tickDuration.Observe(tick.Seconds())
}

// ObservePerf records a stats window's phase averages.
func (m *Metrics) ObservePerf(s PerfStats) {
	if m == nil {
		return
	}
	for phase, d := range s.PhaseAvg {
		m.phaseSeconds.WithLabelValues(phase).Observe(d.Seconds())
	}
}

// ObserveWindow records a field stats window.
func (m *Metrics) ObserveWindow(s WindowStats) {
	if m == nil {
		return
	}
	m.lifeMedian.Set(s.LifeP50)
}

// InputDropped counts a malformed input event.
func (m *Metrics) InputDropped() {
	if m == nil {
		return
	}
	m.inputErrors.Inc()
}

// SetState marks state as the only active lifecycle state.
func (m *Metrics) SetState(state string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == state {
			v = 1
		}
		m.state.WithLabelValues(s).Set(v)
	}
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
