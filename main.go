package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/wisp/config"
	"github.com/pthm-cable/wisp/game"
	"github.com/pthm-cable/wisp/renderer"
	"github.com/pthm-cable/wisp/shader"
	"github.com/pthm-cable/wisp/telemetry"
	"github.com/pthm-cable/wisp/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Render with the software backend, no window")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for headless PNG frames")
	snapshotEvery := flag.Int("snapshot-every", 60, "Write a headless PNG every N frames")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "Particle seed (0 = use config, then time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N frames (0 = unlimited)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (empty = use config)")
	orbit := flag.Bool("orbit", false, "Headless: drive the pointer around a circle")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *seed != 0 {
		cfg.Particles.Seed = *seed
	}
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if *metricsAddr != "" {
		cfg.Telemetry.MetricsAddr = *metricsAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *telemetry.Metrics
	if cfg.Telemetry.MetricsAddr != "" {
		metrics = telemetry.NewMetrics()
		go func() {
			if err := metrics.Serve(ctx, cfg.Telemetry.MetricsAddr, logger); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	// Build driver options; the cache lives for the whole process
	opts := game.Options{
		Config:   cfg,
		Cache:    shader.NewCache(shader.NewFSLoader(cfg.Shaders.Dir), logger),
		Logger:   logger,
		Metrics:  metrics,
		Output:   output,
		LogStats: *logStats,
	}

	if *headless {
		dir := *snapshotDir
		if dir == "" {
			dir = output.Dir()
		}
		err = runHeadless(ctx, opts, dir, *snapshotEvery, *maxTicks, *orbit)
	} else {
		err = runWindow(ctx, opts, *maxTicks)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		output.Close()
		os.Exit(1)
	}
}

// runHeadless drives the field with the software backend at the configured
// frame rate, independent of wall time.
func runHeadless(ctx context.Context, opts game.Options, snapshotDir string, snapshotEvery, maxTicks int, orbit bool) error {
	cfg := opts.Config
	backend := renderer.NewSoftware(cfg.Screen.Width, cfg.Screen.Height)
	defer backend.Close()

	if snapshotDir != "" {
		if err := os.MkdirAll(snapshotDir, 0755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	d, err := game.NewDriver(opts)
	if err != nil {
		return err
	}
	defer d.Stop()
	if err := d.Start(ctx, backend); err != nil {
		return err
	}

	slog.Info("starting headless run",
		"seed", d.Seed(),
		"particles", cfg.Derived.NumParticles,
		"max_ticks", maxTicks,
		"snapshot_dir", snapshotDir,
	)

	frameDt := time.Second / time.Duration(max(cfg.Screen.TargetFPS, 1))
	var now time.Duration
	for ctx.Err() == nil {
		if orbit && d.State() == game.StateRunning {
			a := now.Seconds()
			w, h := float64(cfg.Screen.Width), float64(cfg.Screen.Height)
			d.PointerMove(w/2+w/4*math.Cos(a), h/2+h/4*math.Sin(a))
		}

		d.Tick(now)

		switch d.State() {
		case game.StateLoading:
			time.Sleep(time.Millisecond)
			continue
		case game.StateFailed:
			return d.Err()
		case game.StateDisposed:
			return nil
		}
		now += frameDt

		step := d.LastFrame().Step
		if step == 0 {
			continue
		}
		if snapshotDir != "" && snapshotEvery > 0 && step%uint64(snapshotEvery) == 0 {
			path := filepath.Join(snapshotDir, fmt.Sprintf("frame_%06d.png", step))
			if err := backend.WritePNG(path); err != nil {
				slog.Error("failed to write snapshot", "path", path, "error", err)
			}
		}
		if maxTicks > 0 && step >= uint64(maxTicks) {
			slog.Info("max ticks reached", "step", step, "perf", d.Perf(), "field", d.WindowStats())
			return nil
		}
	}
	return nil
}

// runWindow hosts the driver in a raylib window with the HUD and tuning
// panel layered on top.
func runWindow(ctx context.Context, opts game.Options, maxTicks int) error {
	cfg := opts.Config
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Wisp")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	backend := renderer.NewRaylib(opts.Logger)
	defer backend.Close()

	opts.OnError = func(err error) {
		var le *shader.LoadError
		if errors.As(err, &le) {
			slog.Error("shader unavailable", "program", le.Program, "stage", le.Stage)
		}
	}

	start := func(cfg *config.Config) (*game.Driver, error) {
		o := opts
		o.Config = cfg
		d, err := game.NewDriver(o)
		if err != nil {
			return nil, err
		}
		if err := d.Resize(rl.GetScreenWidth(), rl.GetScreenHeight()); err != nil {
			return nil, err
		}
		return d, d.Start(ctx, backend)
	}

	d, err := start(cfg)
	if err != nil {
		return err
	}
	defer func() { d.Stop() }()

	hud := ui.NewHUD()
	perf := ui.NewPerfPanel(10, 120)
	tuning := ui.NewTuningPanel(ui.NewTuning(cfg), int32(rl.GetScreenWidth())-290, 10, 280)
	overlays := ui.NewOverlayRegistry()

	epoch := time.Now()
	for !rl.WindowShouldClose() && ctx.Err() == nil {
		d.HandleInput()
		overlays.PollKeys()
		if rl.IsWindowResized() {
			tuning.SetPosition(int32(rl.GetScreenWidth())-290, 10)
		}

		rl.BeginDrawing()
		d.Tick(time.Since(epoch))
		if d.State() != game.StateRunning {
			rl.ClearBackground(rl.Black)
		}

		w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
		if overlays.IsEnabled(ui.OverlayHUD) {
			frame := d.LastFrame()
			hud.Draw(ui.HUDData{
				Title:        "Wisp",
				State:        d.State().String(),
				Err:          d.Err(),
				Particles:    d.Config().Derived.NumParticles,
				Visible:      frame.Visible,
				Step:         frame.Step,
				SimTime:      frame.SimTime,
				PointerMode:  d.Config().Pointer.Mode,
				FPS:          rl.GetFPS(),
				ScreenWidth:  w,
				ScreenHeight: h,
			})
			hud.DrawControls(h, overlays.Legend()+"  [F11] Fullscreen")
		}
		if overlays.IsEnabled(ui.OverlayPerf) {
			perf.Draw(d.Perf(), d.WindowStats())
		}

		var restart *config.Config
		if overlays.IsEnabled(ui.OverlayTuning) {
			if next, ok := tuning.Draw(); ok {
				restart = next
			}
		}
		rl.EndDrawing()

		// Parameters are fixed per session: Apply rebuilds the driver
		if restart != nil {
			d.Stop()
			next, err := start(restart)
			if err != nil {
				return err
			}
			d = next
			slog.Info("driver restarted with tuned parameters")
		}

		if maxTicks > 0 && d.LastFrame().Step >= uint64(maxTicks) {
			break
		}
	}
	return nil
}
