package game

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/wisp/input"
	"github.com/pthm-cable/wisp/renderer"
	"github.com/pthm-cable/wisp/shader"
	"github.com/pthm-cable/wisp/systems"
)

// loadResult is what the loading goroutine hands back to the tick goroutine.
type loadResult struct {
	simulation *shader.ProgramSet
	particle   *shader.ProgramSet
	store      *systems.StateStore
	err        error
}

// resources holds every handle the driver owns once loading completes.
// release runs each releaser once, newest first.
type resources struct {
	simulation renderer.Program
	particle   renderer.Program
	sprite     renderer.Texture
	overlay    renderer.Texture

	releasers []func()
	released  bool
}

func (r *resources) own(release func()) {
	r.releasers = append(r.releasers, release)
}

func (r *resources) release() {
	if r == nil || r.released {
		return
	}
	r.released = true
	for i := len(r.releasers) - 1; i >= 0; i-- {
		r.releasers[i]()
	}
	r.releasers = nil
}

// Start begins loading. Programs are fetched and buffer A is seeded off the
// tick goroutine; Tick picks up the result without blocking.
func (d *Driver) Start(ctx context.Context, backend renderer.Backend) error {
	if d.state != StateUninitialized {
		return fmt.Errorf("driver: start in state %s", d.state)
	}
	if backend == nil {
		return fmt.Errorf("driver: nil backend")
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.backend = backend
	d.backend.Resize(int(d.camera.ViewportW), int(d.camera.ViewportH))
	d.loadCh = make(chan loadResult, 1)
	d.setState(StateLoading)

	go d.load(ctx)
	return nil
}

func (d *Driver) load(ctx context.Context) {
	var r loadResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := d.opts.Cache.Get(gctx, shader.Simulation)
		r.simulation = p
		return err
	})
	g.Go(func() error {
		p, err := d.opts.Cache.Get(gctx, shader.Particle)
		r.particle = p
		return err
	})
	g.Go(func() error {
		sim := d.cfg.Simulation
		seed := systems.ShellSeed{Inner: sim.SeedInnerRadius, Outer: sim.SeedOuterRadius}
		store, err := systems.NewStateStore(d.cfg.Particles.TextureSize, seed, rand.New(rand.NewSource(d.seed)))
		r.store = store
		return err
	})

	r.err = g.Wait()
	d.loadCh <- r
}

// pollLoad finishes loading if the result has arrived.
func (d *Driver) pollLoad() {
	select {
	case r := <-d.loadCh:
		if r.err != nil {
			d.fail(r.err)
			return
		}
		if err := d.finishLoad(r); err != nil {
			d.fail(err)
			return
		}
		d.setState(StateRunning)
	default:
	}
}

// finishLoad allocates backend resources and runs the priming step. On error
// everything allocated so far is already registered for release.
func (d *Driver) finishLoad(r loadResult) error {
	cfg := d.cfg
	res := &resources{}
	d.res = res

	sim, err := d.backend.CompileProgram(r.simulation)
	if err != nil {
		return err
	}
	res.simulation = sim
	res.own(sim.Release)

	part, err := d.backend.CompileProgram(r.particle)
	if err != nil {
		return err
	}
	res.particle = part
	res.own(part.Release)

	img, err := renderer.SpriteImage(cfg.Sprite.TextureSize)
	if err != nil {
		return &renderer.ResourceError{Resource: "sprite", Err: err}
	}
	sprite, err := d.backend.LoadTexture(img)
	if err != nil {
		return err
	}
	res.sprite = sprite
	res.own(sprite.Release)

	if cfg.Derived.TrailMode {
		trail, err := input.NewTrailMap(cfg.Trail.Size, cfg.Trail.Fade, cfg.Trail.LineWidth, cfg.Trail.HighlightRadius)
		if err != nil {
			return &renderer.ResourceError{Resource: "trail", Err: err}
		}
		res.own(func() { _ = trail.Close() })

		overlay, err := d.backend.LoadTexture(image.NewRGBA(image.Rect(0, 0, cfg.Trail.Size, cfg.Trail.Size)))
		if err != nil {
			return err
		}
		res.overlay = overlay
		res.own(overlay.Release)

		d.trail = trail
		d.trailPixels = make([]color.RGBA, cfg.Trail.Size*cfg.Trail.Size)
	}

	d.store = r.store
	d.stepper = systems.NewStepper(d.params(), d.seed, cfg.Simulation.Workers)
	res.own(d.stepper.Close)
	d.field = renderer.NewParticleField(cfg.Particles.TextureSize, part, sprite, float32(cfg.Sprite.WorldSize))

	// Prime B from A so every later read sees stepped state.
	if _, err := d.stepper.Step(d.store.Current(), d.store.Next(), d.forcing(input.ForcingState{}), systems.Tick{}); err != nil {
		return fmt.Errorf("priming step: %w", err)
	}
	d.store.Swap()

	d.logger.Info("driver ready",
		"particles", cfg.Derived.NumParticles,
		"seed", d.seed,
		"pointer_mode", cfg.Pointer.Mode,
	)
	return nil
}

func (d *Driver) params() systems.Params {
	sim := d.cfg.Simulation
	return systems.Params{
		Speed:      sim.Speed,
		DieSpeed:   sim.DieSpeed,
		Radius:     sim.Radius,
		CurlSize:   sim.CurlSize,
		Attraction: sim.Attraction,
		NoiseScale: sim.NoiseScale,
		Excite:     sim.TrailExcite,
		Seed:       systems.ShellSeed{Inner: sim.SeedInnerRadius, Outer: sim.SeedOuterRadius},
	}
}

// Stop disposes the driver. It is safe in every state and idempotent; a load
// still in flight is abandoned and its result ignored.
func (d *Driver) Stop() {
	if d.state == StateDisposed {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.res.release()
	d.setState(StateDisposed)
}
