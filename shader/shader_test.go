package shader

import (
	"context"
	"errors"
	"sync"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"
)

func TestUniforms(t *testing.T) {
	src := `
uniform float time;
uniform vec2 mouse, mouseScale; // pointer
uniform highp float lights[4];
// uniform float commented;
float notUniform;
`
	got := Uniforms(src)
	for _, name := range []string{"time", "mouse", "mouseScale", "lights"} {
		if _, ok := got[name]; !ok {
			t.Errorf("expected uniform %q to be found", name)
		}
	}
	if _, ok := got["commented"]; ok {
		t.Error("commented-out uniform should be ignored")
	}
	if len(got) != 4 {
		t.Errorf("expected 4 uniforms, got %d: %v", len(got), got)
	}
}

func TestValidateMissingUniform(t *testing.T) {
	set := &ProgramSet{
		Name:     Simulation,
		Vertex:   "void main() {}",
		Fragment: "uniform float time;\nvoid main() {}",
	}
	err := Validate(set)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if le.Stage != StageValidate {
		t.Errorf("expected validate stage, got %s", le.Stage)
	}
}

func TestEmbeddedProgramsSatisfyContracts(t *testing.T) {
	l := NewFSLoader("")
	for name := range Contracts {
		set, err := l.Load(context.Background(), name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if set.Name != name {
			t.Errorf("expected name %q, got %q", name, set.Name)
		}
	}
}

func TestSimulationProgramFollowsStepperTunables(t *testing.T) {
	set, err := NewFSLoader("").Load(context.Background(), Simulation)
	if err != nil {
		t.Fatal(err)
	}
	declared := Uniforms(set.Fragment)
	for _, name := range []string{"speed", "dieSpeed", "radius", "curlSize", "attraction", "noiseScale", "dtRatio"} {
		if _, ok := declared[name]; !ok {
			t.Errorf("simulation program does not take %q", name)
		}
	}

	tests := []struct {
		name, fragment string
	}{
		{"noise sampled at configured scale", "curl(pos*noiseScale, time)"},
		{"pull clamped to target distance", "min(move*attraction/max(d, radius), d)"},
	}
	for _, tt := range tests {
		if !strings.Contains(set.Fragment, tt.fragment) {
			t.Errorf("%s: %q not found in simulation.fs", tt.name, tt.fragment)
		}
	}
}

func TestFSLoaderMissingStage(t *testing.T) {
	l := &FSLoader{FS: fstest.MapFS{
		"particle.vs": {Data: []byte("void main() {}")},
	}}
	_, err := l.Load(context.Background(), Particle)
	var le *LoadError
	if !errors.As(err, &le) || le.Stage != StageFetch {
		t.Fatalf("expected fetch LoadError, got %v", err)
	}
}

type countingLoader struct {
	calls   atomic.Int32
	release chan struct{}
	fail    atomic.Bool
}

func (l *countingLoader) Load(ctx context.Context, name string) (*ProgramSet, error) {
	l.calls.Add(1)
	if l.release != nil {
		<-l.release
	}
	if l.fail.Load() {
		return nil, errors.New("network down")
	}
	return &ProgramSet{Name: name, Vertex: "v", Fragment: "uniform float time;"}, nil
}

func TestCacheSharesConcurrentLoad(t *testing.T) {
	loader := &countingLoader{release: make(chan struct{})}
	cache := NewCache(loader, nil)

	const callers = 8
	results := make([]*ProgramSet, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := cache.Get(context.Background(), Particle)
			if err != nil {
				t.Errorf("Get: %v", err)
			}
			results[i] = p
		}(i)
	}

	// Let every caller join the in-flight load before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(loader.release)
	wg.Wait()

	if n := loader.calls.Load(); n != 1 {
		t.Errorf("expected 1 load, got %d", n)
	}
	for i, p := range results {
		if p != results[0] {
			t.Errorf("caller %d got a different program set", i)
		}
	}

	again, err := cache.Get(context.Background(), Particle)
	if err != nil || again != results[0] {
		t.Errorf("expected memoized set, got %p err=%v", again, err)
	}
	if cache.Loads() != 1 {
		t.Errorf("expected Loads()=1, got %d", cache.Loads())
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	loader := &countingLoader{}
	loader.fail.Store(true)
	cache := NewCache(loader, nil)

	_, err := cache.Get(context.Background(), Particle)
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}

	loader.fail.Store(false)
	if _, err := cache.Get(context.Background(), Particle); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if n := loader.calls.Load(); n != 2 {
		t.Errorf("expected 2 loads, got %d", n)
	}
}

func TestCacheGetHonoursContext(t *testing.T) {
	loader := &countingLoader{release: make(chan struct{})}
	defer close(loader.release)
	cache := NewCache(loader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cache.Get(ctx, Simulation); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
