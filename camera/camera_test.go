package camera

import (
	"errors"
	"math"
	"testing"
)

func newTestCamera(t *testing.T, w, h float64) *Camera {
	t.Helper()
	cam, err := New(75, 0.1, 1000, 5, w, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cam
}

func TestVisibleDimensions(t *testing.T) {
	cam := newTestCamera(t, 800, 600)

	w, h := cam.VisibleDimensions()
	wantH := 2 * math.Tan(75*math.Pi/360) * 5
	if math.Abs(h-wantH) > 1e-9 {
		t.Errorf("expected visible height %f, got %f", wantH, h)
	}
	if math.Abs(w-wantH*800/600) > 1e-9 {
		t.Errorf("expected visible width %f, got %f", wantH*800/600, w)
	}
}

func TestResizeDoublesWidth(t *testing.T) {
	cam := newTestCamera(t, 800, 600)
	w0, h0 := cam.VisibleDimensions()
	sx0, sy0 := cam.MouseScale()

	if err := cam.Resize(1600, 600); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	w1, h1 := cam.VisibleDimensions()
	sx1, sy1 := cam.MouseScale()

	if math.Abs(w1-2*w0) > 1e-9 {
		t.Errorf("expected visible width to double: %f -> %f", w0, w1)
	}
	if math.Abs(h1-h0) > 1e-9 {
		t.Errorf("expected visible height unchanged: %f -> %f", h0, h1)
	}
	if math.Abs(sx1-2*sx0) > 1e-9 || math.Abs(sy1-sy0) > 1e-9 {
		t.Errorf("mouse scale (%f,%f) -> (%f,%f)", sx0, sy0, sx1, sy1)
	}
}

func TestResizeIdempotent(t *testing.T) {
	cam := newTestCamera(t, 1280, 720)
	before := *cam
	if err := cam.Resize(1280, 720); err != nil {
		t.Fatal(err)
	}
	if *cam != before {
		t.Errorf("repeated resize changed camera: %+v -> %+v", before, *cam)
	}
}

func TestResizeRejectsInvalid(t *testing.T) {
	cam := newTestCamera(t, 1280, 720)
	sizes := []struct{ w, h float64 }{
		{0, 720},
		{1280, -1},
		{math.NaN(), 720},
		{math.Inf(1), 720},
	}
	for _, s := range sizes {
		err := cam.Resize(s.w, s.h)
		var ve *ViewportError
		if !errors.As(err, &ve) {
			t.Errorf("Resize(%f,%f): expected ViewportError, got %v", s.w, s.h, err)
		}
	}
	if cam.ViewportW != 1280 || cam.ViewportH != 720 {
		t.Errorf("invalid resize modified viewport to %fx%f", cam.ViewportW, cam.ViewportH)
	}
}

func TestProjectCenterAndEdges(t *testing.T) {
	cam := newTestCamera(t, 800, 600)

	sx, sy, _, ok := cam.Project(0, 0, 0)
	if !ok || math.Abs(sx-400) > 1e-9 || math.Abs(sy-300) > 1e-9 {
		t.Errorf("origin should project to screen center, got (%f,%f) ok=%v", sx, sy, ok)
	}

	// The mouse scale corner lies on the viewport corner at the focal plane.
	mx, my := cam.MouseScale()
	sx, sy, _, _ = cam.Project(mx, my, 0)
	if math.Abs(sx-800) > 1e-6 || math.Abs(sy) > 1e-6 {
		t.Errorf("expected top-right corner (800,0), got (%f,%f)", sx, sy)
	}

	if _, _, _, ok := cam.Project(0, 0, 5); ok {
		t.Error("point at the camera should be clipped")
	}
}

func TestNormalizeMatchesProject(t *testing.T) {
	cam := newTestCamera(t, 1024, 768)
	mx, my := cam.MouseScale()

	nx, ny := cam.Normalize(256, 192)
	sx, sy, _, _ := cam.Project(nx*mx, ny*my, 0)
	if math.Abs(sx-256) > 1e-6 || math.Abs(sy-192) > 1e-6 {
		t.Errorf("pointer round trip: got (%f,%f), want (256,192)", sx, sy)
	}
}
