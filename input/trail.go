package input

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"gonum.org/v1/gonum/blas/blas32"
)

// trailFloor is the intensity below which a texel counts as background.
const trailFloor = 1.0 / 255

// Highlight colour stops at the newest trail point.
var highlightStops = []struct {
	offset float64
	color  gg.RGBA
}{
	{0, gg.RGBA2(1, 1, 1, 1)},
	{0.3, gg.RGBA2(1, 1, 1, 0.8)},
	{0.6, gg.RGBA2(200.0/255, 220.0/255, 1, 0.4)},
	{1, gg.RGBA2(150.0/255, 180.0/255, 1, 0)},
}

// TrailMap is a square intensity image that fades every tick and is
// repainted with the pointer trail when new input arrives. Intensities stay
// in [0,1]; without new input every texel reaches zero in a bounded number
// of ticks.
type TrailMap struct {
	size            int
	fade            float64
	lineWidth       float64
	highlightRadius float64

	intensity []float32
	scratch   *gg.Context
	version   uint64
}

// NewTrailMap creates a size×size trail map. fade is the fraction lost per
// reference frame.
func NewTrailMap(size int, fade, lineWidth, highlightRadius float64) (*TrailMap, error) {
	if size <= 0 {
		return nil, fmt.Errorf("trail map: invalid size %d", size)
	}
	if fade < 0 || fade >= 1 {
		return nil, fmt.Errorf("trail map: fade %g outside [0,1)", fade)
	}
	return &TrailMap{
		size:            size,
		fade:            fade,
		lineWidth:       lineWidth,
		highlightRadius: highlightRadius,
		intensity:       make([]float32, size*size),
		scratch:         gg.NewContext(size, size),
	}, nil
}

// Size returns the side length in texels.
func (m *TrailMap) Size() int {
	return m.size
}

// Intensity returns the backing buffer, row-major, row 0 at the top.
func (m *TrailMap) Intensity() []float32 {
	return m.intensity
}

// Update fades the map by dtRatio reference frames and paints the trail if
// the snapshot carries input not seen before. It reports whether it painted.
func (m *TrailMap) Update(s ForcingState, dtRatio float64) (bool, error) {
	m.decay(dtRatio)

	if s.Version == m.version || len(s.Trail) == 0 {
		return false, nil
	}
	m.version = s.Version
	if err := m.paint(s.Trail); err != nil {
		return false, err
	}
	return true, nil
}

// Sample returns the bilinearly interpolated intensity at (u, v) in [0,1],
// v down. Coordinates outside the map clamp to the edge.
func (m *TrailMap) Sample(u, v float64) float64 {
	fx := clampCoord(u*float64(m.size)-0.5, m.size)
	fy := clampCoord(v*float64(m.size)-0.5, m.size)

	x0 := int(fx)
	y0 := int(fy)
	fracX := fx - float64(x0)
	fracY := fy - float64(y0)
	x1 := min(x0+1, m.size-1)
	y1 := min(y0+1, m.size-1)

	v00 := float64(m.intensity[y0*m.size+x0])
	v10 := float64(m.intensity[y0*m.size+x1])
	v01 := float64(m.intensity[y1*m.size+x0])
	v11 := float64(m.intensity[y1*m.size+x1])

	v0 := v00 + (v10-v00)*fracX
	v1 := v01 + (v11-v01)*fracX
	return v0 + (v1-v0)*fracY
}

// FillRGBA writes the map as a tinted overlay into dst, which must hold
// Size()*Size() pixels.
func (m *TrailMap) FillRGBA(dst []color.RGBA) {
	for i, v := range m.intensity[:len(dst)] {
		a := uint8(v * 255)
		dst[i] = color.RGBA{R: uint8(v * 150), G: uint8(v * 180), B: a, A: a}
	}
}

// Close releases the rasterizer.
func (m *TrailMap) Close() error {
	return m.scratch.Close()
}

func (m *TrailMap) decay(dtRatio float64) {
	if dtRatio <= 0 || m.fade == 0 {
		return
	}
	factor := float32(math.Pow(1-m.fade, dtRatio))
	blas32.Scal(factor, blas32.Vector{N: len(m.intensity), Inc: 1, Data: m.intensity})
	for i, v := range m.intensity {
		if v < trailFloor {
			m.intensity[i] = 0
		}
	}
}

// paint rasterizes the trail into the scratch context and adds it to the
// intensity buffer, saturating at 1.
func (m *TrailMap) paint(trail []TrailPoint) error {
	dc := m.scratch
	dc.Clear()
	dc.ClearPath()

	pts := make([][2]float64, len(trail))
	for i, p := range trail {
		pts[i] = m.toPixels(p)
	}

	if len(pts) > 1 {
		dc.SetRGBA(1, 1, 1, 1)
		dc.SetLineWidth(m.lineWidth)
		dc.SetLineCap(gg.LineCapRound)
		dc.SetLineJoin(gg.LineJoinRound)

		// quadratic segments through the midpoints smooth the polyline
		dc.MoveTo(pts[0][0], pts[0][1])
		for i := 1; i < len(pts)-1; i++ {
			mx := (pts[i][0] + pts[i+1][0]) / 2
			my := (pts[i][1] + pts[i+1][1]) / 2
			dc.QuadraticTo(pts[i][0], pts[i][1], mx, my)
		}
		last := pts[len(pts)-1]
		dc.LineTo(last[0], last[1])
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("trail stroke: %w", err)
		}
	}

	if m.highlightRadius > 0 {
		head := pts[len(pts)-1]
		brush := gg.NewRadialGradientBrush(head[0], head[1], 0, m.highlightRadius)
		for _, s := range highlightStops {
			brush.AddColorStop(s.offset, s.color)
		}
		dc.SetFillBrush(brush)
		dc.DrawCircle(head[0], head[1], m.highlightRadius)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("trail highlight: %w", err)
		}
	}

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return fmt.Errorf("trail: unexpected scratch image type %T", dc.Image())
	}
	for i := range m.intensity {
		a := float32(img.Pix[i*4+3]) / 255
		m.intensity[i] = min(m.intensity[i]+a, 1)
	}
	return nil
}

func (m *TrailMap) toPixels(p TrailPoint) [2]float64 {
	s := float64(m.size)
	return [2]float64{
		(float64(p.X) + 1) / 2 * s,
		(1 - float64(p.Y)) / 2 * s,
	}
}

func clampCoord(f float64, size int) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if hi := float64(size - 1); f > hi {
		return hi
	}
	return f
}
