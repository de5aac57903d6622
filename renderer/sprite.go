package renderer

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"
)

// spriteStops is the soft radial falloff of a particle: a white core fading
// through pale blue to transparent.
var spriteStops = []struct {
	offset float64
	color  gg.RGBA
}{
	{0, gg.RGBA2(1, 1, 1, 1)},
	{0.2, gg.RGBA2(1, 1, 1, 0.8)},
	{0.4, gg.RGBA2(200.0/255, 220.0/255, 1, 0.5)},
	{0.7, gg.RGBA2(150.0/255, 180.0/255, 1, 0.2)},
	{1, gg.RGBA2(100.0/255, 150.0/255, 1, 0)},
}

// SpriteImage rasterizes the particle sprite at size×size pixels.
func SpriteImage(size int) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("sprite: invalid size %d", size)
	}
	dc := gg.NewContext(size, size)
	defer dc.Close()

	c := float64(size) / 2
	brush := gg.NewRadialGradientBrush(c, c, 0, c)
	for _, s := range spriteStops {
		brush.AddColorStop(s.offset, s.color)
	}
	dc.SetFillBrush(brush)
	dc.DrawCircle(c, c, c)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("sprite: %w", err)
	}
	return dc.Image(), nil
}
