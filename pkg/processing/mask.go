package processing

import (
	"image"
	"image/color"
	"math"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

var brushColor = color.NRGBA{255, 0, 0, 255}

// Mask is an inpainting mask. Painted pixels are opaque red on a transparent
// background, the format the inpaint endpoint expects.
type Mask struct {
	img *image.NRGBA
}

// NewMask returns an empty mask of the given canvas size.
func NewMask(width, height int) *Mask {
	return &Mask{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// Stroke paints a brush line of the given radius from one canvas point to
// another. A zero-length stroke paints a single dab.
func (m *Mask) Stroke(from, to types.Point, radius float64) {
	if radius <= 0 {
		return
	}
	d := to.Sub(from)
	steps := int(math.Ceil(math.Hypot(d.X, d.Y) / (radius / 2)))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		p := from.Add(d.Scale(float64(i) / float64(steps)))
		fillCircle(m.img, p.X, p.Y, radius, brushColor)
	}
}

// Clear erases every stroke.
func (m *Mask) Clear() {
	clear(m.img.Pix)
}

// HasContent reports whether anything has been painted.
func (m *Mask) HasContent() bool { return MaskHasContent(m.img) }

// Image returns the mask raster.
func (m *Mask) Image() *image.NRGBA { return m.img }
