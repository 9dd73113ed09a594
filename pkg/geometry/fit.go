package geometry

import (
	"math"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

// Fit is the result of scaling an image into a container.
type Fit struct {
	// Scale converts image pixels to screen pixels; always in (0,1].
	Scale float64 `json:"scale"`
	// Size is the displayed image size.
	Size types.Dimensions `json:"size"`
}

// ToImage converts a point relative to the displayed image into image pixels.
func (f Fit) ToImage(p types.Point) types.Point {
	return p.Scale(1 / f.Scale)
}

// ToScreen converts an image pixel position into displayed coordinates.
func (f Fit) ToScreen(p types.Point) types.Point {
	return p.Scale(f.Scale)
}

// FitToContainer scales img so it fits entirely within container while keeping
// its aspect ratio. It never upscales beyond the natural size.
func FitToContainer(img, container types.Dimensions) (Fit, error) {
	if err := checkDimensions("image", img); err != nil {
		return Fit{}, err
	}
	if err := checkDimensions("container", container); err != nil {
		return Fit{}, err
	}

	// one scale for both axes; at 1 the natural size is returned untouched
	scale := math.Min(1, math.Min(container.Width/img.Width, container.Height/img.Height))

	return Fit{
		Scale: scale,
		Size: types.Dimensions{
			Width:  math.Min(img.Width*scale, container.Width),
			Height: math.Min(img.Height*scale, container.Height),
		},
	}, nil
}
