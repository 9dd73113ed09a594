package geometry

import (
	"math"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

// CropForRatio returns the largest rectangle with width/height == r that fits
// inside img, centered on the free axis. The result is exact; use
// PixelCropForRatio for a whole-pixel rectangle.
func CropForRatio(img types.Dimensions, r float64) (types.Rect, error) {
	w, h, err := cropSize(img, r)
	if err != nil {
		return types.Rect{}, err
	}
	return types.Rect{
		X:      (img.Width - w) / 2,
		Y:      (img.Height - h) / 2,
		Width:  w,
		Height: h,
	}, nil
}

// PixelCropForRatio is CropForRatio snapped to whole pixels. The bound side
// keeps the full image extent, neither side rounds below one pixel and the
// rectangle never leaves the image.
func PixelCropForRatio(img types.Dimensions, r float64) (types.Rect, error) {
	w, h, err := cropSize(img, r)
	if err != nil {
		return types.Rect{}, err
	}
	w = math.Min(math.Max(1, math.Round(w)), math.Floor(img.Width))
	h = math.Min(math.Max(1, math.Round(h)), math.Floor(img.Height))
	return types.Rect{
		X:      math.Round((math.Floor(img.Width) - w) / 2),
		Y:      math.Round((math.Floor(img.Height) - h) / 2),
		Width:  w,
		Height: h,
	}, nil
}

// FocusCropForRatio returns a rectangle of the same size as CropForRatio whose
// center is as close to focus as the image bounds allow. focus is normalized
// to [0,1] on both axes.
func FocusCropForRatio(img types.Dimensions, r float64, focus types.Point) (types.Rect, error) {
	w, h, err := cropSize(img, r)
	if err != nil {
		return types.Rect{}, err
	}

	cx := clamp(focus.X, 0, 1) * img.Width
	cy := clamp(focus.Y, 0, 1) * img.Height

	return types.Rect{
		X:      clamp(cx-w/2, 0, img.Width-w),
		Y:      clamp(cy-h/2, 0, img.Height-h),
		Width:  w,
		Height: h,
	}, nil
}

// FullFrame returns the rectangle covering the whole image.
func FullFrame(img types.Dimensions) (types.Rect, error) {
	if err := checkDimensions("image", img); err != nil {
		return types.Rect{}, err
	}
	return types.Rect{Width: img.Width, Height: img.Height}, nil
}

// ClampRect keeps r inside img. Width and height are reduced rather than the
// origin shifted, so an edge being dragged is never pushed back and the
// opposite edge stays put.
func ClampRect(r types.Rect, img types.Dimensions) types.Rect {
	if r.X < 0 {
		r.Width += r.X
	}
	if r.Y < 0 {
		r.Height += r.Y
	}
	r.X = clamp(r.X, 0, img.Width)
	r.Y = clamp(r.Y, 0, img.Height)
	r.Width = math.Max(0, math.Min(r.Width, img.Width-r.X))
	r.Height = math.Max(0, math.Min(r.Height, img.Height-r.Y))
	return r
}

func cropSize(img types.Dimensions, r float64) (w, h float64, err error) {
	if err := checkDimensions("image", img); err != nil {
		return 0, 0, err
	}
	if err := checkRatio(r); err != nil {
		return 0, 0, err
	}

	if img.Ratio() > r {
		// image is wider than the target: keep the height
		h = img.Height
		w = math.Min(h*r, img.Width)
	} else {
		w = img.Width
		h = math.Min(w/r, img.Height)
	}
	return w, h, nil
}
