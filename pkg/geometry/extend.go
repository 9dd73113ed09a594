package geometry

import (
	"fmt"
	"math"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

// DefaultStep is the granularity, in pixels, that outpaint extensions are
// rounded up to.
const DefaultStep = 64

// ExtensionForRatio returns how far img has to grow to reach ratio r. Only one
// axis is ever extended and the added amount is rounded up to a multiple of
// step. The canvas never shrinks; when img already has ratio r nothing is added.
//
// User-specified growth on both axes is handled by ManualExtension.
func ExtensionForRatio(img types.Dimensions, r float64, step int) (types.ExtensionResult, error) {
	if err := checkDimensions("image", img); err != nil {
		return types.ExtensionResult{}, err
	}
	if err := checkRatio(r); err != nil {
		return types.ExtensionResult{}, err
	}
	if step <= 0 {
		return types.ExtensionResult{}, fmt.Errorf("step %d: %w", step, ErrInvalidStep)
	}

	w := math.Round(img.Width)
	h := math.Round(img.Height)
	current := w / h
	s := float64(step)

	var extendW, extendH float64
	switch {
	case math.Abs(current-r) < ratioEpsilon:
	case current < r:
		newWidth := ceilTol(h * r)
		extendW = math.Ceil((newWidth-w)/s) * s
	default:
		newHeight := ceilTol(w / r)
		extendH = math.Ceil((newHeight-h)/s) * s
	}

	return types.ExtensionResult{
		Width:        int(w + extendW),
		Height:       int(h + extendH),
		ExtendWidth:  int(extendW),
		ExtendHeight: int(extendH),
	}, nil
}

// ManualExtension grows img by explicit amounts on both axes. This is the
// free-form path used when no ratio is selected; amounts are not quantized.
func ManualExtension(img types.Dimensions, extendWidth, extendHeight int) (types.ExtensionResult, error) {
	if err := checkDimensions("image", img); err != nil {
		return types.ExtensionResult{}, err
	}
	if extendWidth < 0 || extendHeight < 0 {
		return types.ExtensionResult{}, fmt.Errorf("extension %dx%d: %w", extendWidth, extendHeight, ErrInvalidDimensions)
	}

	w := int(math.Round(img.Width))
	h := int(math.Round(img.Height))
	return types.ExtensionResult{
		Width:        w + extendWidth,
		Height:       h + extendHeight,
		ExtendWidth:  extendWidth,
		ExtendHeight: extendHeight,
	}, nil
}

// AIContentPercentage returns the share of the extended canvas, in whole
// percent, that will be generated rather than carried over from the original.
// It returns 0 when any dimension is missing.
func AIContentPercentage(original, extended types.Dimensions) int {
	if !original.Valid() || !extended.Valid() {
		return 0
	}
	newArea := extended.Area()
	generated := newArea - original.Area()
	if generated <= 0 {
		return 0
	}
	pct := int(math.Round(generated / newArea * 100))
	if pct > 99 {
		// some original content always remains
		pct = 99
	}
	return pct
}
