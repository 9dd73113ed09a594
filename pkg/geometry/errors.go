// Package geometry holds the pure size and rectangle math behind the editor:
// fitting an image into a container, deriving crop rectangles and canvas
// extensions for a target aspect ratio, and the AI-content percentage.
//
// Every function is total over valid input. Invalid input is reported with one
// of the sentinel errors below instead of a silent no-op result, so callers can
// decide their own fallback.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

var (
	// ErrInvalidDimensions is returned when a width or height is <= 0, NaN or infinite.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrInvalidRatio is returned when an aspect ratio is <= 0, NaN or infinite.
	ErrInvalidRatio = errors.New("invalid aspect ratio")
	// ErrInvalidStep is returned when a quantization step is not positive.
	ErrInvalidStep = errors.New("invalid quantization step")
)

// ratioEpsilon is the tolerance under which two ratios are treated as equal.
const ratioEpsilon = 1e-9

func checkDimensions(name string, d types.Dimensions) error {
	if !d.Valid() {
		return fmt.Errorf("%s %gx%g: %w", name, d.Width, d.Height, ErrInvalidDimensions)
	}
	return nil
}

func checkRatio(r float64) error {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return fmt.Errorf("ratio %g: %w", r, ErrInvalidRatio)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ceilTol rounds up, ignoring float noise just above an integer.
func ceilTol(v float64) float64 {
	return math.Ceil(v - ratioEpsilon)
}
