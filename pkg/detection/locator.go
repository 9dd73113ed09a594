// Package detection locates the focus of an image so ratio crops can be
// positioned around the subject instead of the center.
package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

// ErrNoFace is returned by FaceLocator when no face clears the quality bar.
var ErrNoFace = errors.New("no face detected")

// Locator returns the focus of img as a normalized point in [0,1].
type Locator interface {
	Locate(ctx context.Context, img image.Image) (types.Point, error)
}

// Center is the neutral focus.
var Center = types.Point{X: 0.5, Y: 0.5}

// CenterLocator always returns the image center.
type CenterLocator struct{}

func (CenterLocator) Locate(ctx context.Context, img image.Image) (types.Point, error) {
	return Center, nil
}

// SmartcropLocator picks the most interesting square of the image by edge,
// skin and saturation scoring and returns its center.
type SmartcropLocator struct {
	resampler imaging.ResampleFilter
}

// NewSmartcropLocator creates a locator that downsamples with Lanczos.
func NewSmartcropLocator() *SmartcropLocator {
	return &SmartcropLocator{resampler: imaging.Lanczos}
}

func (l *SmartcropLocator) Locate(ctx context.Context, img image.Image) (types.Point, error) {
	if err := ctx.Err(); err != nil {
		return types.Point{}, err
	}
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	if side <= 0 {
		return types.Point{}, fmt.Errorf("empty image %v", b)
	}

	analyzer := smartcrop.NewAnalyzer(&resizer{resampler: l.resampler})

	type cropResult struct {
		crop image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)
	go func() {
		crop, err := analyzer.FindBestCrop(img, side, side)
		resultChan <- cropResult{crop: crop, err: err}
	}()

	select {
	case <-ctx.Done():
		return types.Point{}, ctx.Err()
	case res := <-resultChan:
		if res.err != nil {
			return types.Point{}, fmt.Errorf("finding best crop: %w", res.err)
		}
		return normalizedCenter(res.crop.Sub(b.Min), b.Dx(), b.Dy()), nil
	}
}

// resizer implements the smartcrop.Resizer interface
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

func normalizedCenter(r image.Rectangle, w, h int) types.Point {
	return types.Point{
		X: clamp((float64(r.Min.X)+float64(r.Dx())/2)/float64(w), 0, 1),
		Y: clamp((float64(r.Min.Y)+float64(r.Dy())/2)/float64(h), 0, 1),
	}
}

// New builds the locator for a focus method name: center, smartcrop, face or
// model. face needs a cascade file and model a vision client, so those go
// through NewFaceLocatorFromFile and NewModelLocator instead.
func New(method string) (Locator, error) {
	switch strings.ToLower(method) {
	case "", "center":
		return CenterLocator{}, nil
	case "smartcrop":
		return NewSmartcropLocator(), nil
	}
	return nil, fmt.Errorf("focus method %q needs extra setup", method)
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
