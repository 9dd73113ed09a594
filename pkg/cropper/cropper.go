// Package cropper implements crop selection: the interactive 8-handle
// resize/move state machine used while the user drags, and an image-level
// Cropper that cuts pixels out for a given rectangle or aspect ratio.
package cropper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/menta2k/canvas-geometry/internal/logging"
	"github.com/menta2k/canvas-geometry/pkg/detection"
	"github.com/menta2k/canvas-geometry/pkg/geometry"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

// ErrEmptyRegion is returned when a crop rectangle has no area inside the image.
var ErrEmptyRegion = errors.New("empty crop region")

// Cropper cuts images down to a rectangle or aspect ratio. With a Locator set,
// ratio crops are positioned around the located focus instead of centered.
type Cropper struct {
	locator detection.Locator
	config  Config
}

// Config holds configuration for image-level cropping
type Config struct {
	AllowUpscaling bool
	// Workers bounds CropToMultipleRatios; 0 means GOMAXPROCS.
	Workers int
}

// CropResult contains the result of a cropping operation
type CropResult struct {
	Image       image.Image
	Region      types.Rect
	AspectRatio float64
	// Coverage is the share of the source area kept, in (0,1].
	Coverage float64
}

// New creates a Cropper that centers ratio crops.
func New() *Cropper {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a Cropper with custom configuration
func NewWithConfig(config Config) *Cropper {
	return &Cropper{config: config}
}

// SetLocator sets the focus locator used for ratio crops. nil restores
// centered crops.
func (c *Cropper) SetLocator(l detection.Locator) {
	c.locator = l
}

// CropToRect crops img to r, given in image pixels relative to the image
// origin. r is clamped to the image first.
func (c *Cropper) CropToRect(img image.Image, r types.Rect) (CropResult, error) {
	size := types.DimensionsOf(img)
	if !size.Valid() {
		return CropResult{}, fmt.Errorf("crop %v: %w", img.Bounds(), geometry.ErrInvalidDimensions)
	}

	region := geometry.ClampRect(r.Normalize(), size).Round()
	if region.Empty() {
		return CropResult{}, fmt.Errorf("crop %+v: %w", r, ErrEmptyRegion)
	}

	rect := region.Image().Add(img.Bounds().Min)
	return CropResult{
		Image:       imaging.Crop(img, rect),
		Region:      region,
		AspectRatio: region.Ratio(),
		Coverage:    region.Size().Area() / size.Area(),
	}, nil
}

// CropToAspectRatio crops img to a preset. Custom keeps the full frame.
func (c *Cropper) CropToAspectRatio(ctx context.Context, img image.Image, ar geometry.AspectRatio) (CropResult, error) {
	r, ok := ar.Value()
	if !ok {
		frame, err := geometry.FullFrame(types.DimensionsOf(img))
		if err != nil {
			return CropResult{}, err
		}
		return c.CropToRect(img, frame)
	}
	return c.CropToRatio(ctx, img, r)
}

// CropToRatio crops img to the largest whole-pixel rectangle of ratio r.
func (c *Cropper) CropToRatio(ctx context.Context, img image.Image, r float64) (CropResult, error) {
	size := types.DimensionsOf(img)

	region, err := geometry.PixelCropForRatio(size, r)
	if err != nil {
		return CropResult{}, fmt.Errorf("failed to find crop region: %w", err)
	}

	if c.locator != nil {
		focus, err := c.locator.Locate(ctx, img)
		if err != nil {
			logging.Printf("focus lookup failed, using centered crop: %v", err)
		} else {
			focused, err := geometry.FocusCropForRatio(size, r, focus)
			if err != nil {
				return CropResult{}, err
			}
			// keep the whole-pixel size, move the origin only
			region.X = clamp(focused.Round().X, 0, size.Width-region.Width)
			region.Y = clamp(focused.Round().Y, 0, size.Height-region.Height)
			logging.Debugf("focus %.3f,%.3f -> crop %+v", focus.X, focus.Y, region)
		}
	}

	res, err := c.CropToRect(img, region)
	if err != nil {
		return CropResult{}, err
	}
	res.AspectRatio = r
	return res, nil
}

// CropToMultipleRatios crops img to every ratio concurrently. Results keep the
// order of ratios.
func (c *Cropper) CropToMultipleRatios(ctx context.Context, img image.Image, ratios []geometry.AspectRatio) ([]CropResult, error) {
	results := make([]CropResult, len(ratios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())
	for i, ratio := range ratios {
		g.Go(func() error {
			res, err := c.CropToAspectRatio(ctx, img, ratio)
			if err != nil {
				return fmt.Errorf("failed to crop to %s: %w", ratio.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CropToSize crops img to the ratio of width x height and resizes the result
// to exactly that size.
func (c *Cropper) CropToSize(ctx context.Context, img image.Image, width, height int) (CropResult, error) {
	b := img.Bounds()
	if width <= 0 || height <= 0 {
		return CropResult{}, fmt.Errorf("target size %dx%d: %w", width, height, geometry.ErrInvalidDimensions)
	}
	if !c.config.AllowUpscaling && (width > b.Dx() || height > b.Dy()) {
		return CropResult{}, fmt.Errorf("target size (%dx%d) is larger than original (%dx%d) and upscaling is disabled",
			width, height, b.Dx(), b.Dy())
	}

	res, err := c.CropToRatio(ctx, img, float64(width)/float64(height))
	if err != nil {
		return CropResult{}, err
	}
	res.Image = imaging.Resize(res.Image, width, height, imaging.Lanczos)
	return res, nil
}

func (c *Cropper) workers() int {
	if c.config.Workers > 0 {
		return c.config.Workers
	}
	return runtime.GOMAXPROCS(0)
}
