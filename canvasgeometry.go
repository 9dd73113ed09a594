// Package canvasgeometry is the geometry engine of an AI image editor.
//
// It computes how an image is displayed, cropped to an aspect ratio, or grown
// to one so an outpainting model can fill the new area. The heavy lifting
// lives in the sub-packages; this package wires them together for batch use.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		canvasgeometry "github.com/menta2k/canvas-geometry"
//		"github.com/menta2k/canvas-geometry/pkg/geometry"
//	)
//
//	func main() {
//		cg := canvasgeometry.New()
//
//		img, err := cg.LoadImage(context.Background(), "photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// Crop to 16:9
//		crop, err := cg.CropToAspectRatio(context.Background(), img, geometry.Widescreen)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// Or grow the canvas to 16:9 for outpainting
//		canvas, ext, err := cg.Extend(img, geometry.Widescreen)
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("crop %v, canvas %dx%d", crop.Region, ext.Width, ext.Height)
//		_ = cg.SaveImage(canvas, "photo_outpaint.png", "png")
//	}
//
// The package consists of these components:
//
//  1. Geometry (pkg/geometry): fit, crop and extension math
//  2. Cropper (pkg/cropper): the interactive crop rectangle and image cropping
//  3. Viewport (pkg/viewport): zoom and pan
//  4. Editor (pkg/editor): the state controller tying the above together
//  5. Processing (pkg/processing): raster loading, saving and previews
//  6. Detection (pkg/detection): focus locators for automatic crops
//  7. Inference (pkg/inference): the client for the generation service
package canvasgeometry

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/menta2k/canvas-geometry/pkg/analyzer"
	"github.com/menta2k/canvas-geometry/pkg/cropper"
	"github.com/menta2k/canvas-geometry/pkg/detection"
	"github.com/menta2k/canvas-geometry/pkg/editor"
	"github.com/menta2k/canvas-geometry/pkg/geometry"
	"github.com/menta2k/canvas-geometry/pkg/processing"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

// Version of the canvas geometry library
const Version = "1.0.0"

// Options configures a CanvasGeometry.
type Options struct {
	Analyzer analyzer.Config
	Cropper  cropper.Config
	// Step is the outpaint quantization; 0 means geometry.DefaultStep.
	Step int
	// Quality is used when saving jpg and webp output.
	Quality  int
	Lossless bool
	// Fill colors the area added by Extend. nil leaves it transparent.
	Fill color.Color
}

// DefaultOptions returns the options used by New.
func DefaultOptions() Options {
	return Options{
		Analyzer: analyzer.DefaultConfig(),
		Step:     geometry.DefaultStep,
		Quality:  90,
	}
}

// CanvasGeometry provides a high-level interface for batch cropping and
// canvas extension
type CanvasGeometry struct {
	opts      Options
	analyzer  *analyzer.ImageAnalyzer
	cropper   *cropper.Cropper
	processor *processing.Processor
}

// New creates a CanvasGeometry with default configuration
func New() *CanvasGeometry {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a CanvasGeometry with custom configuration
func NewWithOptions(opts Options) *CanvasGeometry {
	if opts.Step <= 0 {
		opts.Step = geometry.DefaultStep
	}
	if opts.Quality <= 0 {
		opts.Quality = 90
	}
	opts.Analyzer.Step = opts.Step
	return &CanvasGeometry{
		opts:      opts,
		analyzer:  analyzer.NewWithConfig(opts.Analyzer),
		cropper:   cropper.NewWithConfig(opts.Cropper),
		processor: processing.NewProcessor(),
	}
}

// SetLocator makes ratio crops follow the focus found by l.
func (cg *CanvasGeometry) SetLocator(l detection.Locator) {
	cg.cropper.SetLocator(l)
}

// LoadImage loads an image from a file path or URL and validates its size
func (cg *CanvasGeometry) LoadImage(ctx context.Context, source string) (image.Image, error) {
	img, err := cg.processor.LoadImageSmart(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	if err := cg.analyzer.Validate(img); err != nil {
		return nil, fmt.Errorf("image validation failed: %w", err)
	}
	return img, nil
}

// SaveImage saves an image in the given format
func (cg *CanvasGeometry) SaveImage(img image.Image, path, format string) error {
	return cg.processor.SaveImage(img, path, format, cg.opts.Quality, cg.opts.Lossless)
}

// Inspect returns basic information about an image
func (cg *CanvasGeometry) Inspect(img image.Image) analyzer.Info {
	return cg.analyzer.Inspect(img)
}

// Plan returns the crop and extension for every preset
func (cg *CanvasGeometry) Plan(img image.Image) ([]analyzer.Plan, error) {
	return cg.analyzer.PlanAll(img)
}

// Fit scales an image into a container of the given size
func (cg *CanvasGeometry) Fit(img image.Image, container types.Dimensions) (geometry.Fit, error) {
	return geometry.FitToContainer(types.DimensionsOf(img), container)
}

// CropToAspectRatio crops an image to a specific aspect ratio
func (cg *CanvasGeometry) CropToAspectRatio(ctx context.Context, img image.Image, ar geometry.AspectRatio) (cropper.CropResult, error) {
	return cg.cropper.CropToAspectRatio(ctx, img, ar)
}

// CropToMultipleRatios crops an image to several aspect ratios concurrently
func (cg *CanvasGeometry) CropToMultipleRatios(ctx context.Context, img image.Image, ratios []geometry.AspectRatio) ([]cropper.CropResult, error) {
	return cg.cropper.CropToMultipleRatios(ctx, img, ratios)
}

// Extend grows the canvas of img to ratio ar, centering the original. The
// new area is what an outpainting model is asked to fill.
func (cg *CanvasGeometry) Extend(img image.Image, ar geometry.AspectRatio) (*image.NRGBA, types.ExtensionResult, error) {
	r, ok := ar.Value()
	if !ok {
		return nil, types.ExtensionResult{}, fmt.Errorf("extend %s: %w", ar, geometry.ErrInvalidRatio)
	}
	ext, err := geometry.ExtensionForRatio(types.DimensionsOf(img), r, cg.opts.Step)
	if err != nil {
		return nil, types.ExtensionResult{}, err
	}
	canvas, err := processing.ExtendCanvas(img, ext, cg.opts.Fill)
	if err != nil {
		return nil, types.ExtensionResult{}, err
	}
	return canvas, ext, nil
}

// ExtendBy grows the canvas of img by explicit amounts on both axes.
func (cg *CanvasGeometry) ExtendBy(img image.Image, width, height int) (*image.NRGBA, types.ExtensionResult, error) {
	ext, err := geometry.ManualExtension(types.DimensionsOf(img), width, height)
	if err != nil {
		return nil, types.ExtensionResult{}, err
	}
	canvas, err := processing.ExtendCanvas(img, ext, cg.opts.Fill)
	if err != nil {
		return nil, types.ExtensionResult{}, err
	}
	return canvas, ext, nil
}

// NewEditor returns an editor controller configured like cg, for an image
// shown in a container of the given size.
func (cg *CanvasGeometry) NewEditor(container types.Dimensions) *editor.Controller {
	return editor.NewController(editor.Options{
		Step:      cg.opts.Step,
		Container: container,
	})
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
