package analyzer

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/menta2k/canvas-geometry/pkg/geometry"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooSmall          = errors.New("image too small")
	ErrTooLarge          = errors.New("image too large")
)

// ImageAnalyzer inspects images before they enter the editor
type ImageAnalyzer struct {
	config Config
}

// Config holds the limits an editable image must meet
type Config struct {
	SupportedFormats []string
	MinImageSize     int
	// MaxImageSize bounds the longer side; 0 means unlimited.
	MaxImageSize int
	// Step is the outpaint quantization used by Plan.
	Step int
}

// DefaultConfig returns the limits used by New.
func DefaultConfig() Config {
	return Config{
		SupportedFormats: []string{"jpeg", "png", "webp"},
		MinImageSize:     64,
		MaxImageSize:     8192,
		Step:             geometry.DefaultStep,
	}
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{config: DefaultConfig()}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	if config.Step <= 0 {
		config.Step = geometry.DefaultStep
	}
	return &ImageAnalyzer{config: config}
}

// Info contains basic image metadata
type Info struct {
	Width         int                  `json:"width"`
	Height        int                  `json:"height"`
	AspectRatio   float64              `json:"aspect_ratio"`
	Area          int                  `json:"area"`
	Orientation   string               `json:"orientation"`
	NearestPreset geometry.AspectRatio `json:"nearest_preset"`
}

// Dimensions returns the size as a types.Dimensions.
func (i Info) Dimensions() types.Dimensions {
	return types.Dimensions{Width: float64(i.Width), Height: float64(i.Height)}
}

// Inspect returns basic information about an image
func (a *ImageAnalyzer) Inspect(img image.Image) Info {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	info := Info{
		Width:       width,
		Height:      height,
		Area:        width * height,
		Orientation: "square",
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
		info.NearestPreset = geometry.NearestPreset(info.AspectRatio)
	}
	switch {
	case width > height:
		info.Orientation = "landscape"
	case width < height:
		info.Orientation = "portrait"
	}
	return info
}

// Validate checks if an image meets the size limits
func (a *ImageAnalyzer) Validate(img image.Image) error {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < a.config.MinImageSize || h < a.config.MinImageSize {
		return fmt.Errorf("%w: %dx%d (minimum: %d)", ErrTooSmall, w, h, a.config.MinImageSize)
	}
	if a.config.MaxImageSize > 0 && max(w, h) > a.config.MaxImageSize {
		return fmt.Errorf("%w: %dx%d (maximum: %d)", ErrTooLarge, w, h, a.config.MaxImageSize)
	}
	return nil
}

// Decode reads an image and checks its format against the supported list
func (a *ImageAnalyzer) Decode(reader io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if !a.isFormatSupported(format) {
		return nil, format, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return img, format, nil
}

// Plan is what it takes to bring an image to one aspect ratio, either by
// cropping or by growing the canvas.
type Plan struct {
	Ratio     geometry.AspectRatio  `json:"ratio"`
	Crop      types.Rect            `json:"crop"`
	Extension types.ExtensionResult `json:"extension"`
	AIPercent int                   `json:"ai_percent"`
}

// Plan computes the crop and the extension for ratio ar.
func (a *ImageAnalyzer) Plan(img image.Image, ar geometry.AspectRatio) (Plan, error) {
	r, ok := ar.Value()
	if !ok {
		return Plan{}, fmt.Errorf("plan %s: %w", ar, geometry.ErrInvalidRatio)
	}
	dims := types.DimensionsOf(img)

	crop, err := geometry.PixelCropForRatio(dims, r)
	if err != nil {
		return Plan{}, err
	}
	ext, err := geometry.ExtensionForRatio(dims, r, a.config.Step)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Ratio:     ar,
		Crop:      crop,
		Extension: ext,
		AIPercent: geometry.AIContentPercentage(dims, ext.Size()),
	}, nil
}

// PlanAll runs Plan for every preset.
func (a *ImageAnalyzer) PlanAll(img image.Image) ([]Plan, error) {
	presets := geometry.Presets()
	plans := make([]Plan, 0, len(presets))
	for _, p := range presets {
		plan, err := a.Plan(img, p)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}
