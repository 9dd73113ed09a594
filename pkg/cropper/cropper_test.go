package cropper

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/canvas-geometry/pkg/geometry"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

type fixedLocator struct {
	focus types.Point
	err   error
}

func (l fixedLocator) Locate(ctx context.Context, img image.Image) (types.Point, error) {
	return l.focus, l.err
}

func TestCropToRect(t *testing.T) {
	c := New()
	img := createTestImage(200, 100)

	res, err := c.CropToRect(img, types.Rect{X: 150, Y: 50, Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("CropToRect failed: %v", err)
	}
	if b := res.Image.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
		t.Errorf("Expected 50x50 after clamping, got %dx%d", b.Dx(), b.Dy())
	}
	if res.Coverage != 0.125 {
		t.Errorf("Expected coverage 0.125, got %f", res.Coverage)
	}

	if _, err := c.CropToRect(img, types.Rect{X: 300, Y: 0, Width: 10, Height: 10}); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("Expected ErrEmptyRegion, got %v", err)
	}
}

func TestCropToRectOffsetBounds(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 100, 100))
	base.Set(60, 60, color.RGBA{255, 0, 0, 255})
	sub := base.SubImage(image.Rect(50, 50, 100, 100))

	res, err := New().CropToRect(sub, types.Rect{X: 10, Y: 10, Width: 5, Height: 5})
	if err != nil {
		t.Fatalf("CropToRect failed: %v", err)
	}
	r, _, _, _ := res.Image.At(0, 0).RGBA()
	if r>>8 != 255 {
		t.Errorf("Expected the red pixel at the crop origin, got r=%d", r>>8)
	}
}

func TestCropToRatioCentered(t *testing.T) {
	c := New()
	img := createTestImage(200, 100)

	res, err := c.CropToRatio(context.Background(), img, 1)
	if err != nil {
		t.Fatalf("CropToRatio failed: %v", err)
	}
	if want := (types.Rect{X: 50, Y: 0, Width: 100, Height: 100}); res.Region != want {
		t.Errorf("Expected %+v, got %+v", want, res.Region)
	}
	if res.AspectRatio != 1 {
		t.Errorf("Expected aspect ratio 1, got %f", res.AspectRatio)
	}
}

func TestCropToRatioUsesLocator(t *testing.T) {
	c := New()
	img := createTestImage(200, 100)

	c.SetLocator(fixedLocator{focus: types.Point{X: 0, Y: 0.5}})
	res, err := c.CropToRatio(context.Background(), img, 1)
	if err != nil {
		t.Fatalf("CropToRatio failed: %v", err)
	}
	if res.Region.X != 0 || res.Region.Width != 100 {
		t.Errorf("Expected crop pushed to the left edge, got %+v", res.Region)
	}

	c.SetLocator(fixedLocator{err: errors.New("model offline")})
	res, err = c.CropToRatio(context.Background(), img, 1)
	if err != nil {
		t.Fatalf("Expected locator failure to fall back, got %v", err)
	}
	if res.Region.X != 50 {
		t.Errorf("Expected centered fallback, got %+v", res.Region)
	}
}

func TestCropToAspectRatioCustomKeepsFrame(t *testing.T) {
	img := createTestImage(120, 80)
	res, err := New().CropToAspectRatio(context.Background(), img, geometry.Custom)
	if err != nil {
		t.Fatalf("CropToAspectRatio failed: %v", err)
	}
	if res.Coverage != 1 {
		t.Errorf("Expected the full frame, got coverage %f", res.Coverage)
	}
}

func TestCropToMultipleRatios(t *testing.T) {
	c := NewWithConfig(Config{Workers: 2})
	img := createTestImage(320, 240)

	ratios := geometry.Presets()
	results, err := c.CropToMultipleRatios(context.Background(), img, ratios)
	if err != nil {
		t.Fatalf("CropToMultipleRatios failed: %v", err)
	}
	if len(results) != len(ratios) {
		t.Fatalf("Expected %d results, got %d", len(ratios), len(results))
	}
	for i, res := range results {
		want, _ := ratios[i].Value()
		if res.AspectRatio != want {
			t.Errorf("Result %d: expected ratio %f, got %f", i, want, res.AspectRatio)
		}
		b := res.Image.Bounds()
		if b.Dx() > 320 || b.Dy() > 240 {
			t.Errorf("Result %d exceeds the source: %v", i, b)
		}
	}
}

func TestCropToSize(t *testing.T) {
	c := New()
	img := createTestImage(400, 300)

	res, err := c.CropToSize(context.Background(), img, 160, 90)
	if err != nil {
		t.Fatalf("CropToSize failed: %v", err)
	}
	if b := res.Image.Bounds(); b.Dx() != 160 || b.Dy() != 90 {
		t.Errorf("Expected 160x90, got %dx%d", b.Dx(), b.Dy())
	}

	if _, err := c.CropToSize(context.Background(), img, 800, 600); err == nil {
		t.Error("Expected an error when upscaling is disabled")
	}

	c = NewWithConfig(Config{AllowUpscaling: true})
	if _, err := c.CropToSize(context.Background(), img, 800, 600); err != nil {
		t.Errorf("Expected upscaling to be allowed, got %v", err)
	}
}
