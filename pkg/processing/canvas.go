package processing

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/menta2k/canvas-geometry/pkg/geometry"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

// ErrBadDataURL is returned for strings that are not base64 image data URLs.
var ErrBadDataURL = errors.New("malformed data URL")

// Preview colors
var (
	gold    = color.NRGBA{255, 204, 0, 255}
	checkA  = color.NRGBA{58, 58, 58, 255}
	checkB  = color.NRGBA{74, 74, 74, 255}
	dimming = 0.5
)

// CropImage cuts rect, in image pixels, out of img. rect is clamped to the
// image first.
func CropImage(img image.Image, rect types.Rect) (*image.NRGBA, error) {
	size := types.DimensionsOf(img)
	r := geometry.ClampRect(rect.Normalize(), size).Round()
	if r.Empty() {
		return nil, fmt.Errorf("empty crop rectangle %+v", rect)
	}
	return imaging.Crop(img, r.Image().Add(img.Bounds().Min)), nil
}

// ExtendCanvas returns a canvas of the extended size filled with fill, with
// img placed at floor(extend/2) on each axis. A nil fill is transparent.
func ExtendCanvas(img image.Image, ext types.ExtensionResult, fill color.Color) (*image.NRGBA, error) {
	b := img.Bounds()
	if ext.Width < b.Dx() || ext.Height < b.Dy() {
		return nil, fmt.Errorf("extended canvas %dx%d is smaller than image %dx%d: %w",
			ext.Width, ext.Height, b.Dx(), b.Dy(), geometry.ErrInvalidDimensions)
	}
	if fill == nil {
		fill = color.Transparent
	}
	canvas := imaging.New(ext.Width, ext.Height, fill)
	return imaging.Paste(canvas, img, ext.Offset()), nil
}

// CropPreview dims everything outside rect and outlines it in gold.
func CropPreview(img image.Image, rect types.Rect) *image.NRGBA {
	out := imaging.Clone(img)
	b := out.Bounds()
	sel := geometry.ClampRect(rect.Normalize(), types.DimensionsOf(out)).Image()

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if image.Pt(x, y).In(sel) {
				continue
			}
			i := y*out.Stride + x*4
			out.Pix[i+0] = uint8(float64(out.Pix[i+0]) * dimming)
			out.Pix[i+1] = uint8(float64(out.Pix[i+1]) * dimming)
			out.Pix[i+2] = uint8(float64(out.Pix[i+2]) * dimming)
		}
	}

	drawRect(out, sel, gold, strokeFor(b))
	return out
}

// ExtensionPreview shows the extended canvas with the generated area as a
// checkerboard and the original outlined in gold.
func ExtensionPreview(img image.Image, ext types.ExtensionResult) (*image.NRGBA, error) {
	canvas, err := ExtendCanvas(img, ext, checkA)
	if err != nil {
		return nil, err
	}

	cell := int(math.Max(8, float64(minInt(ext.Width, ext.Height))/32))
	inner := image.Rectangle{Min: ext.Offset(), Max: ext.Offset().Add(img.Bounds().Size())}
	for y := 0; y < ext.Height; y++ {
		for x := 0; x < ext.Width; x++ {
			if image.Pt(x, y).In(inner) || (x/cell+y/cell)%2 == 0 {
				continue
			}
			canvas.SetNRGBA(x, y, checkB)
		}
	}

	drawRect(canvas, inner, gold, strokeFor(canvas.Bounds()))
	return canvas, nil
}

// MaskHasContent reports whether any pixel of an inpainting mask has been
// painted. Brush strokes are red, so only the red channel is inspected.
func MaskHasContent(mask image.Image) bool {
	b := mask.Bounds()
	if m, ok := mask.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			row := m.Pix[y*m.Stride : y*m.Stride+b.Dx()*4]
			for i := 0; i < len(row); i += 4 {
				if row[i] > 0 {
					return true
				}
			}
		}
		return false
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := mask.At(x, y).RGBA(); r > 0 {
				return true
			}
		}
	}
	return false
}

// DataURL encodes img as a base64 data URL.
func DataURL(img image.Image, format string, quality int) (string, error) {
	data, err := EncodeBytes(img, format, quality)
	if err != nil {
		return "", err
	}
	return "data:" + MimeType(format) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL decodes a data URL. A bare base64 payload is accepted too.
func DecodeDataURL(s string) (image.Image, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		meta, rest, ok := strings.Cut(s, ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, ErrBadDataURL
		}
		payload = rest
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return DecodeBytes(data)
}

func strokeFor(b image.Rectangle) int {
	return int(math.Max(2, 0.004*float64(minInt(b.Dx(), b.Dy()))))
}
