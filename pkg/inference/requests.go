package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/menta2k/canvas-geometry/pkg/processing"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

// OutpaintSettings are the generation parameters of an outpaint run. A nil
// Seed asks the service for a random one.
type OutpaintSettings struct {
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	GuidanceScale  float64 `json:"guidance_scale"`
	NumSteps       int     `json:"num_steps"`
	Seed           *int64  `json:"seed"`
	ExtendWidth    int     `json:"extend_width"`
	ExtendHeight   int     `json:"extend_height"`
	NumSamples     int     `json:"num_samples"`
}

// DefaultOutpaintSettings returns the editor's initial generation settings.
func DefaultOutpaintSettings() OutpaintSettings {
	return OutpaintSettings{
		GuidanceScale: 7.5,
		NumSteps:      30,
		NumSamples:    1,
	}
}

// WithExtension copies the extension amounts of ext into s.
func (s OutpaintSettings) WithExtension(ext types.ExtensionResult) OutpaintSettings {
	s.ExtendWidth = ext.ExtendWidth
	s.ExtendHeight = ext.ExtendHeight
	return s
}

type outpaintResponse struct {
	Images []string `json:"images"`
}

// Outpaint sends img with the extension amounts in settings and returns the
// generated canvases, one per sample.
func (c *Client) Outpaint(ctx context.Context, img image.Image, settings OutpaintSettings) ([]image.Image, error) {
	if img == nil {
		return nil, ErrNoImage
	}
	if settings.ExtendWidth < 0 || settings.ExtendHeight < 0 {
		return nil, fmt.Errorf("outpaint: negative extension %dx%d", settings.ExtendWidth, settings.ExtendHeight)
	}
	if settings.NumSamples <= 0 {
		settings.NumSamples = 1
	}

	data, err := processing.EncodeBytes(img, "png", 0)
	if err != nil {
		return nil, err
	}
	js, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}

	body, err := c.postMultipart(ctx, "/api/process-image",
		map[string]string{"settings": string(js)},
		formFile{field: "file", name: "image.png", data: data})
	if err != nil {
		return nil, fmt.Errorf("outpaint: %w", err)
	}

	var resp outpaintResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("outpaint: failed to parse response: %w", err)
	}
	if len(resp.Images) == 0 {
		return nil, fmt.Errorf("outpaint: %w", ErrNoResult)
	}

	out := make([]image.Image, 0, len(resp.Images))
	for i, b64 := range resp.Images {
		im, err := processing.DecodeDataURL(b64)
		if err != nil {
			return nil, fmt.Errorf("outpaint: image %d: %w", i, err)
		}
		out = append(out, im)
	}
	return out, nil
}

// InpaintRequest regenerates the painted area of Mask in Image.
type InpaintRequest struct {
	ModelType      string
	Prompt         string
	NegativePrompt string
	Steps          int
	GuidanceScale  float64
	Seed           int64
	Image          image.Image
	Mask           image.Image
}

type inpaintPayload struct {
	ModelType      string  `json:"model_type"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negative_prompt"`
	Steps          int     `json:"steps"`
	GuidanceScale  float64 `json:"guidance_scale"`
	Seed           int64   `json:"seed"`
	Image          string  `json:"image"`
	Mask           string  `json:"mask"`
}

// Inpaint sends req and returns the processed image. An empty prompt or an
// unpainted mask is rejected without contacting the service.
func (c *Client) Inpaint(ctx context.Context, req InpaintRequest) (image.Image, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if req.Image == nil {
		return nil, ErrNoImage
	}
	if req.Mask == nil || !processing.MaskHasContent(req.Mask) {
		return nil, ErrEmptyMask
	}

	imgURL, err := processing.DataURL(req.Image, "png", 0)
	if err != nil {
		return nil, err
	}
	maskURL, err := processing.DataURL(req.Mask, "png", 0)
	if err != nil {
		return nil, err
	}

	var resp struct {
		ProcessedImage string `json:"processed_image"`
	}
	err = c.postJSON(ctx, "/api/inpaint", inpaintPayload{
		ModelType:      req.ModelType,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Steps:          req.Steps,
		GuidanceScale:  req.GuidanceScale,
		Seed:           req.Seed,
		Image:          imgURL,
		Mask:           maskURL,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("inpaint: %w", err)
	}
	return decodeResult("inpaint", resp.ProcessedImage)
}

// Segment asks the segmentation model for a mask of the object under points.
// Points are normalized to [0,1] over the image.
func (c *Client) Segment(ctx context.Context, img image.Image, points []types.Point) (image.Image, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if img == nil {
		return nil, ErrNoImage
	}
	imgURL, err := processing.DataURL(img, "png", 0)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Mask string `json:"mask"`
	}
	payload := struct {
		Points []types.Point `json:"points"`
		Image  string        `json:"image"`
	}{points, imgURL}
	if err := c.postJSON(ctx, "/api/sam", payload, &resp); err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	return decodeResult("segment", resp.Mask)
}

// Enhance upscales img by scale, usually 2 or 4.
func (c *Client) Enhance(ctx context.Context, img image.Image, scale int) (image.Image, error) {
	if img == nil {
		return nil, ErrNoImage
	}
	if scale < 1 {
		return nil, fmt.Errorf("scale %d: %w", scale, ErrBadScale)
	}
	data, err := processing.EncodeBytes(img, "png", 0)
	if err != nil {
		return nil, err
	}

	body, err := c.postMultipart(ctx, "/enhance/",
		map[string]string{"scale": strconv.Itoa(scale)},
		formFile{field: "file", name: "image.png", data: data})
	if err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}
	out, err := processing.DecodeBytes(body)
	if err != nil {
		return nil, fmt.Errorf("enhance: %w", err)
	}
	return out, nil
}

func decodeResult(op, b64 string) (image.Image, error) {
	if b64 == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoResult)
	}
	img, err := processing.DecodeDataURL(b64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return img, nil
}
