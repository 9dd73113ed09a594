package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/menta2k/canvas-geometry/internal/logging"
	"github.com/menta2k/canvas-geometry/pkg/client"
	"github.com/menta2k/canvas-geometry/pkg/processing"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

// DefaultPrompt asks a vision model where the subject of a photo is
const DefaultPrompt = `You are an image subject locator used to position a crop.

Return JSON only:
{
  "primary": {
    "label": "string",
    "confidence": 0.0,
    "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0},
    "cx": 0.0,
    "cy": 0.0
  },
  "description": "short neutral sentence (≤ 20 words)",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels).
- The box should tightly include the visually dominant subject (prefer people/vehicles/animals; else the most salient object).
- (cx, cy) is the point a crop should be centered on and must lie inside the box.
- Description must be brief and factual. Do not guess real identities.
- Tags: lowercase, concise, no punctuation or duplicates.
- If no subject is found, return:
  {
    "primary":{"label":"none","confidence":0.0,"box":{"x":0.25,"y":0.25,"w":0.50,"h":0.50},"cx":0.5,"cy":0.5},
    "description":"centered generic scene",
    "tags":["generic","center","subject","photo","scene"]
  }
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// ModelLocator asks a vision model for the primary subject.
type ModelLocator struct {
	client client.VisionClient
	model  string
	prompt string
	maxDim int
}

// NewModelLocator creates a locator backed by a vision client
func NewModelLocator(c client.VisionClient, model string) *ModelLocator {
	return &ModelLocator{client: c, model: model, prompt: DefaultPrompt, maxDim: 1024}
}

// SetPrompt replaces the subject prompt.
func (l *ModelLocator) SetPrompt(prompt string) { l.prompt = prompt }

// Detect returns the model's full answer for img.
func (l *ModelLocator) Detect(ctx context.Context, img image.Image) (*types.SubjectResult, error) {
	b64, err := processing.EncodeBase64(img, "jpeg", l.maxDim, 85)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	raw, err := l.client.Query(ctx, l.model, l.prompt, b64)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty response from vision model")
	}

	result := ParseSubjectResult(raw)
	logging.Debugf("vision model: label=%q confidence=%.2f center=%.3f,%.3f",
		result.Primary.Label, result.Primary.Confidence, result.Primary.Cx, result.Primary.Cy)
	return result, nil
}

func (l *ModelLocator) Locate(ctx context.Context, img image.Image) (types.Point, error) {
	result, err := l.Detect(ctx, img)
	if err != nil {
		return types.Point{}, err
	}
	return SubjectFocus(result), nil
}

// SubjectFocus returns the crop focus for a model answer: the reported center
// pulled inside the subject box, or the image center when there is no subject.
func SubjectFocus(r *types.SubjectResult) types.Point {
	if r == nil || isFallback(r) {
		return Center
	}
	box := r.Primary.Box
	cx, cy := r.Primary.Cx, r.Primary.Cy
	if box.W > 0 && box.H > 0 {
		cx = clamp(cx, box.X, box.X+box.W)
		cy = clamp(cy, box.Y, box.Y+box.H)
	}
	return types.Point{X: clamp(cx, 0, 1), Y: clamp(cy, 0, 1)}
}

func isFallback(r *types.SubjectResult) bool {
	label := strings.ToLower(r.Primary.Label)
	if label == "" || label == "none" {
		return true
	}
	for _, tag := range r.Tags {
		if tag == "fallback" {
			return true
		}
	}
	return false
}

// fallbackResult is returned when the model answer cannot be used
func fallbackResult(label, description string, tags ...string) *types.SubjectResult {
	return &types.SubjectResult{
		Primary: types.Subject{
			Label:      label,
			Confidence: 0.1,
			Box:        types.Box{X: 0.25, Y: 0.25, W: 0.5, H: 0.5},
			Cx:         0.5,
			Cy:         0.5,
		},
		Description: description,
		Tags:        append(tags, "fallback"),
	}
}

// ParseSubjectResult parses a model answer. Malformed answers never fail;
// they come back as a centered result tagged "fallback".
func ParseSubjectResult(raw string) *types.SubjectResult {
	raw = sanitizeModelJSON(raw)

	if !strings.HasPrefix(raw, "{") {
		return fallbackResult("unclear image", "Model returned non-JSON response", "non-json")
	}

	var result types.SubjectResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return fallbackResult("parse error", "Failed to parse model response", "parse-error")
	}

	result.Primary.Box = normalizeBox(result.Primary.Box)
	result.Tags = normalizeTags(result.Tags)
	if result.Primary.Cx == 0 && result.Primary.Cy == 0 {
		b := result.Primary.Box
		result.Primary.Cx = b.X + b.W/2
		result.Primary.Cy = b.Y + b.H/2
	}
	return &result
}

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	reInlineComment = regexp.MustCompile(`(?m)\s//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// sanitizeModelJSON removes code fences, comments, and trailing commas from JSON response
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reInlineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	// keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

// normalizeBox keeps box coordinates inside [0,1]
func normalizeBox(b types.Box) types.Box {
	x := clamp(b.X, 0, 1)
	y := clamp(b.Y, 0, 1)
	return types.Box{
		X: x,
		Y: y,
		W: clamp(b.W, 0, 1-x),
		H: clamp(b.H, 0, 1-y),
	}
}

// normalizeTags ensures tags are cleaned and limited to 5 entries
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 5)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == 5 {
			break
		}
	}
	return out
}
