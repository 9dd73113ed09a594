package detection

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	pigo "github.com/esimov/pigo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

type fakeVision struct {
	answer string
	err    error

	gotModel  string
	gotPrompt string
	gotImage  string
}

func (f *fakeVision) Query(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	f.gotModel, f.gotPrompt, f.gotImage = model, prompt, imgB64
	return f.answer, f.err
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 255 / w), uint8(y * 255 / h), 128, 255})
		}
	}
	return img
}

func TestCenterLocator(t *testing.T) {
	p, err := CenterLocator{}.Locate(context.Background(), testImage(10, 10))
	require.NoError(t, err)
	assert.Equal(t, Center, p)
}

func TestNew(t *testing.T) {
	l, err := New("")
	require.NoError(t, err)
	assert.IsType(t, CenterLocator{}, l)

	l, err = New("SmartCrop")
	require.NoError(t, err)
	assert.IsType(t, &SmartcropLocator{}, l)

	_, err = New("face")
	assert.Error(t, err)
}

func TestSmartcropLocator(t *testing.T) {
	l := NewSmartcropLocator()
	p, err := l.Locate(context.Background(), testImage(120, 80))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.X, 0.0)
	assert.LessOrEqual(t, p.X, 1.0)
	assert.GreaterOrEqual(t, p.Y, 0.0)
	assert.LessOrEqual(t, p.Y, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Locate(ctx, testImage(120, 80))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizedCenter(t *testing.T) {
	p := normalizedCenter(image.Rect(0, 0, 100, 100), 200, 100)
	assert.Equal(t, types.Point{X: 0.25, Y: 0.5}, p)
}

func TestFocusFromDetections(t *testing.T) {
	dets := []pigo.Detection{
		{Row: 50, Col: 20, Scale: 30, Q: 4},
		{Row: 30, Col: 150, Scale: 40, Q: 12},
		{Row: 80, Col: 100, Scale: 40, Q: 9},
	}
	p, ok := focusFromDetections(dets, 200, 100, 5)
	require.True(t, ok)
	assert.InDelta(t, 0.75, p.X, 1e-9)
	assert.InDelta(t, 0.30, p.Y, 1e-9)

	_, ok = focusFromDetections(dets[:1], 200, 100, 5)
	assert.False(t, ok, "detections under the quality bar are ignored")

	_, ok = focusFromDetections(nil, 200, 100, 0)
	assert.False(t, ok)
}

func TestNewFaceLocatorRejectsEmptyCascade(t *testing.T) {
	_, err := NewFaceLocator(nil, DefaultFaceParams())
	assert.Error(t, err)

	_, err = NewFaceLocatorFromFile("/nonexistent/facefinder", DefaultFaceParams())
	assert.Error(t, err)
}

func TestParseSubjectResult(t *testing.T) {
	raw := "```json\n{\n  \"primary\": {\"label\": \"Dog\", \"confidence\": 0.9, \"box\": {\"x\": 0.6, \"y\": 0.2, \"w\": 0.3, \"h\": 0.5}, \"cx\": 0.75, \"cy\": 0.45}, // subject\n  /* extra */\n  \"description\": \"a dog on grass\",\n  \"tags\": [\"Dog\", \"dog\", \" grass \", \"\",],\n}\n```"

	r := ParseSubjectResult(raw)
	assert.Equal(t, "Dog", r.Primary.Label)
	assert.InDelta(t, 0.75, r.Primary.Cx, 1e-9)
	assert.Equal(t, []string{"dog", "grass"}, r.Tags)
}

func TestParseSubjectResultFallbacks(t *testing.T) {
	r := ParseSubjectResult("I see a dog.")
	assert.Equal(t, "unclear image", r.Primary.Label)
	assert.Contains(t, r.Tags, "fallback")

	r = ParseSubjectResult(`{"primary": {"label": 12}}`)
	assert.Equal(t, "parse error", r.Primary.Label)
	assert.Equal(t, Center, SubjectFocus(r))
}

func TestParseSubjectResultDerivesCenter(t *testing.T) {
	r := ParseSubjectResult(`{"primary":{"label":"car","box":{"x":0.1,"y":0.2,"w":0.4,"h":0.2}}}`)
	assert.InDelta(t, 0.3, r.Primary.Cx, 1e-9)
	assert.InDelta(t, 0.3, r.Primary.Cy, 1e-9)
}

func TestParseSubjectResultClampsBox(t *testing.T) {
	r := ParseSubjectResult(`{"primary":{"label":"car","box":{"x":0.8,"y":-0.5,"w":0.6,"h":2},"cx":0.9,"cy":0.5}}`)
	assert.Equal(t, types.Box{X: 0.8, Y: 0, W: 1 - 0.8, H: 1}, r.Primary.Box)
}

func TestSubjectFocus(t *testing.T) {
	r := &types.SubjectResult{Primary: types.Subject{
		Label: "person",
		Box:   types.Box{X: 0.1, Y: 0.1, W: 0.2, H: 0.2},
		Cx:    0.9,
		Cy:    0.2,
	}}
	p := SubjectFocus(r)
	assert.InDelta(t, 0.3, p.X, 1e-9)
	assert.InDelta(t, 0.2, p.Y, 1e-9)

	r.Primary.Label = "none"
	assert.Equal(t, Center, SubjectFocus(r))
	assert.Equal(t, Center, SubjectFocus(nil))
}

func TestModelLocator(t *testing.T) {
	fake := &fakeVision{answer: `{"primary":{"label":"cat","confidence":0.8,"box":{"x":0.5,"y":0.5,"w":0.4,"h":0.4},"cx":0.7,"cy":0.6},"description":"a cat","tags":["cat"]}`}
	l := NewModelLocator(fake, "llava")

	p, err := l.Locate(context.Background(), testImage(64, 48))
	require.NoError(t, err)
	assert.InDelta(t, 0.7, p.X, 1e-9)
	assert.InDelta(t, 0.6, p.Y, 1e-9)
	assert.Equal(t, "llava", fake.gotModel)
	assert.Equal(t, DefaultPrompt, fake.gotPrompt)
	assert.NotEmpty(t, fake.gotImage)

	l.SetPrompt("where is it?")
	_, err = l.Locate(context.Background(), testImage(64, 48))
	require.NoError(t, err)
	assert.Equal(t, "where is it?", fake.gotPrompt)
}

func TestModelLocatorErrors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewModelLocator(&fakeVision{err: boom}, "m").Locate(context.Background(), testImage(8, 8))
	assert.ErrorIs(t, err, boom)

	_, err = NewModelLocator(&fakeVision{answer: "  "}, "m").Locate(context.Background(), testImage(8, 8))
	assert.Error(t, err)
}
