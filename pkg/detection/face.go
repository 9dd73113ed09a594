package detection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

// FaceParams tunes the pigo cascade run.
type FaceParams struct {
	MinSize      int
	MaxSize      int
	ShiftFactor  float64
	ScaleFactor  float64
	IoUThreshold float64
	// MinQuality is the lowest detection score accepted as a face.
	MinQuality float32
}

// DefaultFaceParams returns the settings used for photos up to a few
// thousand pixels on a side.
func DefaultFaceParams() FaceParams {
	return FaceParams{
		MinSize:      20,
		MaxSize:      2000,
		ShiftFactor:  0.1,
		ScaleFactor:  1.1,
		IoUThreshold: 0.2,
		MinQuality:   5.0,
	}
}

// FaceLocator focuses on the strongest face found by a pigo cascade.
type FaceLocator struct {
	classifier *pigo.Pigo
	params     FaceParams
}

// NewFaceLocator unpacks a pigo cascade (e.g. the "facefinder" model).
func NewFaceLocator(cascade []byte, params FaceParams) (*FaceLocator, error) {
	if len(cascade) == 0 {
		return nil, errors.New("empty face cascade")
	}
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack face cascade: %w", err)
	}
	return &FaceLocator{classifier: classifier, params: params}, nil
}

// NewFaceLocatorFromFile reads the cascade from disk.
func NewFaceLocatorFromFile(path string, params FaceParams) (*FaceLocator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read face cascade: %w", err)
	}
	return NewFaceLocator(data, params)
}

func (l *FaceLocator) Locate(ctx context.Context, img image.Image) (types.Point, error) {
	if err := ctx.Err(); err != nil {
		return types.Point{}, err
	}

	src := imaging.Clone(img)
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()

	maxSize := l.params.MaxSize
	if side := min(cols, rows); maxSize <= 0 || maxSize > side {
		maxSize = side
	}

	cp := pigo.CascadeParams{
		MinSize:     l.params.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: l.params.ShiftFactor,
		ScaleFactor: l.params.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := l.classifier.RunCascade(cp, 0.0)
	dets = l.classifier.ClusterDetections(dets, l.params.IoUThreshold)

	p, ok := focusFromDetections(dets, cols, rows, l.params.MinQuality)
	if !ok {
		return types.Point{}, ErrNoFace
	}
	return p, nil
}

// focusFromDetections returns the center of the best-scoring detection above
// minQ, normalized to the image size.
func focusFromDetections(dets []pigo.Detection, cols, rows int, minQ float32) (types.Point, bool) {
	best := -1
	for i, d := range dets {
		if d.Q < minQ {
			continue
		}
		if best < 0 || d.Q > dets[best].Q {
			best = i
		}
	}
	if best < 0 || cols <= 0 || rows <= 0 {
		return types.Point{}, false
	}

	d := dets[best]
	return types.Point{
		X: clamp(float64(d.Col)/float64(cols), 0, 1),
		Y: clamp(float64(d.Row)/float64(rows), 0, 1),
	}, true
}
