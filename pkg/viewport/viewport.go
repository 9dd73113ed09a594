// Package viewport implements the zoom and pan transform of the editor canvas.
//
// The displayed canvas is the logical canvas scaled by Scale() about the
// viewport center and then shifted by -Pan. Pan is kept in logical pixels and
// is clamped so the scaled canvas always covers the viewport.
package viewport

import (
	"math"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

const (
	// MaxZoomLevel is the highest zoom level (500%).
	MaxZoomLevel = 40
	// ZoomStep is the scale added per level.
	ZoomStep = 0.1
)

// Viewport holds zoom level, pan offset and the mutually exclusive draw and
// pan interactions. It is not safe for concurrent use.
type Viewport struct {
	size     types.Dimensions
	maxLevel int
	step     float64

	level    int
	pan      types.Point
	zoomed   bool
	drawMode bool

	panning   bool
	panStart  types.Point
	panOrigin types.Point
}

// Option customizes a Viewport.
type Option func(*Viewport)

// WithMaxLevel overrides MaxZoomLevel.
func WithMaxLevel(n int) Option {
	return func(v *Viewport) {
		if n > 0 {
			v.maxLevel = n
		}
	}
}

// WithStep overrides ZoomStep.
func WithStep(step float64) Option {
	return func(v *Viewport) {
		if step > 0 {
			v.step = step
		}
	}
}

// New returns an unzoomed viewport of the given size in logical pixels.
func New(size types.Dimensions, opts ...Option) *Viewport {
	v := &Viewport{size: size, maxLevel: MaxZoomLevel, step: ZoomStep}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Viewport) Size() types.Dimensions { return v.size }
func (v *Viewport) Level() int             { return v.level }
func (v *Viewport) MaxLevel() int          { return v.maxLevel }
func (v *Viewport) Pan() types.Point       { return v.pan }
func (v *Viewport) Zoomed() bool           { return v.zoomed }
func (v *Viewport) DrawMode() bool         { return v.drawMode }
func (v *Viewport) Panning() bool          { return v.panning }

// SetSize updates the viewport size and re-clamps the pan offset.
func (v *Viewport) SetSize(size types.Dimensions) {
	v.size = size
	v.clampPan()
}

// Scale returns the zoom factor, 1 at level 0.
func (v *Viewport) Scale() float64 { return 1 + float64(v.level)*v.step }

// Percentage returns the zoom factor as a whole percentage.
func (v *Viewport) Percentage() int { return int(math.Round(v.Scale() * 100)) }

// ZoomIn raises the level by one. The first zoom in from level 0 enters zoom
// mode. It reports whether the level changed.
func (v *Viewport) ZoomIn() bool {
	if v.level >= v.maxLevel {
		return false
	}
	if v.level == 0 {
		v.zoomed = true
	}
	v.level++
	return true
}

// ZoomOut lowers the level by one. Reaching level 0 recenters the view.
func (v *Viewport) ZoomOut() bool {
	if v.level <= 0 {
		return false
	}
	v.level--
	v.clampPan()
	return true
}

// SetLevel jumps to level n, clamped to [0, MaxLevel].
func (v *Viewport) SetLevel(n int) {
	n = max(0, min(n, v.maxLevel))
	if n > 0 {
		v.zoomed = true
	}
	v.level = n
	v.clampPan()
}

// Reset returns to level 0 with no pan and stays in zoom mode.
func (v *Viewport) Reset() {
	v.level = 0
	v.pan = types.Point{}
	v.panning = false
}

// Exit leaves zoom mode entirely, turning draw mode off as well.
func (v *Viewport) Exit() {
	v.Reset()
	v.zoomed = false
	v.drawMode = false
}

// MaxPan returns the largest pan offset on each axis at the current scale.
func (v *Viewport) MaxPan() types.Point {
	s := v.Scale()
	return types.Point{
		X: v.size.Width * (s - 1) / (2 * s),
		Y: v.size.Height * (s - 1) / (2 * s),
	}
}

// PanBy moves the view by a screen-space delta. Dragging right reveals the
// left part of the canvas, so the pan offset decreases.
func (v *Viewport) PanBy(delta types.Point) {
	v.pan = v.pan.Sub(delta.Scale(1 / v.Scale()))
	v.clampPan()
}

// ScreenToLogical maps a pointer position inside the viewport to logical
// canvas coordinates.
func (v *Viewport) ScreenToLogical(p types.Point) types.Point {
	c := v.size.Center()
	return c.Add(p.Sub(c).Scale(1 / v.Scale())).Add(v.pan)
}

// LogicalToScreen is the inverse of ScreenToLogical.
func (v *Viewport) LogicalToScreen(p types.Point) types.Point {
	c := v.size.Center()
	return c.Add(p.Sub(c).Sub(v.pan).Scale(v.Scale()))
}

// CanvasPoint maps a screen position to pixels of a canvas that is displayed
// stretched over the viewport, such as an inpainting mask.
func (v *Viewport) CanvasPoint(p types.Point, canvas types.Dimensions) types.Point {
	l := v.ScreenToLogical(p)
	if !v.size.Valid() {
		return l
	}
	return types.Point{
		X: l.X * canvas.Width / v.size.Width,
		Y: l.Y * canvas.Height / v.size.Height,
	}
}

// ToggleDrawMode switches between drawing and panning while zoomed and
// returns the new state. Any pan in progress is dropped.
func (v *Viewport) ToggleDrawMode() bool {
	v.drawMode = !v.drawMode
	v.panning = false
	return v.drawMode
}

// StartPan begins a pan drag at screen position p. It is refused in draw
// mode and when there is nothing to pan.
func (v *Viewport) StartPan(p types.Point) bool {
	if v.drawMode || !v.zoomed || v.level == 0 {
		return false
	}
	v.panning = true
	v.panStart = p
	v.panOrigin = v.pan
	return true
}

// MovePan continues a pan drag.
func (v *Viewport) MovePan(p types.Point) {
	if !v.panning {
		return
	}
	v.pan = v.panOrigin.Sub(p.Sub(v.panStart).Scale(1 / v.Scale()))
	v.clampPan()
}

// StopPan ends a pan drag.
func (v *Viewport) StopPan() { v.panning = false }

// BrushEnabled reports whether pointer input should paint. While zoomed the
// pointer pans unless draw mode is on.
func (v *Viewport) BrushEnabled() bool {
	if v.panning {
		return false
	}
	return !v.zoomed || v.drawMode
}

func (v *Viewport) clampPan() {
	if v.level == 0 {
		v.pan = types.Point{}
		return
	}
	m := v.MaxPan()
	v.pan.X = math.Max(-m.X, math.Min(m.X, v.pan.X))
	v.pan.Y = math.Max(-m.Y, math.Min(m.Y, v.pan.Y))
}
