package cropper

import (
	"math"

	"github.com/menta2k/canvas-geometry/pkg/geometry"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

// HitTest reports which part of rect is under p. Both are in image pixels and
// tolerance is the half-size of a handle's hit box. Handles win over the body.
func HitTest(rect types.Rect, p types.Point, tolerance float64) Handle {
	handles := []struct {
		h Handle
		p types.Point
	}{
		{TopLeft, types.Point{X: rect.X, Y: rect.Y}},
		{TopRight, types.Point{X: rect.Right(), Y: rect.Y}},
		{BottomLeft, types.Point{X: rect.X, Y: rect.Bottom()}},
		{BottomRight, types.Point{X: rect.Right(), Y: rect.Bottom()}},
		{Top, types.Point{X: rect.X + rect.Width/2, Y: rect.Y}},
		{Right, types.Point{X: rect.Right(), Y: rect.Y + rect.Height/2}},
		{Bottom, types.Point{X: rect.X + rect.Width/2, Y: rect.Bottom()}},
		{Left, types.Point{X: rect.X, Y: rect.Y + rect.Height/2}},
	}
	for _, hp := range handles {
		if math.Abs(p.X-hp.p.X) < tolerance && math.Abs(p.Y-hp.p.Y) < tolerance {
			return hp.h
		}
	}
	if rect.Contains(p) {
		return Move
	}
	return HandleNone
}

// MoveRect translates rect by delta and keeps it inside img.
func MoveRect(rect types.Rect, delta types.Point, img types.Dimensions) types.Rect {
	rect.X = clamp(rect.X+delta.X, 0, math.Max(0, img.Width-rect.Width))
	rect.Y = clamp(rect.Y+delta.Y, 0, math.Max(0, img.Height-rect.Height))
	return rect
}

// ResizeRect drags handle h of rect to p (image pixels). With ratio <= 0 each
// handle moves only the edges it owns. With ratio > 0 the other dimension is
// derived so width/height stays equal to ratio: corners anchor the opposite
// corner and edge handles keep the perpendicular axis centered.
//
// When the drag crosses the opposite edge the rectangle is flipped and the
// returned handle is the mirrored one, so the next move continues the drag.
func ResizeRect(rect types.Rect, h Handle, p types.Point, img types.Dimensions, ratio float64) (types.Rect, Handle) {
	if !h.IsResize() {
		return rect, h
	}
	p.X = clamp(p.X, 0, img.Width)
	p.Y = clamp(p.Y, 0, img.Height)

	var next types.Rect
	if ratio > 0 {
		next = lockedResize(rect, h, p, ratio)
	} else {
		next = freeResize(rect, h, p)
	}

	if next.Width < 0 {
		next.X += next.Width
		next.Width = -next.Width
		h = h.MirrorHorizontal()
	}
	if next.Height < 0 {
		next.Y += next.Height
		next.Height = -next.Height
		h = h.MirrorVertical()
	}

	next = geometry.ClampRect(next, img)
	if ratio > 0 {
		next = restoreRatio(next, h, ratio)
	}
	return next, h
}

func freeResize(r types.Rect, h Handle, p types.Point) types.Rect {
	switch h.horizontal() {
	case sideLow:
		r.Width += r.X - p.X
		r.X = p.X
	case sideHigh:
		r.Width = p.X - r.X
	}
	switch h.vertical() {
	case sideLow:
		r.Height += r.Y - p.Y
		r.Y = p.Y
	case sideHigh:
		r.Height = p.Y - r.Y
	}
	return r
}

func lockedResize(r types.Rect, h Handle, p types.Point, ratio float64) types.Rect {
	next := r
	switch h {
	case TopLeft, TopRight, BottomLeft, BottomRight:
		if h.horizontal() == sideLow {
			next.Width = r.Width + (r.X - p.X)
			next.X = r.Right() - next.Width
		} else {
			next.Width = p.X - r.X
		}
		next.Height = next.Width / ratio
		if h.vertical() == sideLow {
			next.Y = r.Bottom() - next.Height
		}
	case Top, Bottom:
		if h == Top {
			next.Height = r.Height + (r.Y - p.Y)
			next.Y = r.Bottom() - next.Height
		} else {
			next.Height = p.Y - r.Y
		}
		next.Width = next.Height * ratio
		next.X = r.X + (r.Width-next.Width)/2
	case Left, Right:
		if h == Left {
			next.Width = r.Width + (r.X - p.X)
			next.X = r.Right() - next.Width
		} else {
			next.Width = p.X - r.X
		}
		next.Height = next.Width / ratio
		next.Y = r.Y + (r.Height-next.Height)/2
	}
	return next
}

// restoreRatio shrinks a clamped rectangle back to ratio, keeping the edges
// that are not being dragged where they were.
func restoreRatio(r types.Rect, h Handle, ratio float64) types.Rect {
	w := math.Min(r.Width, r.Height*ratio)
	hh := w / ratio
	if w == r.Width && hh == r.Height {
		return r
	}

	switch h.horizontal() {
	case sideLow:
		r.X = r.Right() - w
	case sideNone:
		r.X += (r.Width - w) / 2
	}
	switch h.vertical() {
	case sideLow:
		r.Y = r.Bottom() - hh
	case sideNone:
		r.Y += (r.Height - hh) / 2
	}
	r.Width, r.Height = w, hh
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
