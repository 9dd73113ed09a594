package cropper

import (
	"github.com/menta2k/canvas-geometry/pkg/geometry"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

// DefaultTolerance is the handle hit-box half size in screen pixels.
const DefaultTolerance = 10

// Session tracks one crop interaction: the selection rectangle and the drag
// in progress. Pointer positions are screen pixels relative to the displayed
// image; the rectangle is kept in image pixels. A Session is not safe for
// concurrent use.
type Session struct {
	image     types.Dimensions
	scale     float64
	tolerance float64

	rect     types.Rect
	prev     types.Rect
	handle   Handle
	dragging bool
	last     types.Point

	ratio float64
	auto  bool
}

// NewSession starts a session for an image displayed at scale (screen pixels
// per image pixel). The initial selection is the whole image.
func NewSession(image types.Dimensions, scale float64) *Session {
	if scale <= 0 {
		scale = 1
	}
	return &Session{
		image:     image,
		scale:     scale,
		tolerance: DefaultTolerance,
		rect:      types.Rect{Width: image.Width, Height: image.Height},
		auto:      true,
	}
}

// SetScale updates the display scale, e.g. after the container resized.
func (s *Session) SetScale(scale float64) {
	if scale > 0 {
		s.scale = scale
	}
}

// SetTolerance sets the handle hit-box half size in screen pixels.
func (s *Session) SetTolerance(px float64) {
	if px > 0 {
		s.tolerance = px
	}
}

// Tolerance returns the hit-box half size converted to image pixels.
func (s *Session) Tolerance() float64 { return s.tolerance / s.scale }

// LockRatio constrains every following resize to width/height == r.
// A non-positive r unlocks.
func (s *Session) LockRatio(r float64) {
	if r <= 0 {
		s.Unlock()
		return
	}
	s.ratio = r
}

// Unlock removes the ratio constraint.
func (s *Session) Unlock() { s.ratio = 0 }

// Ratio returns the locked ratio, or 0 when free.
func (s *Session) Ratio() float64 { return s.ratio }

// AutoRatio reports whether the selection still follows the selected ratio
// preset. Touching the selection by hand turns it off.
func (s *Session) AutoRatio() bool { return s.auto }

// SetAutoRatio sets the auto-ratio flag.
func (s *Session) SetAutoRatio(on bool) { s.auto = on }

// SetRect replaces the selection, clamped to the image.
func (s *Session) SetRect(r types.Rect) {
	s.rect = geometry.ClampRect(r.Normalize(), s.image)
}

func (s *Session) Rect() types.Rect { return s.rect }

func (s *Session) Handle() Handle { return s.handle }

func (s *Session) Dragging() bool { return s.dragging }

func (s *Session) Image() types.Dimensions { return s.image }

// PointerDown starts a drag. A handle under the pointer starts a resize, the
// selection body starts a move, and anywhere else starts a new selection
// anchored at the pointer.
func (s *Session) PointerDown(screen types.Point) Handle {
	p := s.toImage(screen)
	s.prev = s.rect
	s.dragging = true
	s.last = p

	s.handle = HitTest(s.rect, p, s.Tolerance())
	switch {
	case s.handle == Move:
	case s.handle.IsResize():
		s.auto = false
	default:
		s.rect = types.Rect{X: clamp(p.X, 0, s.image.Width), Y: clamp(p.Y, 0, s.image.Height)}
		s.handle = BottomRight
		s.auto = false
	}
	return s.handle
}

// PointerMove continues the drag and returns the updated selection. It is a
// no-op when no drag is active.
func (s *Session) PointerMove(screen types.Point) types.Rect {
	if !s.dragging {
		return s.rect
	}
	p := s.toImage(screen)
	if s.handle == Move {
		s.rect = MoveRect(s.rect, p.Sub(s.last), s.image)
	} else {
		s.rect, s.handle = ResizeRect(s.rect, s.handle, p, s.image, s.ratio)
	}
	s.last = p
	return s.rect
}

// PointerUp ends the drag. A click that produced an empty selection keeps the
// previous one.
func (s *Session) PointerUp() types.Rect {
	if s.dragging && s.rect.Empty() {
		s.rect = s.prev
	}
	s.dragging = false
	s.handle = HandleNone
	return s.rect
}

func (s *Session) toImage(screen types.Point) types.Point {
	return screen.Scale(1 / s.scale)
}
