package cropper

import (
	"math"
	"testing"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

func TestNewSession(t *testing.T) {
	s := NewSession(types.Dimensions{Width: 400, Height: 300}, 0.5)
	if want := (types.Rect{Width: 400, Height: 300}); s.Rect() != want {
		t.Errorf("Expected full-frame selection %+v, got %+v", want, s.Rect())
	}
	if !s.AutoRatio() {
		t.Error("Expected auto ratio on by default")
	}
	if s.Tolerance() != 20 {
		t.Errorf("Expected 10 screen px to be 20 image px at scale 0.5, got %f", s.Tolerance())
	}
	if s.Dragging() {
		t.Error("New session must be idle")
	}
}

func TestSessionToleranceFollowsScale(t *testing.T) {
	img := types.Dimensions{Width: 400, Height: 300}

	// (390,290) is 10 image px from the bottom-right corner
	s := NewSession(img, 1)
	if h := s.PointerDown(types.Point{X: 390, Y: 290}); h != Move {
		t.Errorf("At scale 1 expected move, got %s", h)
	}
	s.PointerUp()

	s = NewSession(img, 0.5)
	if h := s.PointerDown(types.Point{X: 195, Y: 145}); h != BottomRight {
		t.Errorf("At scale 0.5 expected bottomRight, got %s", h)
	}
}

func TestSessionMove(t *testing.T) {
	s := NewSession(types.Dimensions{Width: 400, Height: 300}, 1)
	s.SetRect(types.Rect{X: 100, Y: 100, Width: 100, Height: 50})

	if h := s.PointerDown(types.Point{X: 150, Y: 120}); h != Move {
		t.Fatalf("Expected move, got %s", h)
	}
	s.PointerMove(types.Point{X: 160, Y: 130})
	got := s.PointerMove(types.Point{X: 170, Y: 125})
	if want := (types.Rect{X: 120, Y: 105, Width: 100, Height: 50}); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if !s.AutoRatio() {
		t.Error("Moving must not turn off auto ratio")
	}

	s.PointerMove(types.Point{X: 1000, Y: 1000})
	s.PointerUp()
	if want := (types.Rect{X: 300, Y: 250, Width: 100, Height: 50}); s.Rect() != want {
		t.Errorf("Expected move clamped to %+v, got %+v", want, s.Rect())
	}
	if s.Dragging() || s.Handle() != HandleNone {
		t.Error("PointerUp must end the drag")
	}
}

func TestSessionNewSelection(t *testing.T) {
	s := NewSession(types.Dimensions{Width: 400, Height: 300}, 1)
	s.SetRect(types.Rect{X: 100, Y: 100, Width: 50, Height: 50})
	s.LockRatio(2)

	if h := s.PointerDown(types.Point{X: 10, Y: 10}); h != BottomRight {
		t.Fatalf("Expected a new selection dragged by bottomRight, got %s", h)
	}
	if s.AutoRatio() {
		t.Error("Starting a new selection must turn off auto ratio")
	}
	got := s.PointerMove(types.Point{X: 110, Y: 300})
	if math.Abs(got.Width/got.Height-2) > 1e-9 {
		t.Errorf("Expected locked ratio 2, got %+v", got)
	}
	if got.X != 10 || got.Y != 10 || got.Width != 100 {
		t.Errorf("Expected selection anchored at the pointer, got %+v", got)
	}
}

func TestSessionClickKeepsPreviousSelection(t *testing.T) {
	s := NewSession(types.Dimensions{Width: 400, Height: 300}, 1)
	prev := types.Rect{X: 100, Y: 100, Width: 50, Height: 50}
	s.SetRect(prev)

	s.PointerDown(types.Point{X: 10, Y: 10})
	if got := s.PointerUp(); got != prev {
		t.Errorf("Expected %+v after a bare click, got %+v", prev, got)
	}
}

func TestSessionResizeTurnsOffAutoRatio(t *testing.T) {
	s := NewSession(types.Dimensions{Width: 400, Height: 300}, 1)
	if h := s.PointerDown(types.Point{X: 0, Y: 0}); h != TopLeft {
		t.Fatalf("Expected topLeft, got %s", h)
	}
	if s.AutoRatio() {
		t.Error("Grabbing a handle must turn off auto ratio")
	}
	got := s.PointerMove(types.Point{X: 50, Y: 30})
	if want := (types.Rect{X: 50, Y: 30, Width: 350, Height: 270}); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestSessionMoveWithoutDragIsNoop(t *testing.T) {
	s := NewSession(types.Dimensions{Width: 400, Height: 300}, 1)
	before := s.Rect()
	if got := s.PointerMove(types.Point{X: 10, Y: 10}); got != before {
		t.Errorf("Expected no change, got %+v", got)
	}
}

func TestSessionLockRatio(t *testing.T) {
	s := NewSession(types.Dimensions{Width: 400, Height: 300}, 1)
	s.LockRatio(1.5)
	if s.Ratio() != 1.5 {
		t.Errorf("Expected ratio 1.5, got %f", s.Ratio())
	}
	s.LockRatio(-1)
	if s.Ratio() != 0 {
		t.Errorf("Expected non-positive ratio to unlock, got %f", s.Ratio())
	}
}

func TestSessionSetRectClamps(t *testing.T) {
	s := NewSession(types.Dimensions{Width: 400, Height: 300}, 1)
	s.SetRect(types.Rect{X: 350, Y: 250, Width: -400, Height: 100})
	if want := (types.Rect{X: 0, Y: 250, Width: 350, Height: 50}); s.Rect() != want {
		t.Errorf("Expected %+v, got %+v", want, s.Rect())
	}
}
