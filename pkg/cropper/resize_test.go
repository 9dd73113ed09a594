package cropper

import (
	"math"
	"testing"

	"github.com/menta2k/canvas-geometry/pkg/types"
)

var allHandles = []Handle{TopLeft, Top, TopRight, Right, BottomRight, Bottom, BottomLeft, Left}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func rectApprox(a, b types.Rect) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Width, b.Width) && approx(a.Height, b.Height)
}

func checkInside(t *testing.T, r types.Rect, img types.Dimensions) {
	t.Helper()
	if r.X < 0 || r.Y < 0 || r.Width < 0 || r.Height < 0 {
		t.Errorf("Rect %+v has negative component", r)
	}
	if r.Right() > img.Width+1e-9 || r.Bottom() > img.Height+1e-9 {
		t.Errorf("Rect %+v leaves image %+v", r, img)
	}
}

func TestHandleMirrors(t *testing.T) {
	for _, h := range allHandles {
		if h.MirrorHorizontal().MirrorHorizontal() != h {
			t.Errorf("MirrorHorizontal is not an involution for %s", h)
		}
		if h.MirrorVertical().MirrorVertical() != h {
			t.Errorf("MirrorVertical is not an involution for %s", h)
		}
	}
	if BottomRight.MirrorHorizontal().MirrorVertical() != TopLeft {
		t.Error("Expected bottomRight flipped on both axes to become topLeft")
	}
	if Top.MirrorHorizontal() != Top || Left.MirrorVertical() != Left {
		t.Error("Edge handles must only mirror on their own axis")
	}
	if Move.MirrorHorizontal() != Move {
		t.Error("Move must not mirror")
	}
}

func TestParseHandle(t *testing.T) {
	for _, h := range append(allHandles, Move, HandleNone) {
		got, ok := ParseHandle(h.String())
		if !ok || got != h {
			t.Errorf("ParseHandle(%q) = %v, %v", h.String(), got, ok)
		}
	}
	if _, ok := ParseHandle("middle"); ok {
		t.Error("Expected unknown handle name to be rejected")
	}
}

func TestHitTest(t *testing.T) {
	rect := types.Rect{X: 100, Y: 100, Width: 200, Height: 100}
	tests := []struct {
		p    types.Point
		want Handle
	}{
		{types.Point{X: 100, Y: 100}, TopLeft},
		{types.Point{X: 105, Y: 95}, TopLeft},
		{types.Point{X: 300, Y: 100}, TopRight},
		{types.Point{X: 100, Y: 200}, BottomLeft},
		{types.Point{X: 299, Y: 201}, BottomRight},
		{types.Point{X: 200, Y: 100}, Top},
		{types.Point{X: 300, Y: 150}, Right},
		{types.Point{X: 200, Y: 200}, Bottom},
		{types.Point{X: 100, Y: 150}, Left},
		{types.Point{X: 150, Y: 130}, Move},
		{types.Point{X: 110, Y: 100}, Move}, // on the edge but outside every hit box
		{types.Point{X: 50, Y: 50}, HandleNone},
		{types.Point{X: 311, Y: 150}, HandleNone},
	}
	for _, tt := range tests {
		if got := HitTest(rect, tt.p, 10); got != tt.want {
			t.Errorf("HitTest(%+v) = %s, want %s", tt.p, got, tt.want)
		}
	}
}

func TestHitTestCornersWinOverEdges(t *testing.T) {
	// tiny rect: every hit box overlaps
	rect := types.Rect{X: 10, Y: 10, Width: 4, Height: 4}
	if got := HitTest(rect, types.Point{X: 11, Y: 11}, 10); got != TopLeft {
		t.Errorf("Expected topLeft to be checked first, got %s", got)
	}
}

func TestMoveRectClamps(t *testing.T) {
	img := types.Dimensions{Width: 400, Height: 300}
	rect := types.Rect{X: 50, Y: 50, Width: 100, Height: 100}

	got := MoveRect(rect, types.Point{X: 20, Y: -10}, img)
	if want := (types.Rect{X: 70, Y: 40, Width: 100, Height: 100}); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	got = MoveRect(rect, types.Point{X: -500, Y: 500}, img)
	if want := (types.Rect{X: 0, Y: 200, Width: 100, Height: 100}); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestResizeFree(t *testing.T) {
	img := types.Dimensions{Width: 400, Height: 300}
	rect := types.Rect{X: 100, Y: 100, Width: 100, Height: 100}
	p := types.Point{X: 80, Y: 250}

	tests := []struct {
		h    Handle
		want types.Rect
	}{
		{TopLeft, types.Rect{X: 80, Y: 200, Width: 120, Height: 50}},
		{Top, types.Rect{X: 100, Y: 200, Width: 100, Height: 50}},
		{Bottom, types.Rect{X: 100, Y: 100, Width: 100, Height: 150}},
		{Left, types.Rect{X: 80, Y: 100, Width: 120, Height: 100}},
		{BottomLeft, types.Rect{X: 80, Y: 100, Width: 120, Height: 150}},
		{Right, types.Rect{X: 80, Y: 100, Width: 20, Height: 100}},
	}
	for _, tt := range tests {
		got, _ := ResizeRect(rect, tt.h, p, img, 0)
		if !rectApprox(got, tt.want) {
			t.Errorf("%s: expected %+v, got %+v", tt.h, tt.want, got)
		}
	}
}

func TestResizeFlipRelabelsHandle(t *testing.T) {
	img := types.Dimensions{Width: 400, Height: 300}
	rect := types.Rect{X: 100, Y: 100, Width: 50, Height: 50}

	got, h := ResizeRect(rect, BottomRight, types.Point{X: 80, Y: 60}, img, 0)
	if h != TopLeft {
		t.Errorf("Expected handle topLeft after crossing both edges, got %s", h)
	}
	if want := (types.Rect{X: 80, Y: 60, Width: 20, Height: 40}); !rectApprox(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	got, h = ResizeRect(rect, Right, types.Point{X: 90, Y: 120}, img, 0)
	if h != Left {
		t.Errorf("Expected handle left after crossing the left edge, got %s", h)
	}
	if want := (types.Rect{X: 90, Y: 100, Width: 10, Height: 50}); !rectApprox(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	// the relabelled handle continues the drag from the new side
	got, h = ResizeRect(got, h, types.Point{X: 70, Y: 120}, img, 0)
	if h != Left || !rectApprox(got, types.Rect{X: 70, Y: 100, Width: 30, Height: 50}) {
		t.Errorf("Unexpected continuation %s %+v", h, got)
	}
}

func TestResizeLocked(t *testing.T) {
	img := types.Dimensions{Width: 400, Height: 300}
	rect := types.Rect{X: 100, Y: 100, Width: 160, Height: 90}
	r := 16.0 / 9.0

	got, h := ResizeRect(rect, TopLeft, types.Point{X: 60, Y: 0}, img, r)
	if h != TopLeft || !rectApprox(got, types.Rect{X: 60, Y: 77.5, Width: 200, Height: 112.5}) {
		t.Errorf("topLeft: got %s %+v", h, got)
	}

	got, _ = ResizeRect(rect, Top, types.Point{X: 0, Y: 80}, img, r)
	wantW := 110 * r
	if !rectApprox(got, types.Rect{X: 100 + (160-wantW)/2, Y: 80, Width: wantW, Height: 110}) {
		t.Errorf("top: got %+v", got)
	}

	got, h = ResizeRect(rect, BottomRight, types.Point{X: 20, Y: 0}, img, r)
	if h != TopLeft || !rectApprox(got, types.Rect{X: 20, Y: 55, Width: 80, Height: 45}) {
		t.Errorf("bottomRight flip: got %s %+v", h, got)
	}
}

func TestResizeLockedKeepsRatioOnEveryStep(t *testing.T) {
	img := types.Dimensions{Width: 400, Height: 300}
	path := []types.Point{
		{X: 0, Y: 0}, {X: 390, Y: 10}, {X: 500, Y: 500}, {X: -50, Y: 150},
		{X: 200, Y: 150}, {X: 130, Y: 90}, {X: 410, Y: -20}, {X: 5, Y: 295},
	}

	for _, r := range []float64{1, 16.0 / 9.0, 9.0 / 16.0, 21.0 / 9.0} {
		for _, start := range allHandles {
			rect := types.Rect{X: 120, Y: 90, Width: 90 * r, Height: 90}
			h := start
			for i, p := range path {
				rect, h = ResizeRect(rect, h, p, img, r)
				checkInside(t, rect, img)
				if rect.Height > 1e-9 && math.Abs(rect.Width/rect.Height-r) > 1e-6 {
					t.Errorf("ratio %.3f handle %s step %d: %+v has ratio %f", r, start, i, rect, rect.Width/rect.Height)
				}
				if rect.Height <= 1e-9 && rect.Width > 1e-6 {
					t.Errorf("ratio %.3f handle %s step %d: zero height with width %f", r, start, i, rect.Width)
				}
			}
		}
	}
}

func TestResizeFreeStaysInside(t *testing.T) {
	img := types.Dimensions{Width: 640, Height: 480}
	for _, start := range allHandles {
		rect := types.Rect{X: 200, Y: 200, Width: 100, Height: 100}
		h := start
		for _, p := range []types.Point{{X: -100, Y: -100}, {X: 900, Y: 900}, {X: 320, Y: 10}, {X: 0, Y: 480}} {
			rect, h = ResizeRect(rect, h, p, img, 0)
			checkInside(t, rect, img)
		}
	}
}

func TestResizeIgnoresNonResizeHandles(t *testing.T) {
	img := types.Dimensions{Width: 100, Height: 100}
	rect := types.Rect{X: 10, Y: 10, Width: 20, Height: 20}
	for _, h := range []Handle{Move, HandleNone} {
		got, gotH := ResizeRect(rect, h, types.Point{X: 90, Y: 90}, img, 0)
		if got != rect || gotH != h {
			t.Errorf("%s: expected no change, got %s %+v", h, gotH, got)
		}
	}
}
