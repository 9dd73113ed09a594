package cropper

// Handle identifies what a crop drag is acting on: one of the eight resize
// handles on the rectangle, the rectangle body, or nothing.
type Handle int

const (
	HandleNone Handle = iota
	TopLeft
	Top
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
	Left
	Move
)

var handleNames = map[Handle]string{
	HandleNone:  "none",
	TopLeft:     "topLeft",
	Top:         "top",
	TopRight:    "topRight",
	Right:       "right",
	BottomRight: "bottomRight",
	Bottom:      "bottom",
	BottomLeft:  "bottomLeft",
	Left:        "left",
	Move:        "move",
}

func (h Handle) String() string {
	if s, ok := handleNames[h]; ok {
		return s
	}
	return "unknown"
}

// ParseHandle is the inverse of Handle.String.
func ParseHandle(s string) (Handle, bool) {
	for h, name := range handleNames {
		if name == s {
			return h, true
		}
	}
	return HandleNone, false
}

// MirrorHorizontal returns the handle on the opposite side of a horizontal flip
// (topLeft <-> topRight, left <-> right). Other handles are unchanged.
func (h Handle) MirrorHorizontal() Handle {
	switch h {
	case TopLeft:
		return TopRight
	case TopRight:
		return TopLeft
	case BottomLeft:
		return BottomRight
	case BottomRight:
		return BottomLeft
	case Left:
		return Right
	case Right:
		return Left
	}
	return h
}

// MirrorVertical returns the handle on the opposite side of a vertical flip
// (topLeft <-> bottomLeft, top <-> bottom). Other handles are unchanged.
func (h Handle) MirrorVertical() Handle {
	switch h {
	case TopLeft:
		return BottomLeft
	case BottomLeft:
		return TopLeft
	case TopRight:
		return BottomRight
	case BottomRight:
		return TopRight
	case Top:
		return Bottom
	case Bottom:
		return Top
	}
	return h
}

// IsResize reports whether h is one of the eight resize handles.
func (h Handle) IsResize() bool {
	return h >= TopLeft && h <= Left
}

// side of the rectangle an edge handle pulls on
type side int

const (
	sideNone side = iota
	sideLow       // left or top
	sideHigh      // right or bottom
)

func (h Handle) horizontal() side {
	switch h {
	case TopLeft, BottomLeft, Left:
		return sideLow
	case TopRight, BottomRight, Right:
		return sideHigh
	}
	return sideNone
}

func (h Handle) vertical() side {
	switch h {
	case TopLeft, TopRight, Top:
		return sideLow
	case BottomLeft, BottomRight, Bottom:
		return sideHigh
	}
	return sideNone
}
