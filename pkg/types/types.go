package types

import (
	"image"
	"math"
)

// Point is a 2D position. Depending on context it is in screen, viewport or
// image pixel space; normalized points use the [0,1] range.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p multiplied by s on both axes.
func (p Point) Scale(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Dimensions is a generic size pair used for images, containers and canvases
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DimensionsOf returns the pixel size of an image
func DimensionsOf(img image.Image) Dimensions {
	b := img.Bounds()
	return Dimensions{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Valid reports whether both sides are finite and strictly positive.
func (d Dimensions) Valid() bool {
	return finitePositive(d.Width) && finitePositive(d.Height)
}

// Ratio returns width/height. The caller must check Valid first.
func (d Dimensions) Ratio() float64 { return d.Width / d.Height }

// Area returns width*height.
func (d Dimensions) Area() float64 { return d.Width * d.Height }

// Center returns the midpoint of a box of this size anchored at the origin.
func (d Dimensions) Center() Point { return Point{X: d.Width / 2, Y: d.Height / 2} }

// Rect is a crop or selection area in source-image pixel space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Size returns the rectangle size.
func (r Rect) Size() Dimensions { return Dimensions{Width: r.Width, Height: r.Height} }

// Center returns the rectangle's center point.
func (r Rect) Center() Point { return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2} }

// Ratio returns width/height, or 0 for a degenerate rectangle.
func (r Rect) Ratio() float64 {
	if r.Height == 0 {
		return 0
	}
	return r.Width / r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Normalize returns an equivalent rectangle with non-negative width and height.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Round snaps all fields to whole pixels.
func (r Rect) Round() Rect {
	return Rect{
		X:      math.Round(r.X),
		Y:      math.Round(r.Y),
		Width:  math.Round(r.Width),
		Height: math.Round(r.Height),
	}
}

// Image converts the rectangle to an image.Rectangle, rounding to whole pixels
func (r Rect) Image() image.Rectangle {
	rr := r.Normalize().Round()
	return image.Rect(int(rr.X), int(rr.Y), int(rr.X+rr.Width), int(rr.Y+rr.Height))
}

// ExtensionResult describes how far a canvas grows to reach a target ratio.
type ExtensionResult struct {
	Width        int `json:"width"`
	Height       int `json:"height"`
	ExtendWidth  int `json:"extend_width"`
	ExtendHeight int `json:"extend_height"`
}

// Size returns the extended canvas size.
func (e ExtensionResult) Size() Dimensions {
	return Dimensions{Width: float64(e.Width), Height: float64(e.Height)}
}

// IsZero reports whether the extension adds nothing on either axis.
func (e ExtensionResult) IsZero() bool { return e.ExtendWidth == 0 && e.ExtendHeight == 0 }

// Offset returns where the original image sits inside the extended canvas.
func (e ExtensionResult) Offset() image.Point {
	return image.Pt(e.ExtendWidth/2, e.ExtendHeight/2)
}

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Subject is the primary subject a vision model located in an image
type Subject struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
	Cx         float64 `json:"cx"`
	Cy         float64 `json:"cy"`
}

// SubjectResult is the full answer of the subject-locating prompt
type SubjectResult struct {
	Primary     Subject  `json:"primary"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
