package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AspectRatio is a named width:height ratio. The zero-sized Custom ratio means
// "no constraint".
type AspectRatio struct {
	Width  int
	Height int
	Name   string
}

// Custom is the unconstrained ratio.
var Custom = AspectRatio{0, 0, "Custom"}

// Editor presets
var (
	Square     = AspectRatio{1, 1, "1:1 Square"}
	Standard   = AspectRatio{4, 3, "4:3 Standard"}
	Classic    = AspectRatio{3, 2, "3:2 Classic"}
	Widescreen = AspectRatio{16, 9, "16:9 Widescreen"}
	Panorama   = AspectRatio{2, 1, "2:1 Panorama"}
	Ultrawide  = AspectRatio{21, 9, "21:9 Ultrawide"}
	Story      = AspectRatio{9, 16, "9:16 Portrait"}
	Portrait   = AspectRatio{3, 4, "3:4 Portrait"}
	Photo      = AspectRatio{5, 4, "5:4 Photo"}
	Instagram  = AspectRatio{4, 5, "4:5 Portrait"}
	Tall       = AspectRatio{2, 3, "2:3 Portrait"}
)

// Presets returns the selectable ratios in menu order, Custom excluded.
func Presets() []AspectRatio {
	return []AspectRatio{Square, Standard, Classic, Widescreen, Panorama, Ultrawide, Story, Portrait, Photo, Instagram, Tall}
}

// IsCustom reports whether the ratio carries no constraint.
func (a AspectRatio) IsCustom() bool { return a.Width <= 0 || a.Height <= 0 }

// Value returns width/height, with ok=false for Custom.
func (a AspectRatio) Value() (float64, bool) {
	if a.IsCustom() {
		return 0, false
	}
	return float64(a.Width) / float64(a.Height), true
}

// Short returns the "W:H" form, or "Custom".
func (a AspectRatio) Short() string {
	if a.IsCustom() {
		return Custom.Name
	}
	return fmt.Sprintf("%d:%d", a.Width, a.Height)
}

func (a AspectRatio) String() string { return a.Name }

// LookupAspectRatio finds a preset by full name ("16:9 Widescreen") or short
// form ("16:9"), case-insensitively. "custom" returns Custom.
func LookupAspectRatio(name string) (AspectRatio, bool) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, Custom.Name) {
		return Custom, true
	}
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, name) || p.Short() == name {
			return p, true
		}
	}
	return AspectRatio{}, false
}

// ParseAspectRatio accepts a preset name, a "W:H" pair or a decimal ratio.
// Decimal ratios are kept as a thousandths fraction.
func ParseAspectRatio(s string) (AspectRatio, error) {
	if a, ok := LookupAspectRatio(s); ok {
		return a, nil
	}
	s = strings.TrimSpace(s)

	if w, h, found := strings.Cut(s, ":"); found {
		wi, err1 := strconv.Atoi(strings.TrimSpace(w))
		hi, err2 := strconv.Atoi(strings.TrimSpace(h))
		if err1 != nil || err2 != nil || wi <= 0 || hi <= 0 {
			return AspectRatio{}, fmt.Errorf("parse %q: %w", s, ErrInvalidRatio)
		}
		return AspectRatio{wi, hi, fmt.Sprintf("%d:%d", wi, hi)}, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || checkRatio(f) != nil {
		return AspectRatio{}, fmt.Errorf("parse %q: %w", s, ErrInvalidRatio)
	}
	w := int(math.Round(f * 1000))
	if w <= 0 {
		return AspectRatio{}, fmt.Errorf("parse %q: %w", s, ErrInvalidRatio)
	}
	return AspectRatio{w, 1000, s}, nil
}

// NearestPreset returns the preset closest to ratio r.
func NearestPreset(r float64) AspectRatio {
	best := Square
	bestDiff := math.Inf(1)
	for _, p := range Presets() {
		v, _ := p.Value()
		if d := math.Abs(v - r); d < bestDiff {
			best, bestDiff = p, d
		}
	}
	return best
}
