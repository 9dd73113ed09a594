package editor

import (
	"github.com/menta2k/canvas-geometry/pkg/geometry"
	"github.com/menta2k/canvas-geometry/pkg/types"
)

// Event is an input to Controller.Dispatch.
type Event interface {
	eventName() string
}

// LoadImage replaces the working image and starts a new history.
type LoadImage struct {
	Size  types.Dimensions
	Label string
}

// ResizeContainer reports a new size of the area the image is displayed in.
type ResizeContainer struct {
	Size types.Dimensions
}

// SelectRatio picks an aspect ratio preset, or geometry.Custom.
type SelectRatio struct {
	Ratio geometry.AspectRatio
}

type (
	EnterCrop   struct{}
	ExitCrop    struct{}
	EnterExtend struct{}
	ExitExtend  struct{}
)

// PointerDown, PointerMove and PointerUp carry pointer positions relative to
// the viewport's top-left corner, in screen pixels.
type (
	PointerDown struct{ Screen types.Point }
	PointerMove struct{ Screen types.Point }
	PointerUp   struct{}
)

// ApplyCrop commits the crop selection.
type ApplyCrop struct{}

// ResetCrop in crop mode resets the selection to the whole image with no
// ratio. Outside crop mode it returns to the image as it was first loaded.
type ResetCrop struct{}

// SetManualExtension grows the canvas by explicit amounts on both axes.
type SetManualExtension struct {
	Width  int
	Height int
}

// ApplyExtension commits the pending canvas extension.
type ApplyExtension struct{}

type (
	ZoomIn         struct{}
	ZoomOut        struct{}
	ResetZoom      struct{}
	ToggleDrawMode struct{}
)

// Pan moves a zoomed view by a screen-space delta.
type Pan struct {
	Delta types.Point
}

type (
	Undo struct{}
	Redo struct{}
)

func (LoadImage) eventName() string          { return "load_image" }
func (ResizeContainer) eventName() string    { return "resize_container" }
func (SelectRatio) eventName() string        { return "select_ratio" }
func (EnterCrop) eventName() string          { return "enter_crop" }
func (ExitCrop) eventName() string           { return "exit_crop" }
func (EnterExtend) eventName() string        { return "enter_extend" }
func (ExitExtend) eventName() string         { return "exit_extend" }
func (PointerDown) eventName() string        { return "pointer_down" }
func (PointerMove) eventName() string        { return "pointer_move" }
func (PointerUp) eventName() string          { return "pointer_up" }
func (ApplyCrop) eventName() string          { return "apply_crop" }
func (ResetCrop) eventName() string          { return "reset_crop" }
func (SetManualExtension) eventName() string { return "set_manual_extension" }
func (ApplyExtension) eventName() string     { return "apply_extension" }
func (ZoomIn) eventName() string             { return "zoom_in" }
func (ZoomOut) eventName() string            { return "zoom_out" }
func (ResetZoom) eventName() string          { return "reset_zoom" }
func (ToggleDrawMode) eventName() string     { return "toggle_draw_mode" }
func (Pan) eventName() string                { return "pan" }
func (Undo) eventName() string               { return "undo" }
func (Redo) eventName() string               { return "redo" }
