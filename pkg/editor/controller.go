// Package editor owns the editor state. A Controller receives events, runs
// them through the geometry, cropper and viewport packages, and returns the
// resulting State. All state changes go through Dispatch.
package editor

import (
	"errors"
	"fmt"

	"github.com/menta2k/canvas-geometry/internal/logging"
	"github.com/menta2k/canvas-geometry/pkg/cropper"
	"github.com/menta2k/canvas-geometry/pkg/geometry"
	"github.com/menta2k/canvas-geometry/pkg/types"
	"github.com/menta2k/canvas-geometry/pkg/viewport"
)

var (
	ErrNoImage        = errors.New("no image loaded")
	ErrWrongMode      = errors.New("event not allowed in current mode")
	ErrEmptySelection = errors.New("crop selection is empty")
	ErrNoExtension    = errors.New("no canvas extension pending")
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrNothingToRedo  = errors.New("nothing to redo")
	ErrUnknownEvent   = errors.New("unknown event")
)

// Mode is the active editing tool.
type Mode int

const (
	ModeView Mode = iota
	ModeCrop
	ModeExtend
)

func (m Mode) String() string {
	switch m {
	case ModeCrop:
		return "crop"
	case ModeExtend:
		return "extend"
	}
	return "view"
}

// State is a snapshot of the editor.
type State struct {
	Image     types.Dimensions `json:"image"`
	Container types.Dimensions `json:"container"`
	Fit       geometry.Fit     `json:"fit"`
	Mode      Mode             `json:"mode"`

	Ratio     geometry.AspectRatio `json:"ratio"`
	AutoRatio bool                 `json:"auto_ratio"`

	Crop     types.Rect     `json:"crop"`
	Handle   cropper.Handle `json:"handle"`
	Dragging bool           `json:"dragging"`

	Extension types.ExtensionResult `json:"extension"`
	AIPercent int                   `json:"ai_percent"`

	ZoomLevel   int         `json:"zoom_level"`
	ZoomPercent int         `json:"zoom_percent"`
	Pan         types.Point `json:"pan"`
	Zoomed      bool        `json:"zoomed"`
	DrawMode    bool        `json:"draw_mode"`
	Brush       bool        `json:"brush"`
}

// HasImage reports whether an image is loaded.
func (s State) HasImage() bool { return s.Image.Valid() }

// Options configures a Controller.
type Options struct {
	// Step is the extension quantization; 0 means geometry.DefaultStep.
	Step int
	// HandleTolerance is the handle hit-box half size in screen pixels.
	HandleTolerance float64
	MaxZoomLevel    int
	ZoomStep        float64
	Container       types.Dimensions
}

// Controller applies events to the editor state. It is not safe for
// concurrent use; the UI loop owns it.
type Controller struct {
	opts    Options
	state   State
	session *cropper.Session
	view    *viewport.Viewport
	history *History
}

// NewController creates a controller with no image.
func NewController(opts Options) *Controller {
	if opts.Step <= 0 {
		opts.Step = geometry.DefaultStep
	}
	if opts.HandleTolerance <= 0 {
		opts.HandleTolerance = cropper.DefaultTolerance
	}
	c := &Controller{
		opts:    opts,
		history: NewHistory(),
		view:    viewport.New(types.Dimensions{}, viewport.WithMaxLevel(opts.MaxZoomLevel), viewport.WithStep(opts.ZoomStep)),
	}
	c.state.Container = opts.Container
	c.state.Ratio = geometry.Custom
	c.state.AutoRatio = true
	c.sync()
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// History returns the edit history.
func (c *Controller) History() *History { return c.history }

// Dispatch applies e and returns the new state. On error the state is left
// as it was before e.
func (c *Controller) Dispatch(e Event) (State, error) {
	if err := c.apply(e); err != nil {
		logging.Debugf("editor: %s rejected: %v", e.eventName(), err)
		return c.state, fmt.Errorf("%s: %w", e.eventName(), err)
	}
	c.sync()
	return c.state, nil
}

func (c *Controller) apply(e Event) error {
	if _, ok := e.(LoadImage); !ok {
		if _, ok := e.(ResizeContainer); !ok && !c.state.HasImage() {
			return ErrNoImage
		}
	}

	switch e := e.(type) {
	case LoadImage:
		return c.loadImage(e)
	case ResizeContainer:
		return c.resizeContainer(e.Size)
	case SelectRatio:
		return c.selectRatio(e.Ratio)
	case EnterCrop:
		c.enterCrop()
	case ExitCrop:
		if c.state.Mode != ModeCrop {
			return ErrWrongMode
		}
		c.state.Mode = ModeView
		c.session = nil
	case EnterExtend:
		c.state.Mode = ModeExtend
		c.session = nil
		return c.recomputeExtension()
	case ExitExtend:
		if c.state.Mode != ModeExtend {
			return ErrWrongMode
		}
		c.state.Mode = ModeView
		c.clearExtension()
	case PointerDown:
		c.pointerDown(e.Screen)
	case PointerMove:
		c.pointerMove(e.Screen)
	case PointerUp:
		if c.session != nil {
			c.session.PointerUp()
		}
		c.view.StopPan()
	case ApplyCrop:
		return c.applyCrop()
	case ResetCrop:
		return c.resetCrop()
	case SetManualExtension:
		return c.setManualExtension(e.Width, e.Height)
	case ApplyExtension:
		return c.applyExtension()
	case ZoomIn:
		c.view.ZoomIn()
		c.zoomTolerance()
	case ZoomOut:
		c.view.ZoomOut()
		c.zoomTolerance()
	case ResetZoom:
		c.view.Reset()
		c.zoomTolerance()
	case ToggleDrawMode:
		c.view.ToggleDrawMode()
	case Pan:
		c.view.PanBy(e.Delta)
	case Undo:
		entry, ok := c.history.Undo()
		if !ok {
			return ErrNothingToUndo
		}
		return c.restore(entry)
	case Redo:
		entry, ok := c.history.Redo()
		if !ok {
			return ErrNothingToRedo
		}
		return c.restore(entry)
	default:
		return ErrUnknownEvent
	}
	return nil
}

func (c *Controller) loadImage(e LoadImage) error {
	frame, err := geometry.FullFrame(e.Size)
	if err != nil {
		return err
	}
	label := e.Label
	if label == "" {
		label = "Original"
	}

	c.history.Reset()
	c.view.Exit()
	c.state.Mode = ModeView
	c.state.Ratio = geometry.Custom
	c.state.AutoRatio = true
	c.session = nil
	c.clearExtension()
	c.setImage(e.Size)
	c.history.Push(Entry{Label: label, Image: e.Size, Crop: frame})
	logging.Debugf("editor: loaded %gx%g", e.Size.Width, e.Size.Height)
	return nil
}

func (c *Controller) resizeContainer(size types.Dimensions) error {
	if !size.Valid() {
		return fmt.Errorf("container %gx%g: %w", size.Width, size.Height, geometry.ErrInvalidDimensions)
	}
	c.state.Container = size
	if c.state.HasImage() {
		c.refit()
	}
	return nil
}

func (c *Controller) selectRatio(ar geometry.AspectRatio) error {
	c.state.Ratio = ar
	c.state.AutoRatio = true

	switch c.state.Mode {
	case ModeCrop:
		r, ok := ar.Value()
		if !ok {
			c.session.Unlock()
			c.session.SetAutoRatio(true)
			return nil
		}
		rect, err := geometry.PixelCropForRatio(c.state.Image, r)
		if err != nil {
			return err
		}
		c.session.LockRatio(r)
		c.session.SetRect(rect)
		c.session.SetAutoRatio(true)
	case ModeExtend:
		return c.recomputeExtension()
	}
	return nil
}

func (c *Controller) enterCrop() {
	c.state.Mode = ModeCrop
	c.clearExtension()
	c.session = cropper.NewSession(c.state.Image, c.state.Fit.Scale)
	c.session.SetAutoRatio(c.state.AutoRatio)
	c.zoomTolerance()

	if r, ok := c.state.Ratio.Value(); ok {
		if rect, err := geometry.PixelCropForRatio(c.state.Image, r); err == nil {
			c.session.LockRatio(r)
			c.session.SetRect(rect)
		}
	}
}

func (c *Controller) pointerDown(screen types.Point) {
	if c.session != nil {
		c.session.PointerDown(c.view.ScreenToLogical(screen))
		return
	}
	c.view.StartPan(screen)
}

func (c *Controller) pointerMove(screen types.Point) {
	if c.session != nil {
		c.session.PointerMove(c.view.ScreenToLogical(screen))
		return
	}
	c.view.MovePan(screen)
}

func (c *Controller) applyCrop() error {
	if c.state.Mode != ModeCrop || c.session == nil {
		return ErrWrongMode
	}
	rect := geometry.ClampRect(c.session.Rect().Round(), c.state.Image)
	if rect.Empty() {
		return ErrEmptySelection
	}

	c.history.Push(Entry{
		Label: fmt.Sprintf("Crop %gx%g", rect.Width, rect.Height),
		Image: rect.Size(),
		Crop:  rect,
	})
	c.state.Mode = ModeView
	c.session = nil
	c.setImage(rect.Size())
	return nil
}

// resetCrop in crop mode drops the selection back to the whole image and
// frees the ratio. Elsewhere it reverts to the originally loaded image.
func (c *Controller) resetCrop() error {
	if c.state.Mode == ModeCrop && c.session != nil {
		frame, err := geometry.FullFrame(c.state.Image)
		if err != nil {
			return err
		}
		c.state.Ratio = geometry.Custom
		c.session.Unlock()
		c.session.SetRect(frame)
		c.session.SetAutoRatio(false)
		return nil
	}

	first, ok := c.history.First()
	if !ok {
		return ErrNoImage
	}
	frame, _ := geometry.FullFrame(first.Image)
	if cur, _ := c.history.Current(); cur.Image != first.Image {
		c.history.Push(Entry{Label: "Reset", Image: first.Image, Crop: frame})
	}
	c.setImage(first.Image)
	return nil
}

func (c *Controller) setManualExtension(w, h int) error {
	ext, err := geometry.ManualExtension(c.state.Image, w, h)
	if err != nil {
		return err
	}
	c.state.Mode = ModeExtend
	c.session = nil
	c.state.Ratio = geometry.Custom
	c.state.Extension = ext
	c.state.AIPercent = geometry.AIContentPercentage(c.state.Image, ext.Size())
	return nil
}

func (c *Controller) applyExtension() error {
	if c.state.Mode != ModeExtend {
		return ErrWrongMode
	}
	ext := c.state.Extension
	if ext.IsZero() {
		return ErrNoExtension
	}

	frame, _ := geometry.FullFrame(ext.Size())
	c.history.Push(Entry{
		Label:     fmt.Sprintf("Extend %dx%d", ext.Width, ext.Height),
		Image:     ext.Size(),
		Crop:      frame,
		Extension: ext,
	})
	c.state.Mode = ModeView
	c.clearExtension()
	c.setImage(ext.Size())
	return nil
}

func (c *Controller) restore(e Entry) error {
	c.state.Mode = ModeView
	c.session = nil
	c.clearExtension()
	c.setImage(e.Image)
	return nil
}

func (c *Controller) recomputeExtension() error {
	r, ok := c.state.Ratio.Value()
	if !ok {
		c.clearExtension()
		return nil
	}
	ext, err := geometry.ExtensionForRatio(c.state.Image, r, c.opts.Step)
	if err != nil {
		return err
	}
	c.state.Extension = ext
	c.state.AIPercent = geometry.AIContentPercentage(c.state.Image, ext.Size())
	return nil
}

func (c *Controller) clearExtension() {
	c.state.Extension = types.ExtensionResult{}
	c.state.AIPercent = 0
}

func (c *Controller) setImage(size types.Dimensions) {
	c.state.Image = size
	c.refit()
}

func (c *Controller) refit() {
	fit, err := geometry.FitToContainer(c.state.Image, c.state.Container)
	if err != nil {
		// no container yet: show at natural size
		fit = geometry.Fit{Scale: 1, Size: c.state.Image}
	}
	c.state.Fit = fit
	c.view.SetSize(fit.Size)
	if c.session != nil {
		c.session.SetScale(fit.Scale)
	}
}

// zoomTolerance keeps the handle hit box a fixed size on screen. Pointer
// positions reach the session already divided by the zoom scale.
func (c *Controller) zoomTolerance() {
	if c.session != nil {
		c.session.SetTolerance(c.opts.HandleTolerance / c.view.Scale())
	}
}

// sync copies derived values into the state snapshot.
func (c *Controller) sync() {
	if c.session != nil {
		c.state.Crop = c.session.Rect()
		c.state.Handle = c.session.Handle()
		c.state.Dragging = c.session.Dragging()
		c.state.AutoRatio = c.session.AutoRatio()
	} else {
		c.state.Crop, _ = geometry.FullFrame(c.state.Image)
		c.state.Handle = cropper.HandleNone
		c.state.Dragging = false
	}

	c.state.ZoomLevel = c.view.Level()
	c.state.ZoomPercent = c.view.Percentage()
	c.state.Pan = c.view.Pan()
	c.state.Zoomed = c.view.Zoomed()
	c.state.DrawMode = c.view.DrawMode()
	c.state.Brush = c.view.BrushEnabled()
}
