// Package camera owns the screen<->map transform: pan offset in screen
// units plus a strictly positive zoom factor.
package camera

import (
	"math"

	"github.com/OCAP2/mapview/internal/input"
	"github.com/OCAP2/mapview/pkg/core"
)

const (
	DefaultMinZoom   = 0.05
	DefaultMaxZoom   = 64.0
	DefaultZoomSpeed = 0.1
)

// Camera maps screen coordinates to map coordinates as
// map = (screen + cam) / zoom.
type Camera struct {
	CamX    float64
	CamY    float64
	CamZoom float64

	MinZoom   float64
	MaxZoom   float64
	ZoomSpeed float64

	width, height float64

	cursor    core.Pt2D
	hasCursor bool

	leftDown bool
	dragging bool
	dragFrom core.Pt2D
}

// New returns a camera at the origin with zoom 1.
func New() *Camera {
	return &Camera{
		CamZoom:   1,
		MinZoom:   DefaultMinZoom,
		MaxZoom:   DefaultMaxZoom,
		ZoomSpeed: DefaultZoomSpeed,
	}
}

// HandleRawInput applies viewport, pan and zoom changes. Drag moves and
// scrolls are consumed so nothing downstream reacts to them.
func (c *Camera) HandleRawInput(in *input.UserInput) {
	ev := in.Event()
	if ev.HasPos() {
		c.cursor = ev.Pos
		c.hasCursor = true
	}

	switch ev.Kind {
	case input.EventResize:
		c.width, c.height = ev.Width, ev.Height
	case input.EventLeftDown:
		c.leftDown = true
		c.dragFrom = ev.Pos
	case input.EventLeftUp:
		c.leftDown = false
		c.dragging = false
	case input.EventMouseMove:
		if !c.leftDown {
			return
		}
		c.CamX -= ev.Pos.X - c.dragFrom.X
		c.CamY -= ev.Pos.Y - c.dragFrom.Y
		c.dragFrom = ev.Pos
		c.dragging = true
		in.ConsumeEvent()
	case input.EventScroll:
		c.zoomAround(ev.Pos, c.CamZoom*(1+c.ZoomSpeed*ev.Delta))
		in.ConsumeEvent()
	}
}

// zoomAround changes zoom while keeping the map point under the cursor fixed.
func (c *Camera) zoomAround(screen core.Pt2D, zoom float64) {
	anchor := c.CursorToMap(screen)
	c.CamZoom = c.clamp(zoom)
	c.CamX = anchor.X*c.CamZoom - screen.X
	c.CamY = anchor.Y*c.CamZoom - screen.Y
}

func (c *Camera) clamp(zoom float64) float64 {
	lo := c.MinZoom
	if lo <= 0 {
		lo = DefaultMinZoom
	}
	if math.IsNaN(zoom) || zoom < lo {
		return lo
	}
	if c.MaxZoom > 0 && zoom > c.MaxZoom {
		return c.MaxZoom
	}
	return zoom
}

// SetZoom replaces the zoom factor without moving the pan offset.
func (c *Camera) SetZoom(zoom float64) {
	c.CamZoom = c.clamp(zoom)
}

func (c *Camera) IsDragging() bool {
	return c.dragging
}

// CursorToMap converts a screen position to map space.
func (c *Camera) CursorToMap(screen core.Pt2D) core.Pt2D {
	return core.Pt2D{
		X: (screen.X + c.CamX) / c.CamZoom,
		Y: (screen.Y + c.CamY) / c.CamZoom,
	}
}

// MapToScreen is the inverse of CursorToMap.
func (c *Camera) MapToScreen(pt core.Pt2D) core.Pt2D {
	return core.Pt2D{
		X: pt.X*c.CamZoom - c.CamX,
		Y: pt.Y*c.CamZoom - c.CamY,
	}
}

// CursorInMap returns the last known cursor position in map space.
func (c *Camera) CursorInMap() (core.Pt2D, bool) {
	if !c.hasCursor {
		return core.Pt2D{}, false
	}
	return c.CursorToMap(c.cursor), true
}

// ViewportKnown is false until the host reports a non-zero window size.
func (c *Camera) ViewportKnown() bool {
	return c.width > 0 && c.height > 0
}

func (c *Camera) Viewport() (w, h float64) {
	return c.width, c.height
}

// CenterOn puts pt in the middle of the viewport without changing zoom.
// It does nothing and returns false while the viewport size is unknown.
func (c *Camera) CenterOn(pt core.Pt2D) bool {
	if !c.ViewportKnown() {
		return false
	}
	c.CamX = pt.X*c.CamZoom - c.width/2
	c.CamY = pt.Y*c.CamZoom - c.height/2
	return true
}

// ScreenBounds is the map-space rectangle currently visible.
func (c *Camera) ScreenBounds() core.Bounds {
	b := core.EmptyBounds()
	b.Update(c.CursorToMap(core.Pt2D{}))
	b.Update(c.CursorToMap(core.Pt2D{X: c.width, Y: c.height}))
	return b
}
