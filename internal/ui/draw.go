package ui

import (
	"github.com/OCAP2/mapview/internal/hints"
	"github.com/OCAP2/mapview/internal/world"
	"github.com/OCAP2/mapview/pkg/core"
)

// DrawOptions is how one object should be drawn this frame.
type DrawOptions struct {
	Color     core.Color
	CamZoom   float64
	DebugMode bool
	ShowIcon  bool
}

// Renderer is the drawing surface supplied by the host.
type Renderer interface {
	Clear(bg core.Color)
	Draw(obj world.Object, opts DrawOptions)
	DrawText(t *hints.Text, corner hints.Corner)
}

var kindColors = map[core.Kind]core.Color{
	core.KindBuilding:     core.RGB(196, 193, 188),
	core.KindLane:         core.RGB(90, 90, 90),
	core.KindIntersection: core.RGB(120, 120, 120),
	core.KindCar:          core.RGB(31, 119, 180),
	core.KindPedestrian:   core.RGB(44, 160, 44),
}

// Draw paints the visible map with the hints of the last Event.
func (u *UI) Draw(r Renderer, h *hints.RenderingHints) {
	if h == nil {
		h = hints.New()
	}
	r.Clear(u.colors.GetDef("map background", core.RGB(242, 239, 233)))

	statics, dynamics := u.world.ObjectsOnscreen(u.camera.ScreenBounds())
	for _, objs := range [][]world.Object{statics, dynamics} {
		for _, obj := range objs {
			id := obj.ID()
			if h.IsHidden(id.Kind) {
				continue
			}
			r.Draw(obj, DrawOptions{
				Color:     u.colorFor(id, h),
				CamZoom:   u.camera.CamZoom,
				DebugMode: h.DebugMode,
				ShowIcon:  id.Kind == core.KindIntersection && (h.SuppressIcon == nil || *h.SuppressIcon != id),
			})
		}
	}
	r.DrawText(&h.OSD, hints.BottomLeft)
}

func (u *UI) colorFor(id core.ID, h *hints.RenderingHints) core.Color {
	if c, ok := h.ColorFor(id); ok {
		return c
	}
	if u.selected != nil && *u.selected == id {
		return u.colors.GetDef("selected", core.RGB(255, 255, 0))
	}
	return u.colors.GetDef(id.Kind.String(), kindColors[id.Kind])
}

// LastHints returns the hints produced by the most recent Event.
func (u *UI) LastHints() *hints.RenderingHints {
	return u.lastHints
}
