// Package hints holds the per-frame drawing directives that plugins write
// and the renderer reads. A RenderingHints value lives for one frame.
package hints

import "github.com/OCAP2/mapview/pkg/core"

// Mode tells the host whether it must keep producing frames.
type Mode uint8

const (
	// ModeInputOnly redraws only when new input arrives.
	ModeInputOnly Mode = iota
	// ModeAnimation asks the host to schedule update ticks.
	ModeAnimation
)

func (m Mode) String() string {
	if m == ModeAnimation {
		return "animation"
	}
	return "input-only"
}

// Corner is where on screen a text block is anchored.
type Corner uint8

const (
	BottomLeft Corner = iota
	TopLeft
)

// RenderingHints are rebuilt empty at the start of every frame.
type RenderingHints struct {
	Mode           Mode
	OSD            Text
	ColorOverrides map[core.ID]core.Color
	Hidden         map[core.Kind]bool
	SuppressIcon   *core.ID
	DebugMode      bool
}

// New returns empty hints for a fresh frame.
func New() *RenderingHints {
	return &RenderingHints{
		Mode:           ModeInputOnly,
		ColorOverrides: make(map[core.ID]core.Color),
		Hidden:         make(map[core.Kind]bool),
	}
}

// RequestAnimation upgrades the frame to animation mode. Nothing downgrades it.
func (h *RenderingHints) RequestAnimation() {
	h.Mode = ModeAnimation
}

// Override forces the draw color of one object.
func (h *RenderingHints) Override(id core.ID, c core.Color) {
	h.ColorOverrides[id] = c
}

// ColorFor returns the override for id, if any.
func (h *RenderingHints) ColorFor(id core.ID) (core.Color, bool) {
	c, ok := h.ColorOverrides[id]
	return c, ok
}

func (h *RenderingHints) Hide(kind core.Kind) {
	h.Hidden[kind] = true
}

func (h *RenderingHints) IsHidden(kind core.Kind) bool {
	return h.Hidden[kind]
}
