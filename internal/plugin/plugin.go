// Package plugin defines the interaction handlers dispatched once per frame
// and the composite that arbitrates between them.
package plugin

import (
	"log/slog"

	"github.com/OCAP2/mapview/internal/camera"
	"github.com/OCAP2/mapview/internal/hints"
	"github.com/OCAP2/mapview/internal/input"
	"github.com/OCAP2/mapview/internal/world"
	"github.com/OCAP2/mapview/pkg/core"
)

// Ctx is everything a plugin may touch during one Event call.
type Ctx struct {
	// Selection is the current mouseover, nil when nothing is selected.
	Selection *core.ID
	World     world.Snapshot

	Input  *input.UserInput
	Camera *camera.Camera
	Hints  *hints.RenderingHints

	// RecalcSelection asks the loop to redo mouseover after dispatch.
	RecalcSelection *bool
	Log             *slog.Logger
}

// RequestRecalc sets the recalc out-flag.
func (c Ctx) RequestRecalc() {
	if c.RecalcSelection != nil {
		*c.RecalcSelection = true
	}
}

// Plugin reacts to one frame of input. The result is true while the plugin
// wants to stay active (modal).
type Plugin interface {
	Event(ctx Ctx) bool
}

// Advancer moves simulation time. The Stack advances its ambient Advancers
// before any plugin handles the frame, so a plugin that tracks an agent sees
// the agent where it will be drawn.
type Advancer interface {
	Advance(ctx Ctx)
}
