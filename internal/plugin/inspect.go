package plugin

import (
	"fmt"

	"github.com/OCAP2/mapview/internal/world"
	"github.com/OCAP2/mapview/pkg/core"
)

// InspectColor highlights the inspected object.
var InspectColor = core.RGB(255, 140, 0)

// Inspect pins one object and shows its details on the OSD.
type Inspect struct {
	target *core.ID
}

func NewInspect() *Inspect {
	return &Inspect{}
}

// Target returns the pinned object.
func (p *Inspect) Target() (core.ID, bool) {
	if p.target == nil {
		return core.ID{}, false
	}
	return *p.target, true
}

func (p *Inspect) Event(ctx Ctx) bool {
	if p.target == nil {
		if ctx.Selection == nil {
			return false
		}
		id := *ctx.Selection
		if !ctx.Input.KeyPressed("i", fmt.Sprintf("inspect %s", id)) {
			return false
		}
		p.target = &id
		ctx.RequestRecalc()
	}

	id := *p.target
	ctx.Hints.Override(id, InspectColor)
	ctx.Hints.SuppressIcon = &id
	if d, ok := ctx.World.(world.Describer); ok {
		for _, line := range d.Describe(id) {
			ctx.Hints.OSD.AddHighlighted(line, InspectColor)
		}
	} else {
		ctx.Hints.OSD.AddHighlighted(id.String(), InspectColor)
	}

	if ctx.Input.KeyPressed("x", "stop inspecting") {
		p.target = nil
		ctx.RequestRecalc()
	}
	return true
}
