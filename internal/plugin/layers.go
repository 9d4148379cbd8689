package plugin

import (
	"fmt"

	"github.com/OCAP2/mapview/pkg/core"
)

type layerToggle struct {
	key  string
	kind core.Kind
}

// Layers hides whole categories of static objects.
type Layers struct {
	toggles []layerToggle
	hidden  map[core.Kind]bool
}

func NewLayers() *Layers {
	return &Layers{
		toggles: []layerToggle{
			{key: "1", kind: core.KindLane},
			{key: "2", kind: core.KindBuilding},
			{key: "3", kind: core.KindIntersection},
		},
		hidden: make(map[core.Kind]bool),
	}
}

func (l *Layers) Event(ctx Ctx) bool {
	changed := false
	for _, t := range l.toggles {
		verb := "hide"
		if l.hidden[t.kind] {
			verb = "show"
		}
		if ctx.Input.KeyPressed(t.key, fmt.Sprintf("%s %ss", verb, t.kind)) {
			l.hidden[t.kind] = !l.hidden[t.kind]
			changed = true
		}
	}
	for kind, hidden := range l.hidden {
		if hidden {
			ctx.Hints.Hide(kind)
		}
	}
	if changed {
		ctx.RequestRecalc()
	}
	return changed
}

// Hidden reports whether kind is currently switched off.
func (l *Layers) Hidden(kind core.Kind) bool {
	return l.hidden[kind]
}
