// Package world is the read side of the simulation as the UI sees it.
package world

import (
	"github.com/OCAP2/mapview/internal/selection"
	"github.com/OCAP2/mapview/pkg/core"
)

// Object is a drawable, hit-testable map or agent object.
type Object interface {
	selection.Object
	Bounds() core.Bounds
	Center() core.Pt2D
}

// Snapshot is what one frame may read from the simulation.
type Snapshot interface {
	MapName() string
	// ObjectsOnscreen returns statics in draw order and dynamics in
	// front-to-back order.
	ObjectsOnscreen(b core.Bounds) (statics, dynamics []Object)
	AgentToTrip(agent core.AgentID) (core.TripID, bool)
	// TripPoint is false while the trip has no position (not departed or
	// already finished).
	TripPoint(trip core.TripID) (core.Pt2D, bool)
	CanonicalPoint(id core.ID) (core.Pt2D, bool)
}

// Describer is implemented by snapshots that can explain an object.
type Describer interface {
	Describe(id core.ID) []string
}
