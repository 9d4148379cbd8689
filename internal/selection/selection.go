// Package selection resolves which object the cursor addresses.
package selection

import "github.com/OCAP2/mapview/pkg/core"

// Object is anything hit-testable on the map.
type Object interface {
	ID() core.ID
	Contains(pt core.Pt2D) bool
}

// Mouseover returns the topmost object under pt. Dynamic objects are drawn
// last so they are checked first, in the given order; statics are then
// walked from the last drawn back to the first.
func Mouseover[S, D Object](statics []S, dynamics []D, pt core.Pt2D) (core.ID, bool) {
	for _, obj := range dynamics {
		if obj.Contains(pt) {
			return obj.ID(), true
		}
	}
	for i := len(statics) - 1; i >= 0; i-- {
		if statics[i].Contains(pt) {
			return statics[i].ID(), true
		}
	}
	return core.ID{}, false
}

// Policy decides when the current selection is dropped or recomputed.
type Policy struct {
	// MinZoom is the zoom below which nothing is selectable.
	MinZoom float64
}

// ShouldClear is true only when zoom crosses the threshold downward.
func (p Policy) ShouldClear(oldZoom, newZoom float64) bool {
	return oldZoom >= p.MinZoom && newZoom < p.MinZoom
}

// ShouldRecompute is true for an unclaimed cursor move that is not part of
// a drag, at a zoom where selection is enabled.
func (p Policy) ShouldRecompute(moved, dragging bool, zoom float64) bool {
	return moved && !dragging && zoom >= p.MinZoom
}

// Enabled reports whether selection is possible at zoom.
func (p Policy) Enabled(zoom float64) bool {
	return zoom >= p.MinZoom
}
