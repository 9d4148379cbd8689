package plugin

import (
	"fmt"

	"github.com/OCAP2/mapview/pkg/core"
)

// FollowTag is the mode of a FollowState.
type FollowTag uint8

const (
	FollowEmpty FollowTag = iota
	FollowActive
)

// FollowState is Empty or Active(trip).
type FollowState struct {
	Tag  FollowTag
	Trip core.TripID
}

// Is compares the mode only; the followed trip is ignored.
func (s FollowState) Is(tag FollowTag) bool {
	return s.Tag == tag
}

func (s FollowState) String() string {
	if s.Tag == FollowActive {
		return fmt.Sprintf("following %s", s.Trip)
	}
	return "not following"
}

// Follow keeps the camera centered on a trip.
type Follow struct {
	State FollowState
}

func NewFollow() *Follow {
	return &Follow{}
}

func (f *Follow) Event(ctx Ctx) bool {
	if f.State.Is(FollowEmpty) && ctx.Selection != nil {
		if agent, ok := ctx.Selection.AgentID(); ok {
			if trip, ok := ctx.World.AgentToTrip(agent); ok {
				if ctx.Input.KeyPressed("f", fmt.Sprintf("follow %s", agent)) {
					f.State = FollowState{Tag: FollowActive, Trip: trip}
					ctx.Log.Info("following", "trip", trip, "agent", agent)
					return true
				}
			}
		}
	}

	if !f.State.Is(FollowActive) {
		return false
	}

	if pt, ok := ctx.World.TripPoint(f.State.Trip); ok {
		ctx.Camera.CenterOn(pt)
	} else {
		ctx.Log.Warn("followed trip is gone, temporarily or not", "trip", f.State.Trip)
	}
	ctx.Hints.RequestAnimation()

	if ctx.Input.KeyPressed("enter", "stop following") {
		ctx.Log.Info("stopped following", "trip", f.State.Trip)
		f.State = FollowState{}
		// one more active frame so the release is rendered
		return true
	}
	return true
}
