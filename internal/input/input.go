// Package input wraps one raw event with single-claim query semantics:
// the first caller that matches an event consumes it and every later
// query for the same frame sees nothing.
package input

import (
	"fmt"

	"github.com/OCAP2/mapview/internal/hints"
	"github.com/OCAP2/mapview/pkg/core"
)

type binding struct {
	key   string
	label string
}

// UserInput is the per-frame input surface handed to the camera and plugins.
type UserInput struct {
	event    Event
	consumed bool

	important   []binding
	unimportant []binding
}

// New wraps ev for one frame.
func New(ev Event) *UserInput {
	return &UserInput{event: ev}
}

// Event returns the raw event regardless of consumption.
func (u *UserInput) Event() Event {
	return u.event
}

// Consumed reports whether someone already claimed the event.
func (u *UserInput) Consumed() bool {
	return u.consumed
}

// ConsumeEvent marks the event as handled.
func (u *UserInput) ConsumeEvent() {
	u.consumed = true
}

func (u *UserInput) claimKey(key string) bool {
	if u.consumed || u.event.Kind != EventKeyPress || u.event.Key != key {
		return false
	}
	u.consumed = true
	return true
}

// KeyPressed is true at most once per key press. When it does not claim the
// press, label is offered as an available action on the OSD.
func (u *UserInput) KeyPressed(key, label string) bool {
	if u.claimKey(key) {
		return true
	}
	if label != "" {
		u.important = append(u.important, binding{key: key, label: label})
	}
	return false
}

// UnimportantKeyPressed behaves like KeyPressed; its label goes to the
// secondary list.
func (u *UserInput) UnimportantKeyPressed(key, label string) bool {
	if u.claimKey(key) {
		return true
	}
	if label != "" {
		u.unimportant = append(u.unimportant, binding{key: key, label: label})
	}
	return false
}

// MovedMouse returns the new cursor position for an unclaimed move.
func (u *UserInput) MovedMouse() (core.Pt2D, bool) {
	if u.consumed || u.event.Kind != EventMouseMove {
		return core.Pt2D{}, false
	}
	return u.event.Pos, true
}

// IsUpdate reports whether this frame is an animation tick.
func (u *UserInput) IsUpdate() bool {
	return u.event.Kind == EventUpdate
}

// PopulateOSD appends the available bindings collected this frame.
func (u *UserInput) PopulateOSD(t *hints.Text) {
	for _, b := range u.important {
		t.AddLine(fmt.Sprintf("[%s] %s", b.key, b.label))
	}
	for _, b := range u.unimportant {
		t.AddLine(fmt.Sprintf("[%s] %s", b.key, b.label))
	}
}

// Bindings returns the important labels offered so far, for tests and the
// status bar.
func (u *UserInput) Bindings() []string {
	out := make([]string, len(u.important))
	for i, b := range u.important {
		out[i] = b.label
	}
	return out
}
