package input

import (
	"fmt"
	"time"

	"github.com/OCAP2/mapview/pkg/core"
)

// EventKind discriminates raw input events.
type EventKind uint8

const (
	EventNone EventKind = iota
	EventKeyPress
	EventMouseMove
	EventLeftDown
	EventLeftUp
	EventScroll
	EventResize
	EventUpdate
)

var eventKindNames = [...]string{
	EventNone:      "none",
	EventKeyPress:  "key",
	EventMouseMove: "move",
	EventLeftDown:  "left-down",
	EventLeftUp:    "left-up",
	EventScroll:    "scroll",
	EventResize:    "resize",
	EventUpdate:    "update",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Event is one raw input from the host. Positions are in screen units.
type Event struct {
	Kind   EventKind
	Key    string
	Pos    core.Pt2D
	Delta  float64
	Width  float64
	Height float64
	Dt     time.Duration
}

func KeyPress(key string) Event {
	return Event{Kind: EventKeyPress, Key: key}
}

func MouseMove(x, y float64) Event {
	return Event{Kind: EventMouseMove, Pos: core.Pt2D{X: x, Y: y}}
}

func LeftDown(x, y float64) Event {
	return Event{Kind: EventLeftDown, Pos: core.Pt2D{X: x, Y: y}}
}

func LeftUp(x, y float64) Event {
	return Event{Kind: EventLeftUp, Pos: core.Pt2D{X: x, Y: y}}
}

// Scroll is a wheel step at (x, y); positive delta zooms in.
func Scroll(x, y, delta float64) Event {
	return Event{Kind: EventScroll, Pos: core.Pt2D{X: x, Y: y}, Delta: delta}
}

func Resize(w, h float64) Event {
	return Event{Kind: EventResize, Width: w, Height: h}
}

// Update is the animation tick; dt is the wall time since the previous one.
func Update(dt time.Duration) Event {
	return Event{Kind: EventUpdate, Dt: dt}
}

// HasPos reports whether the event carries a cursor position.
func (e Event) HasPos() bool {
	switch e.Kind {
	case EventMouseMove, EventLeftDown, EventLeftUp, EventScroll:
		return true
	}
	return false
}
