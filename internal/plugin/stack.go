package plugin

import "fmt"

// Stack dispatches to an explicit priority list. Modal plugins compete for
// focus: the one holding focus runs alone among the modals and keeps focus
// while it returns true; without focus, modals run in order until one
// returns true and takes it. When the focused modal releases, the remaining
// modals are offered the same frame. Ambient plugins always run afterwards,
// in order. Ambient Advancers step time before anyone else sees the frame.
// Input is single-claim, so a key taken by a modal never reaches an
// ambient.
type Stack struct {
	modal   []Plugin
	ambient []Plugin
	focus   int
}

// NewStack builds a stack; index order is priority order.
func NewStack(modal, ambient []Plugin) *Stack {
	return &Stack{modal: modal, ambient: ambient, focus: -1}
}

func (s *Stack) Event(ctx Ctx) bool {
	for _, p := range s.ambient {
		if a, ok := p.(Advancer); ok {
			a.Advance(ctx)
		}
	}

	active := false
	released := -1
	if s.focus >= 0 {
		p := s.modal[s.focus]
		if p.Event(ctx) {
			active = true
		} else {
			ctx.Log.Debug("modal plugin released focus", "plugin", name(p))
			released = s.focus
			s.focus = -1
		}
	}
	// a release frame still offers the event to the other modals
	if s.focus < 0 {
		for i, p := range s.modal {
			if i == released {
				continue
			}
			if p.Event(ctx) {
				ctx.Log.Debug("modal plugin took focus", "plugin", name(p))
				s.focus = i
				active = true
				break
			}
		}
	}

	for _, p := range s.ambient {
		if p.Event(ctx) {
			active = true
		}
	}
	return active
}

// Focus returns the modal plugin currently holding focus.
func (s *Stack) Focus() (Plugin, bool) {
	if s.focus < 0 {
		return nil, false
	}
	return s.modal[s.focus], true
}

func name(p Plugin) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
