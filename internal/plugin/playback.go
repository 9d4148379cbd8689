package plugin

import (
	"fmt"
	"time"
)

// Clock is the simulation time source driven by Playback.
type Clock interface {
	Step(dt time.Duration)
	Finished() bool
}

const (
	minSpeed = 0.25
	maxSpeed = 16
)

// Playback advances the simulation on update ticks and owns the pause and
// speed keys.
type Playback struct {
	clock  Clock
	Paused bool
	Speed  float64
}

func NewPlayback(clock Clock) *Playback {
	return &Playback{clock: clock, Speed: 1}
}

// Advance steps the clock on update ticks unless playback is paused or over.
func (p *Playback) Advance(ctx Ctx) {
	if p.Paused || p.clock.Finished() || !ctx.Input.IsUpdate() {
		return
	}
	dt := time.Duration(float64(ctx.Input.Event().Dt) * p.Speed)
	p.clock.Step(dt)
	// agents moved under the cursor
	ctx.RequestRecalc()
}

func (p *Playback) Event(ctx Ctx) bool {
	label := "pause"
	if p.Paused {
		label = "resume"
	}
	if ctx.Input.KeyPressed("space", label) {
		p.Paused = !p.Paused
	}
	if ctx.Input.KeyPressed("]", fmt.Sprintf("speed up (x%g)", p.Speed)) {
		p.Speed = min(p.Speed*2, maxSpeed)
	}
	if ctx.Input.KeyPressed("[", fmt.Sprintf("slow down (x%g)", p.Speed)) {
		p.Speed = max(p.Speed/2, minSpeed)
	}

	if p.Paused || p.clock.Finished() {
		return false
	}
	ctx.Hints.RequestAnimation()
	return true
}
