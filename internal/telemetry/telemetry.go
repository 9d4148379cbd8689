// Package telemetry ships per-frame session statistics to InfluxDB.
package telemetry

import "time"

// FrameStats summarizes one UI frame.
type FrameStats struct {
	Frame    uint64
	Event    string
	Duration time.Duration
	Mode     string
	Zoom     float64
	Selected bool
	Recalc   bool
}

// Recorder receives frame statistics. Implementations must not block.
type Recorder interface {
	RecordFrame(s FrameStats)
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordFrame(FrameStats) {}
func (Nop) Close() error           { return nil }
