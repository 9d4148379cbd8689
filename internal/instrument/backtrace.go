// Package instrument collects deduplicated call stacks for rarely hit code
// paths so they can be inspected after a session.
package instrument

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
)

const maxDepth = 64

// Backtraces is a set of captured call chains. A nil *Backtraces is valid
// and ignores every capture, which is how diagnostics are switched off.
type Backtraces struct {
	// Boundary is the fully qualified function name where a capture stops
	// (inclusive). Empty means record the whole stack.
	Boundary string

	mu    sync.Mutex
	calls map[string][]string
}

// New returns an empty set that stops walking at boundary.
func New(boundary string) *Backtraces {
	return &Backtraces{
		Boundary: boundary,
		calls:    make(map[string][]string),
	}
}

// Capture records the chain of callers of Capture, labelled with label.
// Identical chains are stored once.
func (b *Backtraces) Capture(label string) {
	if b == nil {
		return
	}

	pcs := make([]uintptr, maxDepth)
	// skip runtime.Callers and Capture
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	calls := []string{label}
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			calls = append(calls, frame.Function)
			if frame.Function == b.Boundary {
				break
			}
		}
		if !more {
			break
		}
	}

	key := strings.Join(calls, "\x00")
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.calls == nil {
		b.calls = make(map[string][]string)
	}
	b.calls[key] = calls
}

// Len returns the number of distinct chains.
func (b *Backtraces) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// Snapshot returns the distinct chains in a stable order.
func (b *Backtraces) Snapshot() [][]string {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]string, 0, len(b.calls))
	for k := range b.calls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, b.calls[k])
	}
	return out
}

// Save writes every distinct chain to path as a JSON array of arrays.
func (b *Backtraces) Save(path string) error {
	if b == nil {
		return nil
	}
	data, err := json.MarshalIndent(b.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backtraces: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backtraces to %s: %w", path, err)
	}
	return nil
}
