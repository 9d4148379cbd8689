// Package colors is the named color table shared by everything that draws.
package colors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/OCAP2/mapview/pkg/core"
)

// ColorScheme maps names to colors. Names requested with a default are
// remembered so Save writes out a complete, editable table.
type ColorScheme struct {
	path string

	mu sync.Mutex
	m  map[string]core.Color
}

// New returns an empty scheme. With an empty path Save is a no-op.
func New(path string) *ColorScheme {
	return &ColorScheme{path: path, m: make(map[string]core.Color)}
}

// Load reads the scheme at path. A missing file yields an empty scheme.
func Load(path string) (*ColorScheme, error) {
	cs := New(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read color scheme: %w", err)
	}
	var m map[string]core.Color
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode color scheme %s: %w", path, err)
	}
	// a literal null decodes to a nil map
	for name, c := range m {
		cs.m[name] = c
	}
	return cs, nil
}

// GetDef returns the color for name, registering def if it is not set.
func (cs *ColorScheme) GetDef(name string, def core.Color) core.Color {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if c, ok := cs.m[name]; ok {
		return c
	}
	cs.m[name] = def
	return def
}

// Get returns the color for name.
func (cs *ColorScheme) Get(name string) (core.Color, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.m[name]
	return c, ok
}

// Set overrides a color.
func (cs *ColorScheme) Set(name string, c core.Color) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.m[name] = c
}

// Save writes the scheme back to the path it was loaded from.
func (cs *ColorScheme) Save() error {
	if cs.path == "" {
		return nil
	}
	cs.mu.Lock()
	data, err := json.MarshalIndent(cs.m, "", "  ")
	cs.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to encode color scheme: %w", err)
	}
	if err := os.WriteFile(cs.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write color scheme %s: %w", cs.path, err)
	}
	return nil
}

func (cs *ColorScheme) Path() string {
	return cs.path
}
