package hints

import "github.com/OCAP2/mapview/pkg/core"

// Line is one OSD row. Highlight is optional.
type Line struct {
	Text      string
	Highlight *core.Color
}

// Text is an ordered block of OSD lines.
type Text struct {
	lines []Line
}

// AddLine appends a plain line.
func (t *Text) AddLine(s string) {
	t.lines = append(t.lines, Line{Text: s})
}

// AddHighlighted appends a line drawn in c.
func (t *Text) AddHighlighted(s string, c core.Color) {
	t.lines = append(t.lines, Line{Text: s, Highlight: &c})
}

// Lines returns the lines in insertion order.
func (t *Text) Lines() []Line {
	return t.lines
}

func (t *Text) Len() int {
	return len(t.lines)
}

// Strings returns the line texts without styling.
func (t *Text) Strings() []string {
	out := make([]string, len(t.lines))
	for i, l := range t.lines {
		out[i] = l.Text
	}
	return out
}
