package tui

import (
	"math"
	"strings"

	"github.com/OCAP2/mapview/internal/camera"
	"github.com/OCAP2/mapview/internal/hints"
	"github.com/OCAP2/mapview/internal/ui"
	"github.com/OCAP2/mapview/internal/world"
	"github.com/OCAP2/mapview/pkg/core"
	"github.com/charmbracelet/lipgloss"
)

var glyphs = map[core.Kind]rune{
	core.KindBuilding:     '█',
	core.KindLane:         '▒',
	core.KindIntersection: '▓',
	core.KindCar:          '●',
	core.KindPedestrian:   '•',
}

const (
	iconGlyph  = '✚'
	debugGlyph = '*'
)

var textColor = core.RGB(20, 20, 20)

type cell struct {
	ch rune
	fg core.Color
	bg core.Color
}

// Canvas is a cell grid implementing ui.Renderer.
type Canvas struct {
	cols, rows int
	cam        *camera.Camera
	cells      []cell
}

func NewCanvas(cols, rows int, cam *camera.Camera) *Canvas {
	return &Canvas{cols: cols, rows: rows, cam: cam, cells: make([]cell, cols*rows)}
}

func (c *Canvas) at(col, row int) *cell {
	return &c.cells[row*c.cols+col]
}

// Cell returns the glyph and colors at col,row.
func (c *Canvas) Cell(col, row int) (rune, core.Color, core.Color) {
	x := c.at(col, row)
	return x.ch, x.fg, x.bg
}

func (c *Canvas) Clear(bg core.Color) {
	for i := range c.cells {
		c.cells[i] = cell{ch: ' ', fg: textColor, bg: bg}
	}
}

// cellCenter is the map point under the middle of a cell.
func (c *Canvas) cellCenter(col, row int) core.Pt2D {
	return c.cam.CursorToMap(core.Pt2D{
		X: float64(col) + 0.5,
		Y: float64(row*cellHeight) + cellHeight/2,
	})
}

func (c *Canvas) cellOf(pt core.Pt2D) (int, int, bool) {
	s := c.cam.MapToScreen(pt)
	col := int(math.Floor(s.X))
	row := int(math.Floor(s.Y / cellHeight))
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0, 0, false
	}
	return col, row, true
}

func (c *Canvas) Draw(obj world.Object, opts ui.DrawOptions) {
	ch, ok := glyphs[obj.ID().Kind]
	if !ok {
		ch = '?'
	}

	b := obj.Bounds()
	lo := c.cam.MapToScreen(core.Pt2D{X: b.MinX, Y: b.MinY})
	hi := c.cam.MapToScreen(core.Pt2D{X: b.MaxX, Y: b.MaxY})
	col0 := max(0, int(math.Floor(lo.X)))
	col1 := min(c.cols-1, int(math.Ceil(hi.X)))
	row0 := max(0, int(math.Floor(lo.Y/cellHeight)))
	row1 := min(c.rows-1, int(math.Ceil(hi.Y/cellHeight)))
	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			if obj.Contains(c.cellCenter(col, row)) {
				x := c.at(col, row)
				x.ch, x.fg = ch, opts.Color
			}
		}
	}

	// objects smaller than a cell still get one
	col, row, ok := c.cellOf(obj.Center())
	if !ok {
		return
	}
	x := c.at(col, row)
	switch {
	case opts.ShowIcon:
		x.ch, x.fg = iconGlyph, opts.Color
	case opts.DebugMode:
		x.ch, x.fg = debugGlyph, opts.Color
	case obj.ID().Kind.IsAgent() || x.ch == ' ':
		x.ch, x.fg = ch, opts.Color
	}
}

// DrawText writes the block in the given corner, clipping long lines.
func (c *Canvas) DrawText(t *hints.Text, corner hints.Corner) {
	lines := t.Lines()
	if len(lines) > c.rows {
		lines = lines[len(lines)-c.rows:]
	}
	top := 0
	if corner == hints.BottomLeft {
		top = c.rows - len(lines)
	}
	for i, l := range lines {
		fg := textColor
		if l.Highlight != nil {
			fg = *l.Highlight
		}
		col := 0
		for _, r := range l.Text {
			if col >= c.cols {
				break
			}
			x := c.at(col, top+i)
			x.ch, x.fg = r, fg
			col++
		}
	}
}

// String renders the grid, one lipgloss style per run of equal colors.
func (c *Canvas) String() string {
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		start := 0
		for col := 1; col <= c.cols; col++ {
			if col < c.cols && sameStyle(*c.at(col, row), *c.at(start, row)) {
				continue
			}
			sb.WriteString(c.renderRun(row, start, col))
			start = col
		}
	}
	return sb.String()
}

func (c *Canvas) renderRun(row, from, to int) string {
	first := c.at(from, row)
	runes := make([]rune, 0, to-from)
	for col := from; col < to; col++ {
		ch := c.at(col, row).ch
		if ch == 0 {
			ch = ' '
		}
		runes = append(runes, ch)
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(first.fg.Hex())).
		Background(lipgloss.Color(first.bg.Hex())).
		Render(string(runes))
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bg == b.bg
}
