package camera

import (
	"testing"

	"github.com/OCAP2/mapview/internal/input"
	"github.com/OCAP2/mapview/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sized(w, h float64) *Camera {
	c := New()
	c.HandleRawInput(input.New(input.Resize(w, h)))
	return c
}

func TestCursorToMap(t *testing.T) {
	c := New()
	c.CamX, c.CamY, c.CamZoom = 10, 20, 2

	got := c.CursorToMap(core.Pt2D{X: 30, Y: 40})
	assert.Equal(t, core.Pt2D{X: 20, Y: 30}, got)
	assert.Equal(t, core.Pt2D{X: 30, Y: 40}, c.MapToScreen(got))
}

func TestCenterOn_RoundTrip(t *testing.T) {
	for _, zoom := range []float64{0.5, 1, 4, 13.7} {
		c := sized(800, 600)
		c.SetZoom(zoom)
		pt := core.Pt2D{X: 100, Y: 200}

		require.True(t, c.CenterOn(pt))
		got := c.CursorToMap(core.Pt2D{X: 400, Y: 300})
		assert.InDelta(t, pt.X, got.X, 1e-9)
		assert.InDelta(t, pt.Y, got.Y, 1e-9)
		assert.Equal(t, zoom, c.CamZoom, "centering never changes zoom")
	}
}

func TestCenterOn_UnknownViewport(t *testing.T) {
	c := New()
	c.CamX, c.CamY = 5, 6

	assert.False(t, c.CenterOn(core.Pt2D{X: 100, Y: 200}))
	assert.Equal(t, 5.0, c.CamX)
	assert.Equal(t, 6.0, c.CamY)
}

func TestDrag_PansAndConsumes(t *testing.T) {
	c := sized(100, 100)
	c.HandleRawInput(input.New(input.LeftDown(10, 10)))
	assert.False(t, c.IsDragging())

	move := input.New(input.MouseMove(15, 12))
	c.HandleRawInput(move)
	assert.True(t, move.Consumed())
	assert.True(t, c.IsDragging())
	assert.Equal(t, -5.0, c.CamX)
	assert.Equal(t, -2.0, c.CamY)

	c.HandleRawInput(input.New(input.LeftUp(15, 12)))
	assert.False(t, c.IsDragging())

	free := input.New(input.MouseMove(20, 20))
	c.HandleRawInput(free)
	assert.False(t, free.Consumed())
}

func TestScroll_ZoomsAroundCursor(t *testing.T) {
	c := sized(100, 100)
	cursor := core.Pt2D{X: 40, Y: 60}
	before := c.CursorToMap(cursor)

	ev := input.New(input.Scroll(cursor.X, cursor.Y, 5))
	c.HandleRawInput(ev)

	assert.True(t, ev.Consumed())
	assert.InDelta(t, 1.5, c.CamZoom, 1e-9)
	after := c.CursorToMap(cursor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestZoomNeverNonPositive(t *testing.T) {
	c := sized(100, 100)
	for i := 0; i < 100; i++ {
		c.HandleRawInput(input.New(input.Scroll(0, 0, -20)))
	}
	assert.Greater(t, c.CamZoom, 0.0)
	assert.Equal(t, c.MinZoom, c.CamZoom)

	c.SetZoom(1e9)
	assert.Equal(t, c.MaxZoom, c.CamZoom)
}

func TestScreenBounds(t *testing.T) {
	c := sized(200, 100)
	c.SetZoom(2)
	c.CamX, c.CamY = 20, 40

	assert.Equal(t, core.Bounds{MinX: 10, MinY: 20, MaxX: 110, MaxY: 70}, c.ScreenBounds())
}

func TestCursorInMap(t *testing.T) {
	c := New()
	_, ok := c.CursorInMap()
	assert.False(t, ok)

	c.HandleRawInput(input.New(input.MouseMove(3, 4)))
	pt, ok := c.CursorInMap()
	require.True(t, ok)
	assert.Equal(t, core.Pt2D{X: 3, Y: 4}, pt)
}
