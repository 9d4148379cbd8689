package ui

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/OCAP2/mapview/internal/colors"
	"github.com/OCAP2/mapview/internal/hints"
	"github.com/OCAP2/mapview/internal/input"
	"github.com/OCAP2/mapview/internal/instrument"
	"github.com/OCAP2/mapview/internal/plugin"
	"github.com/OCAP2/mapview/internal/state"
	"github.com/OCAP2/mapview/internal/world"
	"github.com/OCAP2/mapview/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type box struct {
	id core.ID
	b  core.Bounds
}

func newBox(id core.ID, minX, minY, maxX, maxY float64) *box {
	return &box{id: id, b: core.Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}}
}

func (b *box) ID() core.ID { return b.id }
func (b *box) Contains(pt core.Pt2D) bool { return b.b.Contains(pt) }
func (b *box) Bounds() core.Bounds { return b.b }
func (b *box) Center() core.Pt2D {
	return core.Pt2D{X: (b.b.MinX + b.b.MaxX) / 2, Y: (b.b.MinY + b.b.MaxY) / 2}
}

type fakeWorld struct {
	name     string
	statics  []world.Object
	dynamics []world.Object
}

func (w *fakeWorld) MapName() string { return w.name }

func (w *fakeWorld) ObjectsOnscreen(core.Bounds) (statics, dynamics []world.Object) {
	return w.statics, w.dynamics
}

func (w *fakeWorld) AgentToTrip(core.AgentID) (core.TripID, bool) { return 0, false }
func (w *fakeWorld) TripPoint(core.TripID) (core.Pt2D, bool) { return core.Pt2D{}, false }

func (w *fakeWorld) CanonicalPoint(id core.ID) (core.Pt2D, bool) {
	for _, o := range w.statics {
		if o.ID() == id {
			return o.Center(), true
		}
	}
	return core.Pt2D{}, false
}

// town has lane 0 and building 0 overlapping on 0..10, plus car 0 on 4..6.
func town() *fakeWorld {
	return &fakeWorld{
		name: "town",
		statics: []world.Object{
			newBox(core.LaneID(0), 0, 0, 10, 10),
			newBox(core.BuildingID(0), 0, 0, 10, 10),
			newBox(core.IntersectionID(0), 20, 20, 30, 30),
		},
		dynamics: []world.Object{
			newBox(core.CarID(0), 4, 4, 6, 6),
		},
	}
}

type fakeStore struct {
	state   state.EditorState
	loadErr error
	saveErr error
	saved   []state.EditorState
}

func (s *fakeStore) Load() (state.EditorState, error) {
	if s.loadErr != nil {
		return state.EditorState{}, s.loadErr
	}
	return s.state, nil
}

func (s *fakeStore) Save(st state.EditorState) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, st)
	return nil
}

func (s *fakeStore) Close() error { return nil }

type pluginFunc func(ctx plugin.Ctx) bool

func (f pluginFunc) Event(ctx plugin.Ctx) bool { return f(ctx) }

func savedAt(zoom float64) *fakeStore {
	return &fakeStore{state: state.EditorState{MapName: "town", CamZoom: zoom}}
}

func newUI(t *testing.T, w world.Snapshot, store state.Store, p plugin.Plugin) (*UI, *int) {
	t.Helper()
	exitCode := -1
	u, err := New(Config{MinZoomForMouseover: 4.8}, Dependencies{
		World:   w,
		Store:   store,
		Plugins: p,
		Logger:  slog.New(slog.DiscardHandler),
		Exit:    func(code int) { exitCode = code },
	})
	require.NoError(t, err)
	return u, &exitCode
}

func TestNew_RestoresMatchingState(t *testing.T) {
	store := &fakeStore{state: state.EditorState{MapName: "town", CamX: 10, CamY: 20, CamZoom: 2}}
	u, _ := newUI(t, town(), store, nil)

	assert.Equal(t, 10.0, u.Camera().CamX)
	assert.Equal(t, 20.0, u.Camera().CamY)
	assert.Equal(t, 2.0, u.Camera().CamZoom)

	// no pending focus: a resize leaves the camera alone
	u.Event(input.Resize(800, 600))
	assert.Equal(t, 10.0, u.Camera().CamX)
}

func TestNew_MismatchFocusesBuildingOnceViewportKnown(t *testing.T) {
	store := &fakeStore{state: state.EditorState{MapName: "elsewhere", CamX: 99, CamY: 99, CamZoom: 3}}
	u, _ := newUI(t, town(), store, nil)

	assert.Equal(t, 1.0, u.Camera().CamZoom)
	assert.Equal(t, 0.0, u.Camera().CamX)

	u.Event(input.Resize(800, 600))
	// building 0 center (5,5) at zoom 1
	assert.Equal(t, 5.0-400, u.Camera().CamX)
	assert.Equal(t, 5.0-300, u.Camera().CamY)
}

func TestNew_FallsBackToLane(t *testing.T) {
	w := &fakeWorld{name: "town", statics: []world.Object{newBox(core.LaneID(0), 100, 100, 110, 104)}}
	u, _ := newUI(t, w, &fakeStore{loadErr: state.ErrNotFound}, nil)

	u.Event(input.Resize(200, 100))
	assert.Equal(t, 105.0-100, u.Camera().CamX)
	assert.Equal(t, 102.0-50, u.Camera().CamY)
}

func TestNew_NoFocusPoint(t *testing.T) {
	_, err := New(Config{}, Dependencies{
		World:  &fakeWorld{name: "empty"},
		Store:  &fakeStore{loadErr: errors.New("disk on fire")},
		Logger: slog.New(slog.DiscardHandler),
	})
	assert.ErrorIs(t, err, ErrNoFocusPoint)
}

func TestNew_RequiresWorldAndStore(t *testing.T) {
	_, err := New(Config{}, Dependencies{World: town()})
	assert.Error(t, err)
}

func TestEvent_MouseoverPrefersDynamics(t *testing.T) {
	u, _ := newUI(t, town(), savedAt(5), nil)

	u.Event(input.MouseMove(25, 25))
	id, ok := u.Selection()
	require.True(t, ok)
	assert.Equal(t, core.CarID(0), id)

	u.Event(input.MouseMove(10, 10))
	id, ok = u.Selection()
	require.True(t, ok)
	assert.Equal(t, core.BuildingID(0), id, "topmost static wins")

	u.Event(input.MouseMove(400, 400))
	_, ok = u.Selection()
	assert.False(t, ok)
}

func TestEvent_NoSelectionBelowThreshold(t *testing.T) {
	u, _ := newUI(t, town(), savedAt(2), nil)

	u.Event(input.MouseMove(10, 10))
	_, ok := u.Selection()
	assert.False(t, ok)
}

func TestEvent_ThresholdCrossing(t *testing.T) {
	u, _ := newUI(t, town(), savedAt(5), nil)

	u.Event(input.MouseMove(25, 25))
	_, ok := u.Selection()
	require.True(t, ok)

	u.Event(input.Scroll(25, 25, -1))
	assert.InDelta(t, 4.5, u.Camera().CamZoom, 1e-9)
	_, ok = u.Selection()
	assert.False(t, ok, "downward crossing clears")

	u.Event(input.Scroll(25, 25, 1))
	assert.Greater(t, u.Camera().CamZoom, 4.8)
	_, ok = u.Selection()
	assert.False(t, ok, "upward crossing alone does not recompute")

	u.Event(input.MouseMove(25, 25))
	id, ok := u.Selection()
	require.True(t, ok)
	assert.Equal(t, core.CarID(0), id)
}

func TestEvent_DragDoesNotRecompute(t *testing.T) {
	u, _ := newUI(t, town(), savedAt(5), nil)

	u.Event(input.LeftDown(25, 25))
	u.Event(input.MouseMove(30, 30))
	assert.True(t, u.Camera().IsDragging())
	_, ok := u.Selection()
	assert.False(t, ok)
	assert.Equal(t, -5.0, u.Camera().CamX)
}

func TestEvent_RecalcRespectsHiddenLayers(t *testing.T) {
	hide := false
	p := pluginFunc(func(ctx plugin.Ctx) bool {
		if ctx.Input.KeyPressed("h", "hide buildings") {
			hide = true
			ctx.RequestRecalc()
		}
		if hide {
			ctx.Hints.Hide(core.KindBuilding)
		}
		return false
	})
	u, _ := newUI(t, town(), savedAt(5), p)

	u.Event(input.MouseMove(10, 10))
	id, _ := u.Selection()
	assert.Equal(t, core.BuildingID(0), id)

	u.Event(input.KeyPress("h"))
	id, ok := u.Selection()
	require.True(t, ok)
	assert.Equal(t, core.LaneID(0), id)

	u.Event(input.MouseMove(11, 11))
	id, _ = u.Selection()
	assert.Equal(t, core.LaneID(0), id, "hidden kinds stay unselectable on later moves")
}

func TestEvent_PluginSeesSelectionAndAnimates(t *testing.T) {
	var seen *core.ID
	p := pluginFunc(func(ctx plugin.Ctx) bool {
		seen = ctx.Selection
		ctx.Hints.RequestAnimation()
		return false
	})
	u, _ := newUI(t, town(), savedAt(5), p)

	mode, h := u.Event(input.MouseMove(25, 25))
	assert.Equal(t, hints.ModeAnimation, mode)
	assert.Equal(t, hints.ModeAnimation, h.Mode)
	require.NotNil(t, seen)
	assert.Equal(t, core.CarID(0), *seen)
	assert.Same(t, h, u.LastHints())
}

func TestEvent_OSDListsQuit(t *testing.T) {
	u, exit := newUI(t, town(), savedAt(5), nil)

	_, h := u.Event(input.KeyPress("q"))
	assert.Contains(t, h.OSD.Strings(), "[esc] quit")
	assert.Equal(t, -1, *exit)
	assert.Equal(t, uint64(1), u.Frame())
}

func TestEvent_QuitSavesEverything(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{state: state.EditorState{MapName: "town", CamX: 3, CamY: 4, CamZoom: 5}}
	exitCode := -1
	u, err := New(Config{MinZoomForMouseover: 4, DiagnosticsPath: filepath.Join(dir, "backtraces.json")}, Dependencies{
		World:      town(),
		Store:      store,
		Colors:     colors.New(filepath.Join(dir, "color_scheme")),
		Backtraces: instrument.New("nowhere"),
		Logger:     slog.New(slog.DiscardHandler),
		Exit:       func(code int) { exitCode = code },
	})
	require.NoError(t, err)

	u.Event(input.KeyPress("esc"))

	assert.Equal(t, 0, exitCode)
	require.Len(t, store.saved, 1)
	assert.Equal(t, state.EditorState{MapName: "town", CamX: 3, CamY: 4, CamZoom: 5}, store.saved[0])
	assert.FileExists(t, filepath.Join(dir, "color_scheme"))
	assert.FileExists(t, filepath.Join(dir, "backtraces.json"))
}

func TestEvent_QuitClaimedByPluginIsIgnored(t *testing.T) {
	p := pluginFunc(func(ctx plugin.Ctx) bool {
		return ctx.Input.KeyPressed("esc", "cancel")
	})
	store := savedAt(5)
	u, exit := newUI(t, town(), store, p)

	u.Event(input.KeyPress("esc"))
	assert.Equal(t, -1, *exit)
	assert.Empty(t, store.saved)
}

func TestEvent_QuitSaveFailurePanics(t *testing.T) {
	store := savedAt(5)
	store.saveErr = errors.New("read-only")
	u, exit := newUI(t, town(), store, nil)

	assert.Panics(t, func() { u.Event(input.KeyPress("esc")) })
	assert.Equal(t, -1, *exit)
}

func TestDumpBeforeAbort(t *testing.T) {
	store := savedAt(5)
	u, _ := newUI(t, town(), store, nil)

	u.DumpBeforeAbort()
	require.Len(t, store.saved, 1)
	assert.Equal(t, "town", store.saved[0].MapName)

	store.saveErr = errors.New("gone")
	assert.NotPanics(t, u.DumpBeforeAbort)
}

type drawn struct {
	id   core.ID
	opts DrawOptions
}

type recordingRenderer struct {
	bg     core.Color
	drawn  []drawn
	text   []string
	corner hints.Corner
}

func (r *recordingRenderer) Clear(bg core.Color) { r.bg = bg }

func (r *recordingRenderer) Draw(obj world.Object, opts DrawOptions) {
	r.drawn = append(r.drawn, drawn{id: obj.ID(), opts: opts})
}

func (r *recordingRenderer) DrawText(t *hints.Text, corner hints.Corner) {
	r.text = t.Strings()
	r.corner = corner
}

func TestDraw(t *testing.T) {
	u, _ := newUI(t, town(), savedAt(5), nil)
	_, h := u.Event(input.MouseMove(10, 10)) // selects building 0

	orange := core.RGB(255, 140, 0)
	h.Override(core.LaneID(0), orange)
	h.DebugMode = true

	r := &recordingRenderer{}
	u.Draw(r, h)

	assert.Equal(t, core.RGB(242, 239, 233), r.bg)
	require.Len(t, r.drawn, 4)
	assert.Equal(t, []core.ID{core.LaneID(0), core.BuildingID(0), core.IntersectionID(0), core.CarID(0)},
		[]core.ID{r.drawn[0].id, r.drawn[1].id, r.drawn[2].id, r.drawn[3].id})

	assert.Equal(t, orange, r.drawn[0].opts.Color)
	assert.Equal(t, core.RGB(255, 255, 0), r.drawn[1].opts.Color)
	assert.Equal(t, kindColors[core.KindIntersection], r.drawn[2].opts.Color)
	assert.Equal(t, kindColors[core.KindCar], r.drawn[3].opts.Color)

	assert.True(t, r.drawn[2].opts.ShowIcon)
	assert.False(t, r.drawn[1].opts.ShowIcon)
	assert.True(t, r.drawn[0].opts.DebugMode)
	assert.Equal(t, 5.0, r.drawn[0].opts.CamZoom)

	assert.Equal(t, hints.BottomLeft, r.corner)
	assert.Contains(t, r.text, "[esc] quit")
}

func TestDraw_HiddenAndSuppressedIcon(t *testing.T) {
	u, _ := newUI(t, town(), savedAt(5), nil)
	h := hints.New()
	h.Hide(core.KindBuilding)
	ix := core.IntersectionID(0)
	h.SuppressIcon = &ix

	r := &recordingRenderer{}
	u.Draw(r, h)

	require.Len(t, r.drawn, 3)
	for _, d := range r.drawn {
		assert.NotEqual(t, core.KindBuilding, d.id.Kind)
		assert.False(t, d.opts.ShowIcon)
	}
}

func TestDraw_SchemeOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "color_scheme")
	require.NoError(t, os.WriteFile(path, []byte(`{"lane": {"r": 1, "g": 2, "b": 3, "a": 255}}`), 0o644))
	cs, err := colors.Load(path)
	require.NoError(t, err)

	u, err := New(Config{MinZoomForMouseover: 4}, Dependencies{
		World:  town(),
		Store:  savedAt(5),
		Colors: cs,
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	r := &recordingRenderer{}
	u.Draw(r, nil)
	assert.Equal(t, core.Color{R: 1, G: 2, B: 3, A: 255}, r.drawn[0].opts.Color)
}
