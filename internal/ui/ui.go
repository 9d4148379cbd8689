// Package ui runs one frame of the interaction loop: camera input, mouseover
// selection, plugin dispatch, quit handling and the OSD.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/OCAP2/mapview/internal/camera"
	"github.com/OCAP2/mapview/internal/colors"
	"github.com/OCAP2/mapview/internal/hints"
	"github.com/OCAP2/mapview/internal/input"
	"github.com/OCAP2/mapview/internal/instrument"
	"github.com/OCAP2/mapview/internal/logging"
	"github.com/OCAP2/mapview/internal/plugin"
	"github.com/OCAP2/mapview/internal/selection"
	"github.com/OCAP2/mapview/internal/state"
	"github.com/OCAP2/mapview/internal/telemetry"
	"github.com/OCAP2/mapview/internal/world"
	"github.com/OCAP2/mapview/pkg/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrNoFocusPoint means the map has neither a building nor a lane to start on.
var ErrNoFocusPoint = errors.New("map has no building or lane to focus on")

// Config holds the loop settings.
type Config struct {
	MinZoomForMouseover float64
	// DiagnosticsPath receives the collected backtraces on quit. Empty
	// disables the dump.
	DiagnosticsPath string
}

// Dependencies are the collaborators of the loop. World and Store are
// required; everything else has a default.
type Dependencies struct {
	World      world.Snapshot
	Store      state.Store
	Colors     *colors.ColorScheme
	Plugins    plugin.Plugin
	Backtraces *instrument.Backtraces
	Logger     *slog.Logger
	Session    *logging.Session
	Recorder   telemetry.Recorder
	// Exit terminates the process after a quit; defaults to os.Exit.
	Exit func(code int)
}

// UI owns the camera and the current selection.
type UI struct {
	cfg    Config
	policy selection.Policy

	world      world.Snapshot
	store      state.Store
	colors     *colors.ColorScheme
	plugins    plugin.Plugin
	backtraces *instrument.Backtraces
	log        *slog.Logger
	session    *logging.Session
	recorder   telemetry.Recorder
	exit       func(int)

	camera    *camera.Camera
	selected  *core.ID
	focus     *core.Pt2D
	hidden    map[core.Kind]bool
	frame     uint64
	lastHints *hints.RenderingHints

	frames   metric.Int64Counter
	recalcs  metric.Int64Counter
	duration metric.Float64Histogram
}

// New restores the saved camera when it belongs to the loaded map, otherwise
// schedules a focus on the first building or lane.
func New(cfg Config, deps Dependencies) (*UI, error) {
	if deps.World == nil || deps.Store == nil {
		return nil, errors.New("ui: world and store are required")
	}
	u := &UI{
		cfg:        cfg,
		policy:     selection.Policy{MinZoom: cfg.MinZoomForMouseover},
		world:      deps.World,
		store:      deps.Store,
		colors:     deps.Colors,
		plugins:    deps.Plugins,
		backtraces: deps.Backtraces,
		log:        deps.Logger,
		session:    deps.Session,
		recorder:   deps.Recorder,
		exit:       deps.Exit,
		camera:     camera.New(),
		hidden:     make(map[core.Kind]bool),
	}
	if u.colors == nil {
		u.colors = colors.New("")
	}
	if u.plugins == nil {
		u.plugins = plugin.NewStack(nil, nil)
	}
	if u.log == nil {
		u.log = slog.Default()
	}
	if u.recorder == nil {
		u.recorder = telemetry.Nop{}
	}
	if u.exit == nil {
		u.exit = os.Exit
	}

	if err := u.initMetrics(); err != nil {
		return nil, err
	}
	u.session.SetMap(u.world.MapName())

	if err := u.restoreCamera(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *UI) initMetrics() error {
	m := meter()
	var err error

	u.frames, err = m.Int64Counter(
		"ui.frames",
		metric.WithDescription("Frames processed by the interaction loop"),
	)
	if err != nil {
		return fmt.Errorf("failed to create frames counter: %w", err)
	}

	u.recalcs, err = m.Int64Counter(
		"ui.selection.recalcs",
		metric.WithDescription("Mouseover recomputations"),
	)
	if err != nil {
		return fmt.Errorf("failed to create recalc counter: %w", err)
	}

	u.duration, err = m.Float64Histogram(
		"ui.event.duration",
		metric.WithDescription("Time spent handling one input event"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("failed to create duration histogram: %w", err)
	}
	return nil
}

func (u *UI) restoreCamera() error {
	mapName := u.world.MapName()
	saved, err := u.store.Load()
	switch {
	case err == nil && saved.MapName == mapName:
		u.camera.CamX = saved.CamX
		u.camera.CamY = saved.CamY
		u.camera.SetZoom(saved.CamZoom)
		u.log.Info("restored editor state", "map", mapName, "zoom", u.camera.CamZoom)
		return nil
	case err == nil:
		u.log.Warn("editor state is for another map, ignoring it", "saved", saved.MapName, "map", mapName)
	case errors.Is(err, state.ErrNotFound):
		u.log.Warn("no saved editor state", "map", mapName)
	default:
		u.log.Warn("couldn't load editor state", "error", err)
	}

	for _, id := range []core.ID{core.BuildingID(0), core.LaneID(0)} {
		if pt, ok := u.world.CanonicalPoint(id); ok {
			u.focus = &pt
			u.log.Info("focusing on default object", "object", id)
			return nil
		}
	}
	return ErrNoFocusPoint
}

// applyFocus centers the startup focus once the host has reported a size.
func (u *UI) applyFocus() {
	if u.focus == nil {
		return
	}
	if u.camera.CenterOn(*u.focus) {
		u.focus = nil
	}
}

// Event handles one input event and returns what the host must do next.
func (u *UI) Event(ev input.Event) (hints.Mode, *hints.RenderingHints) {
	start := time.Now()
	u.frame++
	u.session.SetFrame(u.frame)

	in := input.New(ev)
	oldZoom := u.camera.CamZoom
	u.camera.HandleRawInput(in)
	u.applyFocus()

	recalced := false
	if u.policy.ShouldClear(oldZoom, u.camera.CamZoom) {
		u.selected = nil
	}
	if _, moved := in.MovedMouse(); u.policy.ShouldRecompute(moved, u.camera.IsDragging(), u.camera.CamZoom) {
		u.recomputeSelection(u.hidden)
		recalced = true
	}

	h := hints.New()
	recalc := false
	u.plugins.Event(plugin.Ctx{
		Selection:       u.selected,
		World:           u.world,
		Input:           in,
		Camera:          u.camera,
		Hints:           h,
		RecalcSelection: &recalc,
		Log:             u.log,
	})
	u.hidden = h.Hidden
	if recalc {
		u.recomputeSelection(h.Hidden)
		recalced = true
	}

	if in.UnimportantKeyPressed("esc", "quit") {
		u.quit()
	}

	in.PopulateOSD(&h.OSD)
	u.lastHints = h
	u.record(ev, h, recalced, time.Since(start))
	return h.Mode, h
}

func (u *UI) recomputeSelection(hidden map[core.Kind]bool) {
	u.recalcs.Add(context.Background(), 1)

	pt, ok := u.camera.CursorInMap()
	if !ok || !u.policy.Enabled(u.camera.CamZoom) {
		u.selected = nil
		return
	}
	statics, dynamics := u.world.ObjectsOnscreen(u.camera.ScreenBounds())
	id, found := selection.Mouseover(visible(statics, hidden), visible(dynamics, hidden), pt)
	if !found {
		u.selected = nil
		return
	}
	u.selected = &id
}

func visible(objs []world.Object, hidden map[core.Kind]bool) []world.Object {
	if len(hidden) == 0 {
		return objs
	}
	out := objs[:0:0]
	for _, o := range objs {
		if !hidden[o.ID().Kind] {
			out = append(out, o)
		}
	}
	return out
}

func (u *UI) quit() {
	u.log.Info("quitting", "frames", u.frame)
	if err := u.saveState(); err != nil {
		panic(fmt.Errorf("failed to save editor state: %w", err))
	}
	if err := u.colors.Save(); err != nil {
		panic(fmt.Errorf("failed to save color scheme: %w", err))
	}
	if u.backtraces != nil && u.cfg.DiagnosticsPath != "" {
		if err := u.backtraces.Save(u.cfg.DiagnosticsPath); err != nil {
			u.log.Error("failed to save backtraces", "path", u.cfg.DiagnosticsPath, "error", err)
		} else {
			u.log.Info("saved backtraces", "path", u.cfg.DiagnosticsPath, "count", u.backtraces.Len())
		}
	}
	if err := u.recorder.Close(); err != nil {
		u.log.Warn("failed to close telemetry recorder", "error", err)
	}
	u.exit(0)
}

func (u *UI) saveState() error {
	return u.store.Save(state.EditorState{
		MapName: u.world.MapName(),
		CamX:    u.camera.CamX,
		CamY:    u.camera.CamY,
		CamZoom: u.camera.CamZoom,
	})
}

// DumpBeforeAbort saves the camera when the host is going down abnormally.
func (u *UI) DumpBeforeAbort() {
	if err := u.saveState(); err != nil {
		u.log.Error("failed to save editor state before abort", "error", err)
		return
	}
	u.log.Info("saved editor state before abort")
}

func (u *UI) record(ev input.Event, h *hints.RenderingHints, recalced bool, took time.Duration) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("event", ev.Kind.String()))
	u.frames.Add(ctx, 1, attrs)
	u.duration.Record(ctx, float64(took.Microseconds())/1000, attrs)

	u.recorder.RecordFrame(telemetry.FrameStats{
		Frame:    u.frame,
		Event:    ev.Kind.String(),
		Duration: took,
		Mode:     h.Mode.String(),
		Zoom:     u.camera.CamZoom,
		Selected: u.selected != nil,
		Recalc:   recalced,
	})
}

// Selection is the current mouseover.
func (u *UI) Selection() (core.ID, bool) {
	if u.selected == nil {
		return core.ID{}, false
	}
	return *u.selected, true
}

func (u *UI) Camera() *camera.Camera {
	return u.camera
}

// Frame is the number of events handled so far.
func (u *UI) Frame() uint64 {
	return u.frame
}
