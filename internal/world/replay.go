package world

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/OCAP2/mapview/internal/instrument"
	"github.com/OCAP2/mapview/pkg/core"
)

// Option configures a Replay.
type Option func(*Replay)

// WithLogger sets the logger used for trip lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(r *Replay) {
		r.log = l
	}
}

// WithBacktraces records a backtrace every time a trip finishes.
func WithBacktraces(b *instrument.Backtraces) Option {
	return func(r *Replay) {
		r.diag = b
	}
}

type trip struct {
	id     core.TripID
	agent  core.AgentID
	depart time.Duration
	speed  float64
	path   []core.Pt2D
	cum    []float64
	done   bool
}

func (t *trip) length() float64 {
	return t.cum[len(t.cum)-1]
}

// position interpolates along the path; false before departure and after
// arrival.
func (t *trip) position(now time.Duration) (core.Pt2D, bool) {
	if t.done || now < t.depart {
		return core.Pt2D{}, false
	}
	dist := (now - t.depart).Seconds() * t.speed
	if dist >= t.length() {
		return core.Pt2D{}, false
	}
	for i := 1; i < len(t.cum); i++ {
		if dist > t.cum[i] {
			continue
		}
		seg := t.cum[i] - t.cum[i-1]
		if seg == 0 {
			return t.path[i], true
		}
		f := (dist - t.cum[i-1]) / seg
		a, b := t.path[i-1], t.path[i]
		return core.Pt2D{X: a.X + (b.X-a.X)*f, Y: a.Y + (b.Y-a.Y)*f}, true
	}
	return t.path[len(t.path)-1], true
}

func (t *trip) arrived(now time.Duration) bool {
	if now < t.depart {
		return false
	}
	return (now-t.depart).Seconds()*t.speed >= t.length()
}

// Replay plays scripted trips over a static map. It implements Snapshot.
type Replay struct {
	name    string
	statics []Object
	byID    map[core.ID]Object
	labels  map[core.ID]string
	trips   []*trip
	tripIdx map[core.TripID]*trip
	now     time.Duration

	log  *slog.Logger
	diag *instrument.Backtraces
}

// NewReplay builds the map objects and trips of sc.
func NewReplay(sc *Scenario, opts ...Option) (*Replay, error) {
	r := &Replay{
		name:    sc.Name,
		byID:    make(map[core.ID]Object),
		labels:  make(map[core.ID]string),
		tripIdx: make(map[core.TripID]*trip),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for i, spec := range sc.Lanes {
		pts, err := sc.points(spec.Center)
		if err != nil {
			return nil, fmt.Errorf("lane %d: %w", i, err)
		}
		width := spec.Width
		if width <= 0 {
			width = 3
		}
		l, err := newLane(core.LaneID(uint32(i)), pts, width)
		if err != nil {
			return nil, fmt.Errorf("%w: lane %d: %v", ErrInvalidScenario, i, err)
		}
		r.addStatic(l, spec.Label)
	}
	if err := r.addAreas(sc, sc.Intersections, core.IntersectionID); err != nil {
		return nil, err
	}
	if err := r.addAreas(sc, sc.Buildings, core.BuildingID); err != nil {
		return nil, err
	}

	for _, spec := range sc.Trips {
		t, err := r.buildTrip(sc, spec)
		if err != nil {
			return nil, err
		}
		r.trips = append(r.trips, t)
		r.tripIdx[t.id] = t
	}
	return r, nil
}

// Load reads and builds a scenario file in one step.
func Load(path string, opts ...Option) (*Replay, error) {
	sc, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return NewReplay(sc, opts...)
}

func (r *Replay) addStatic(o Object, label string) {
	r.statics = append(r.statics, o)
	r.byID[o.ID()] = o
	if label != "" {
		r.labels[o.ID()] = label
	}
}

func (r *Replay) addAreas(sc *Scenario, specs []AreaSpec, mkID func(uint32) core.ID) error {
	for i, spec := range specs {
		id := mkID(uint32(i))
		pts, err := sc.points(spec.Outline)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		a, err := newArea(id, pts)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidScenario, id, err)
		}
		r.addStatic(a, spec.Label)
	}
	return nil
}

func (r *Replay) buildTrip(sc *Scenario, spec TripSpec) (*trip, error) {
	id := core.TripID(spec.ID)
	if _, dup := r.tripIdx[id]; dup {
		return nil, fmt.Errorf("%w: duplicate %s", ErrInvalidScenario, id)
	}
	kind, ok := core.KindFromString(spec.Agent)
	if !ok || !kind.IsAgent() {
		return nil, fmt.Errorf("%w: %s: unknown agent kind %q", ErrInvalidScenario, id, spec.Agent)
	}
	if spec.Speed <= 0 {
		return nil, fmt.Errorf("%w: %s: speed must be positive", ErrInvalidScenario, id)
	}
	path, err := sc.points(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	if len(path) < 2 {
		return nil, fmt.Errorf("%w: %s: path needs at least 2 points", ErrInvalidScenario, id)
	}

	cum := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		cum[i] = cum[i-1] + path[i-1].Dist(path[i])
	}
	return &trip{
		id:     id,
		agent:  core.AgentID{Kind: kind, Index: spec.AgentIndex},
		depart: time.Duration(spec.Depart * float64(time.Second)),
		speed:  spec.Speed,
		path:   path,
		cum:    cum,
	}, nil
}

// Step advances the replay clock. Trips that reach their destination are
// retired and their agents vanish.
func (r *Replay) Step(dt time.Duration) {
	r.now += dt
	for _, t := range r.trips {
		if t.done || !t.arrived(r.now) {
			continue
		}
		t.done = true
		r.log.Debug("trip finished", "trip", t.id, "agent", t.agent, "at", r.now)
		r.diag.Capture("trip finished")
	}
}

// Now is the replay clock.
func (r *Replay) Now() time.Duration {
	return r.now
}

// Finished reports whether every trip is done.
func (r *Replay) Finished() bool {
	for _, t := range r.trips {
		if !t.done {
			return false
		}
	}
	return true
}

func (r *Replay) MapName() string {
	return r.name
}

// ObjectsOnscreen filters by bounds overlap.
func (r *Replay) ObjectsOnscreen(b core.Bounds) (statics, dynamics []Object) {
	for _, o := range r.statics {
		if o.Bounds().Intersects(b) {
			statics = append(statics, o)
		}
	}
	for _, t := range r.trips {
		pos, ok := t.position(r.now)
		if !ok {
			continue
		}
		a := &agent{id: t.agent.ID(), pos: pos, radius: agentRadius(t.agent.Kind)}
		if a.Bounds().Intersects(b) {
			dynamics = append(dynamics, a)
		}
	}
	return statics, dynamics
}

// activeTrip returns the trip an agent is currently driving.
func (r *Replay) activeTrip(a core.AgentID) (*trip, core.Pt2D, bool) {
	for _, t := range r.trips {
		if t.agent != a {
			continue
		}
		if pos, ok := t.position(r.now); ok {
			return t, pos, true
		}
	}
	return nil, core.Pt2D{}, false
}

func (r *Replay) AgentToTrip(a core.AgentID) (core.TripID, bool) {
	t, _, ok := r.activeTrip(a)
	if !ok {
		return 0, false
	}
	return t.id, true
}

func (r *Replay) TripPoint(id core.TripID) (core.Pt2D, bool) {
	t, ok := r.tripIdx[id]
	if !ok {
		return core.Pt2D{}, false
	}
	return t.position(r.now)
}

// CanonicalPoint is the centroid for areas, the start of a lane and the
// current position of an agent.
func (r *Replay) CanonicalPoint(id core.ID) (core.Pt2D, bool) {
	if a, ok := id.AgentID(); ok {
		_, pos, ok := r.activeTrip(a)
		return pos, ok
	}
	o, ok := r.byID[id]
	if !ok {
		return core.Pt2D{}, false
	}
	return o.Center(), true
}

// Describe returns human readable details for the inspect overlay.
func (r *Replay) Describe(id core.ID) []string {
	lines := []string{id.String()}
	if a, ok := id.AgentID(); ok {
		t, pos, ok := r.activeTrip(a)
		if !ok {
			return append(lines, "not on a trip")
		}
		done := (r.now - t.depart).Seconds() * t.speed
		return append(lines,
			t.id.String(),
			fmt.Sprintf("at %.1f, %.1f", pos.X, pos.Y),
			fmt.Sprintf("%.0f%% of %.1f", 100*done/t.length(), t.length()),
		)
	}
	o, ok := r.byID[id]
	if !ok {
		return append(lines, "unknown")
	}
	if label, ok := r.labels[id]; ok {
		lines = append(lines, label)
	}
	b := o.Bounds()
	return append(lines, fmt.Sprintf("bounds %.1f,%.1f .. %.1f,%.1f", b.MinX, b.MinY, b.MaxX, b.MaxY))
}

// Extent is the bounds of every static object.
func (r *Replay) Extent() core.Bounds {
	b := core.EmptyBounds()
	for _, o := range r.statics {
		ob := o.Bounds()
		b.Update(core.Pt2D{X: ob.MinX, Y: ob.MinY})
		b.Update(core.Pt2D{X: ob.MaxX, Y: ob.MaxY})
	}
	return b
}
