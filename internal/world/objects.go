package world

import (
	"github.com/OCAP2/mapview/internal/geo"
	"github.com/OCAP2/mapview/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// area covers buildings and intersections.
type area struct {
	id     core.ID
	poly   geom.Polygon
	bounds core.Bounds
	center core.Pt2D
}

func newArea(id core.ID, outline []core.Pt2D) (*area, error) {
	poly, err := geo.Polygon(outline)
	if err != nil {
		return nil, err
	}
	center, ok := geo.Centroid(poly)
	if !ok {
		center = outline[0]
	}
	return &area{id: id, poly: poly, bounds: geo.PathBounds(outline), center: center}, nil
}

func (a *area) ID() core.ID         { return a.id }
func (a *area) Bounds() core.Bounds { return a.bounds }
func (a *area) Center() core.Pt2D   { return a.center }

func (a *area) Contains(pt core.Pt2D) bool {
	return a.bounds.Contains(pt) && geo.Contains(a.poly.AsGeometry(), pt)
}

// lane is a center line with a width.
type lane struct {
	id     core.ID
	line   geom.LineString
	points []core.Pt2D
	width  float64
	bounds core.Bounds
}

func newLane(id core.ID, center []core.Pt2D, width float64) (*lane, error) {
	line, err := geo.LineString(center)
	if err != nil {
		return nil, err
	}
	return &lane{
		id:     id,
		line:   line,
		points: center,
		width:  width,
		bounds: geo.PathBounds(center).Pad(width / 2),
	}, nil
}

func (l *lane) ID() core.ID         { return l.id }
func (l *lane) Bounds() core.Bounds { return l.bounds }

// Center is the first point of the center line.
func (l *lane) Center() core.Pt2D { return l.points[0] }

func (l *lane) Contains(pt core.Pt2D) bool {
	return l.bounds.Contains(pt) && geo.Within(l.line.AsGeometry(), pt, l.width/2)
}

// agent is a moving disc.
type agent struct {
	id     core.ID
	pos    core.Pt2D
	radius float64
}

func (a *agent) ID() core.ID       { return a.id }
func (a *agent) Center() core.Pt2D { return a.pos }

func (a *agent) Bounds() core.Bounds {
	b := core.Bounds{MinX: a.pos.X, MinY: a.pos.Y, MaxX: a.pos.X, MaxY: a.pos.Y}
	return b.Pad(a.radius)
}

func (a *agent) Contains(pt core.Pt2D) bool {
	return a.pos.Dist(pt) <= a.radius
}

func agentRadius(kind core.Kind) float64 {
	if kind == core.KindPedestrian {
		return 0.5
	}
	return 1.0
}
