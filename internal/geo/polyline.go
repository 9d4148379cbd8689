package geo

import (
	"encoding/json"
	"fmt"

	"github.com/OCAP2/mapview/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ParsePoints parses a JSON array of coordinates into map points.
// Input format: "[[x1,y1],[x2,y2],...]"
func ParsePoints(input string) ([]core.Pt2D, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse coordinates JSON: %w", err)
	}
	return PointsFromPairs(coords)
}

// PointsFromPairs validates raw [x,y] pairs.
func PointsFromPairs(coords [][]float64) ([]core.Pt2D, error) {
	pts := make([]core.Pt2D, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		pts[i] = core.Pt2D{X: coord[0], Y: coord[1]}
	}
	return pts, nil
}

func sequence(pts []core.Pt2D) geom.Sequence {
	flatCoords := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		flatCoords = append(flatCoords, p.X, p.Y)
	}
	return geom.NewSequence(flatCoords, geom.DimXY)
}

// LineString builds a line through pts.
func LineString(pts []core.Pt2D) (geom.LineString, error) {
	if len(pts) < 2 {
		return geom.LineString{}, fmt.Errorf("polyline must have at least 2 points, got %d", len(pts))
	}
	ls, err := geom.NewLineString(sequence(pts))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("invalid polyline: %w", err)
	}
	return ls, nil
}

// Polygon builds a single-ring polygon. The ring is closed if the last point
// does not repeat the first.
func Polygon(ring []core.Pt2D) (geom.Polygon, error) {
	if len(ring) < 3 {
		return geom.Polygon{}, fmt.Errorf("polygon ring must have at least 3 points, got %d", len(ring))
	}
	closed := ring
	if ring[0] != ring[len(ring)-1] {
		closed = append(append([]core.Pt2D{}, ring...), ring[0])
	}
	outer, err := geom.NewLineString(sequence(closed))
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("invalid polygon ring: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{outer})
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("invalid polygon: %w", err)
	}
	return poly, nil
}

// Centroid returns the polygon's centroid in map space.
func Centroid(p geom.Polygon) (core.Pt2D, bool) {
	return FromPoint(p.Centroid())
}

// Contains reports whether pt lies inside or on the boundary of g.
func Contains(g geom.Geometry, pt core.Pt2D) bool {
	p, err := Point(pt)
	if err != nil {
		return false
	}
	return geom.Intersects(g, p.AsGeometry())
}

// Within reports whether pt is at most dist away from g.
func Within(g geom.Geometry, pt core.Pt2D, dist float64) bool {
	p, err := Point(pt)
	if err != nil {
		return false
	}
	d, ok := geom.Distance(g, p.AsGeometry())
	return ok && d <= dist
}

// PathBounds computes the axis-aligned bounds of pts.
func PathBounds(pts []core.Pt2D) core.Bounds {
	b := core.EmptyBounds()
	for _, p := range pts {
		b.Update(p)
	}
	return b
}
