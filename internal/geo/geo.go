package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/OCAP2/mapview/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Map space is planar. Scenario files may carry EPSG:4326 lon/lat instead,
// in which case points are projected to web mercator (3857) on load and
// every later computation stays planar.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// PointFromString parses a string in the format "x,y" into a map point.
func PointFromString(coords string) (core.Pt2D, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return core.Pt2D{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Pt2D{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Pt2D{}, ErrInvalidCoordinates
	}
	return core.Pt2D{X: x, Y: y}, nil
}

// Project4326 converts a longitude and latitude to web mercator meters.
func Project4326(longitude, latitude float64) core.Pt2D {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	return core.Pt2D{X: x, Y: y}
}

// Point converts a map point to a simplefeatures point. NaN or infinite
// coordinates are rejected.
func Point(pt core.Pt2D) (geom.Point, error) {
	p, err := geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: pt.X, Y: pt.Y},
			Type: geom.DimXY,
		},
	)
	if err != nil {
		return geom.Point{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return p, nil
}

// FromPoint converts back; an empty point yields false.
func FromPoint(p geom.Point) (core.Pt2D, bool) {
	c, ok := p.Coordinates()
	if !ok {
		return core.Pt2D{}, false
	}
	return core.Pt2D{X: c.X, Y: c.Y}, true
}
