package world

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OCAP2/mapview/internal/geo"
	"github.com/OCAP2/mapview/pkg/core"
)

var (
	// ErrUnknownScenario is returned when the scenario file does not exist.
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrInvalidScenario is returned for malformed scenario contents.
	ErrInvalidScenario = errors.New("invalid scenario")
)

const crs4326 = "EPSG:4326"

// Scenario is the on-disk description of a map and the trips replayed on it.
type Scenario struct {
	Name          string     `json:"name"`
	CRS           string     `json:"crs,omitempty"`
	Buildings     []AreaSpec `json:"buildings"`
	Intersections []AreaSpec `json:"intersections"`
	Lanes         []LaneSpec `json:"lanes"`
	Trips         []TripSpec `json:"trips"`
}

type AreaSpec struct {
	Label   string      `json:"label,omitempty"`
	Outline [][]float64 `json:"outline"`
}

type LaneSpec struct {
	Label  string      `json:"label,omitempty"`
	Width  float64     `json:"width"`
	Center [][]float64 `json:"center"`
}

// TripSpec moves one agent along Path at Speed map units per second,
// starting Depart seconds into the replay.
type TripSpec struct {
	ID         uint32      `json:"id"`
	Agent      string      `json:"agent"`
	AgentIndex uint32      `json:"agentIndex"`
	Depart     float64     `json:"depart"`
	Speed      float64     `json:"speed"`
	Path       [][]float64 `json:"path"`
}

// LoadScenario reads a scenario file. Gzipped files are detected by their
// magic bytes, not by extension.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, path)
		}
		return nil, fmt.Errorf("failed to open scenario: %w", err)
	}
	defer f.Close()

	return DecodeScenario(f)
}

// DecodeScenario parses a plain or gzipped scenario stream.
func DecodeScenario(r io.Reader) (*Scenario, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	var sc Scenario
	if err := json.NewDecoder(src).Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidScenario)
	}
	return &sc, nil
}

// points converts raw pairs, projecting lon/lat when the scenario says so.
func (sc *Scenario) points(raw [][]float64) ([]core.Pt2D, error) {
	pts, err := geo.PointsFromPairs(raw)
	if err != nil {
		return nil, err
	}
	switch strings.ToUpper(sc.CRS) {
	case "", "PLANAR":
	case crs4326:
		for i, p := range pts {
			pts[i] = geo.Project4326(p.X, p.Y)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported crs %q", ErrInvalidScenario, sc.CRS)
	}
	return pts, nil
}
