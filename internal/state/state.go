// Package state persists the camera position between sessions.
package state

import (
	"errors"
	"fmt"

	"github.com/OCAP2/mapview/internal/config"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("editor state not found")

// EditorState is the camera position for one map.
type EditorState struct {
	MapName string  `json:"map_name"`
	CamX    float64 `json:"cam_x"`
	CamY    float64 `json:"cam_y"`
	CamZoom float64 `json:"cam_zoom"`
}

// Store loads and saves a single EditorState slot.
type Store interface {
	Load() (EditorState, error)
	Save(s EditorState) error
	Close() error
}

// NewStore creates a state store based on configuration
func NewStore(cfg config.StateConfig, log zerolog.Logger) (Store, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileStore(cfg.Path), nil
	case "sqlite":
		gs, err := OpenSQLite(cfg.SQLite.Path, log)
		if err != nil {
			return nil, err
		}
		return gs, nil
	case "postgres":
		gs, err := OpenPostgres(cfg.Postgres.DSN(), log)
		if err != nil {
			return nil, err
		}
		return gs, nil
	default:
		return nil, fmt.Errorf("unknown state store type: %s", cfg.Type)
	}
}
