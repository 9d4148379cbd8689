package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slotID is the primary key of the only row the store uses.
const slotID = 1

// editorStateRow keeps the map name as a column for ad-hoc queries and the
// full document as JSON.
type editorStateRow struct {
	ID        uint   `gorm:"primaryKey"`
	MapName   string `gorm:"size:255"`
	State     datatypes.JSON
	UpdatedAt time.Time
}

func (editorStateRow) TableName() string {
	return "editor_state"
}

// GormStore persists the state in SQLite or Postgres.
type GormStore struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// OpenSQLite opens (or creates) a sqlite database file.
func OpenSQLite(path string, log zerolog.Logger) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite state db: %w", err)
	}
	log.Info().Str("path", path).Msg("Using local SQLite DB for editor state")
	return newGormStore(db, log)
}

// OpenPostgres connects using a libpq style DSN.
func OpenPostgres(dsn string, log zerolog.Logger) (*GormStore, error) {
	log.Debug().Msg("Connecting to Postgres DB for editor state")
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres state db: %w", err)
	}
	log.Info().Msg("Connected to database")
	return newGormStore(db, log)
}

func newGormStore(db *gorm.DB, log zerolog.Logger) (*GormStore, error) {
	if err := db.AutoMigrate(&editorStateRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate editor state table: %w", err)
	}
	return &GormStore{DB: db, Logger: log}, nil
}

func (g *GormStore) Load() (EditorState, error) {
	var s EditorState
	var row editorStateRow
	err := g.DB.First(&row, slotID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s, ErrNotFound
	}
	if err != nil {
		return s, fmt.Errorf("failed to load editor state: %w", err)
	}
	if err := json.Unmarshal(row.State, &s); err != nil {
		return s, fmt.Errorf("failed to decode editor state: %w", err)
	}
	g.Logger.Debug().Str("map", s.MapName).Msg("Loaded editor state")
	return s, nil
}

func (g *GormStore) Save(s EditorState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode editor state: %w", err)
	}
	row := editorStateRow{
		ID:      slotID,
		MapName: s.MapName,
		State:   datatypes.JSON(data),
	}
	if err := g.DB.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save editor state: %w", err)
	}
	g.Logger.Debug().Str("map", s.MapName).Msg("Saved editor state")
	return nil
}

func (g *GormStore) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
