package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "mapview.cfg.json"

// StateConfig selects where the editor state (camera + map name) lives.
type StateConfig struct {
	Type     string         `json:"type" mapstructure:"type"`
	Path     string         `json:"path" mapstructure:"path"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

// SQLiteConfig holds settings for the sqlite-backed state store
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds connection settings shared with the db.* keys
type PostgresConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// DSN renders the postgres connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		p.Host, p.Port, p.Username, p.Password, p.Database)
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// UIConfig holds interaction loop settings
type UIConfig struct {
	MinZoomForMouseover float64
	FrameInterval       time.Duration
	MapPath             string
	ColorsPath          string
}

// DiagnosticsConfig controls backtrace collection
type DiagnosticsConfig struct {
	Enabled  bool
	Path     string
	Boundary string
}

// InfluxConfig holds InfluxDB settings for session metrics
type InfluxConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Protocol   string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// URL is the server address assembled from protocol, host and port.
func (i InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", i.Protocol, i.Host, i.Port)
}

// GraylogConfig holds the GELF UDP target
type GraylogConfig struct {
	Enabled bool
	Address string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers every default so getters work without a file.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("map.path", "./maps/demo.json")

	viper.SetDefault("ui.minZoomForMouseover", 4.0)
	viper.SetDefault("ui.frameInterval", "100ms")

	viper.SetDefault("colors.path", "color_scheme")

	viper.SetDefault("state.type", "file")
	viper.SetDefault("state.path", "editor_state")
	viper.SetDefault("state.sqlite.path", "mapview.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "mapview")

	viper.SetDefault("diagnostics.enabled", false)
	viper.SetDefault("diagnostics.path", "backtraces.json")
	viper.SetDefault("diagnostics.boundary", "github.com/OCAP2/mapview/internal/world.(*Replay).Step")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "mapview")
	viper.SetDefault("influx.bucket", "sessions")
	viper.SetDefault("influx.backupPath", "influx_backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "mapview")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStateConfig returns the editor state store settings
func GetStateConfig() StateConfig {
	return StateConfig{
		Type: viper.GetString("state.type"),
		Path: viper.GetString("state.path"),
		SQLite: SQLiteConfig{
			Path: viper.GetString("state.sqlite.path"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetUIConfig returns the interaction loop settings
func GetUIConfig() UIConfig {
	return UIConfig{
		MinZoomForMouseover: viper.GetFloat64("ui.minZoomForMouseover"),
		FrameInterval:       viper.GetDuration("ui.frameInterval"),
		MapPath:             viper.GetString("map.path"),
		ColorsPath:          viper.GetString("colors.path"),
	}
}

// GetDiagnosticsConfig returns the backtrace collection settings
func GetDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{
		Enabled:  viper.GetBool("diagnostics.enabled"),
		Path:     viper.GetString("diagnostics.path"),
		Boundary: viper.GetString("diagnostics.boundary"),
	}
}

// GetInfluxConfig returns the InfluxDB settings
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetGraylogConfig returns the GELF target
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}
