package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"map": { "path": "/maps/city.json" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "/maps/city.json", viper.GetString("map.path"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "./maps/demo.json", viper.GetString("map.path"))
	assert.Equal(t, "color_scheme", viper.GetString("colors.path"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	assert.Error(t, err)

	// defaults are still registered
	assert.Equal(t, "editor_state", GetStateConfig().Path)
}

func TestGetters(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("some.string", "hello")
	viper.Set("some.int", 42)
	viper.Set("some.bool", true)

	assert.Equal(t, "hello", GetString("some.string"))
	assert.Equal(t, 42, GetInt("some.int"))
	assert.True(t, GetBool("some.bool"))
}

func TestGetStateConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	sc := GetStateConfig()
	assert.Equal(t, "file", sc.Type)
	assert.Equal(t, "editor_state", sc.Path)
	assert.Equal(t, "mapview.db", sc.SQLite.Path)
	assert.Equal(t, "localhost", sc.Postgres.Host)
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=mapview sslmode=disable",
		sc.Postgres.DSN())
}

func TestGetStateConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"state": { "type": "sqlite", "sqlite": { "path": "/tmp/state.db" } }
	}`)))

	sc := GetStateConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/state.db", sc.SQLite.Path)
}

func TestGetUIConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "ui": { "frameInterval": "50ms" } }`)))

	uc := GetUIConfig()
	assert.Equal(t, 4.0, uc.MinZoomForMouseover)
	assert.Equal(t, 50*time.Millisecond, uc.FrameInterval)
	assert.Equal(t, "./maps/demo.json", uc.MapPath)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "mapview", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetDiagnosticsConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "diagnostics": { "enabled": true } }`)))

	dc := GetDiagnosticsConfig()
	assert.True(t, dc.Enabled)
	assert.Equal(t, "backtraces.json", dc.Path)
	assert.Equal(t, "github.com/OCAP2/mapview/internal/world.(*Replay).Step", dc.Boundary)
}

func TestGetInfluxConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{ "influx": { "host": "metrics", "port": "9999" } }`)))

	ic := GetInfluxConfig()
	assert.Equal(t, "http://metrics:9999", ic.URL())
	assert.Equal(t, "mapview", ic.Org)
	assert.Equal(t, "sessions", ic.Bucket)
}

func TestGetGraylogConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	SetDefaults()

	gc := GetGraylogConfig()
	assert.False(t, gc.Enabled)
	assert.Equal(t, "localhost:12201", gc.Address)
}
