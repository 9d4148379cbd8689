package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/OCAP2/mapview/internal/colors"
	"github.com/OCAP2/mapview/internal/config"
	"github.com/OCAP2/mapview/internal/instrument"
	"github.com/OCAP2/mapview/internal/logging"
	intOtel "github.com/OCAP2/mapview/internal/otel"
	"github.com/OCAP2/mapview/internal/plugin"
	"github.com/OCAP2/mapview/internal/state"
	"github.com/OCAP2/mapview/internal/telemetry"
	"github.com/OCAP2/mapview/internal/tui"
	"github.com/OCAP2/mapview/internal/ui"
	"github.com/OCAP2/mapview/internal/world"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// BuildVersion can be set at build time via ldflags
var (
	BuildVersion string = "0.0.1"
	AppName      string = "mapview"
)

var (
	SessionStartTime = time.Now()

	LogFilePath string
	LogFile     *os.File

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	Session *logging.Session
)

func main() {
	os.Exit(run())
}

func run() int {
	Session = logging.NewSession(uuid.NewString())
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	configDir, _ := os.Getwd()
	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	}
	if len(os.Args) > 1 {
		viper.Set("map.path", os.Args[1])
	}

	setupLogging()
	defer shutdownLogging()
	Logger.Info("Starting up", "version", BuildVersion, "session", Session.ID())

	uiCfg := config.GetUIConfig()
	diagCfg := config.GetDiagnosticsConfig()

	var backtraces *instrument.Backtraces
	if diagCfg.Enabled {
		backtraces = instrument.New(diagCfg.Boundary)
		Logger.Info("Collecting backtraces", "boundary", diagCfg.Boundary, "path", diagCfg.Path)
	}

	replay, err := world.Load(uiCfg.MapPath,
		world.WithLogger(Logger),
		world.WithBacktraces(backtraces),
	)
	if err != nil {
		Logger.Error("Failed to load map", "path", uiCfg.MapPath, "error", err)
		return 1
	}
	Session.SetMap(replay.MapName())
	Logger.Info("Loaded map", "map", replay.MapName(), "path", uiCfg.MapPath)

	store, err := state.NewStore(config.GetStateConfig(),
		logging.NewZerolog(logWriter(), config.GetString("logLevel"), "state"))
	if err != nil {
		Logger.Error("Failed to open editor state store", "error", err)
		return 1
	}
	defer store.Close()

	cs, err := colors.Load(uiCfg.ColorsPath)
	if err != nil {
		Logger.Warn("Failed to load color scheme, using defaults", "error", err)
		cs = colors.New(uiCfg.ColorsPath)
	}

	recorder := newRecorder(replay.MapName())

	stack := plugin.NewStack(
		[]plugin.Plugin{plugin.NewFollow(), plugin.NewInspect()},
		[]plugin.Plugin{plugin.NewLayers(), plugin.NewDebugMode(), plugin.NewPlayback(replay)},
	)

	quitter := &tui.Quitter{}
	diagPath := ""
	if diagCfg.Enabled {
		diagPath = diagCfg.Path
	}
	view, err := ui.New(ui.Config{
		MinZoomForMouseover: uiCfg.MinZoomForMouseover,
		DiagnosticsPath:     diagPath,
	}, ui.Dependencies{
		World:      replay,
		Store:      store,
		Colors:     cs,
		Plugins:    stack,
		Backtraces: backtraces,
		Logger:     Logger,
		Session:    Session,
		Recorder:   recorder,
		Exit:       quitter.Exit,
	})
	if err != nil {
		Logger.Error("Failed to start map view", "error", err)
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Map view crashed", "panic", r)
			view.DumpBeforeAbort()
			panic(r)
		}
	}()

	if err := tui.Run(view, quitter, uiCfg.FrameInterval); err != nil {
		Logger.Error("Terminal UI failed", "error", err)
		view.DumpBeforeAbort()
		return 1
	}
	if !quitter.Requested() {
		view.DumpBeforeAbort()
	}
	Logger.Info("Shut down", "frames", view.Frame())
	return quitter.Code()
}

func setupLogging() {
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs dir", "error", err, "path", logsDir)
	}

	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
		LogFile = nil
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			OTelConfig: otelCfg,
			LogWriter:  logWriter(),
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		}
	}

	opts := []logging.Option{logging.WithContext(Session.Attrs)}
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address)
		if err != nil {
			Logger.Warn("Graylog disabled", "error", err)
		} else {
			opts = append(opts, logging.WithGELF(w))
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	var file io.Writer
	if LogFile != nil {
		file = LogFile
	}
	SlogManager.Setup(file, config.GetString("logLevel"), otelLogProvider, opts...)
	Logger = SlogManager.Logger()
	slog.SetDefault(Logger)
	Logger.Info("Logging to file", "path", LogFilePath)
}

// logWriter is the log file, or stderr when it could not be opened.
func logWriter() io.Writer {
	if LogFile != nil {
		return LogFile
	}
	return os.Stderr
}

func shutdownLogging() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := SlogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "log flush: %v\n", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "otel shutdown: %v\n", err)
		}
	}
	if LogFile != nil {
		LogFile.Close()
	}
}

func newRecorder(mapName string) telemetry.Recorder {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return telemetry.Nop{}
	}
	if !filepath.IsAbs(cfg.BackupPath) {
		cfg.BackupPath = filepath.Join(config.GetString("logsDir"), cfg.BackupPath)
	}
	rec := telemetry.NewInflux(cfg, Session.ID(), mapName,
		logging.NewZerolog(logWriter(), config.GetString("logLevel"), "influx"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rec.Connect(ctx); err != nil {
		Logger.Warn("Session telemetry disabled", "error", err)
		return telemetry.Nop{}
	}
	return rec
}
