package telemetry

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/OCAP2/mapview/internal/config"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
)

// ErrBackupQueueFull is returned when the backup writer falls behind.
var ErrBackupQueueFull = errors.New("influx backup queue full")

const (
	measurementFrame = "ui_frame"
	retentionSeconds = 60 * 60 * 24 * 90
	backupQueueSize  = 1024
)

// Influx writes frame points to one bucket, or to a gzipped line protocol
// backup file when the server cannot be reached.
type Influx struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	Logger       zerolog.Logger

	cfg        config.InfluxConfig
	session    string
	mapName    string
	backupFile *os.File
	backupCh   chan string
	backupDone chan error
}

// NewInflux creates an unconnected recorder for one session.
func NewInflux(cfg config.InfluxConfig, session, mapName string, log zerolog.Logger) *Influx {
	return &Influx{
		cfg:     cfg,
		session: session,
		mapName: mapName,
		Logger:  log,
	}
}

// Connect establishes a connection to InfluxDB, falling back to the backup
// file when the server is not healthy.
func (m *Influx) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.cfg.URL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.Logger.Info().Str("backupPath", m.cfg.BackupPath).
			Msg("Failed to initialize InfluxDB client, writing to backup file")
		return m.UseBackup()
	}

	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	m.createWriter()
	m.IsValid = true
	m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

// UseBackup switches the recorder to the backup file.
func (m *Influx) UseBackup() error {
	m.IsValid = false
	if m.BackupWriter != nil {
		return nil
	}
	file, err := os.OpenFile(m.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	m.backupCh = make(chan string, backupQueueSize)
	m.backupDone = make(chan error, 1)
	go m.drainBackup(m.backupCh, m.BackupWriter)
	return nil
}

// drainBackup owns w until ch is closed; the first write error is reported
// on backupDone.
func (m *Influx) drainBackup(ch <-chan string, w io.Writer) {
	var firstErr error
	for line := range ch {
		if firstErr != nil {
			continue
		}
		if _, err := io.WriteString(w, line); err != nil {
			firstErr = fmt.Errorf("error writing to InfluxDB backup file: %w", err)
			m.Logger.Error().Err(err).Str("backupPath", m.cfg.BackupPath).Msg("Backup write failed")
		}
	}
	m.backupDone <- firstErr
}

func (m *Influx) setupOrganizationAndBucket(ctx context.Context) error {
	orgName := m.cfg.Org

	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err != nil {
		m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")
		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, m.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: retentionSeconds,
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", m.cfg.Bucket).Msg("Error creating bucket")
			return err
		}
	}
	return nil
}

func (m *Influx) createWriter() {
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	errorsCh := m.Writer.Errors()
	go func() {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}()
}

// FramePoint converts frame statistics to an InfluxDB point.
func FramePoint(session, mapName string, s FrameStats, ts time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPoint(
		measurementFrame,
		map[string]string{
			"session": session,
			"map":     mapName,
			"event":   s.Event,
			"mode":    s.Mode,
		},
		map[string]interface{}{
			"frame":       int64(s.Frame),
			"duration_us": s.Duration.Microseconds(),
			"zoom":        s.Zoom,
			"selected":    s.Selected,
			"recalc":      s.Recalc,
		},
		ts,
	)
}

// RecordFrame queues a point. Neither sink does I/O on the caller's
// goroutine.
func (m *Influx) RecordFrame(s FrameStats) {
	if err := m.WritePoint(FramePoint(m.session, m.mapName, s, time.Now())); err != nil {
		m.Logger.Debug().Err(err).Msg("Dropped frame point")
	}
}

// WritePoint writes a point to InfluxDB or queues it for the backup file.
// It never blocks: the backup file is written by a separate goroutine and a
// point is dropped when that queue is full.
func (m *Influx) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}
	if m.backupCh == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}

	select {
	case m.backupCh <- influxdb2_write.PointToLineProtocol(point, time.Nanosecond) + "\n":
		return nil
	default:
		return ErrBackupQueueFull
	}
}

// Close flushes pending points and releases the client or backup file.
func (m *Influx) Close() error {
	var errs []error
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	if m.backupCh != nil {
		close(m.backupCh)
		m.backupCh = nil
		errs = append(errs, <-m.backupDone)
	}
	if m.BackupWriter != nil {
		errs = append(errs, m.BackupWriter.Close())
	}
	if m.backupFile != nil {
		errs = append(errs, m.backupFile.Close())
	}
	return errors.Join(errs...)
}
