// Package report runs the monthly schedule export and retention cleanup.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"roombook/internal/export"
	"roombook/internal/metrics"
	"roombook/internal/model"
)

// Config holds report service settings.
type Config struct {
	// DataRetentionDays is how long finished reservations are kept before
	// cleanup. Default 93 days (one quarter).
	DataRetentionDays int

	// ExportOnStart runs an export immediately on Start.
	ExportOnStart bool

	// SheetName names the sheet inside the exported workbook.
	SheetName string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataRetentionDays: 93,
		SheetName:         "Schedule",
	}
}

// ScheduleSource provides the rows to export.
type ScheduleSource interface {
	GetScheduleRows(ctx context.Context, from, to time.Time, roomID, competency string) ([]model.ScheduleRow, error)
}

// DataCleaner removes reservations past the retention window.
type DataCleaner interface {
	DeleteReservationsOlderThan(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Notifier delivers the exported workbook.
type Notifier interface {
	SendDocument(ctx context.Context, filename string, data io.Reader, caption string) error
}

// TableExporter dumps raw storage tables into extra workbook sheets.
type TableExporter interface {
	GetTableNames(ctx context.Context) ([]string, error)
	GetTableData(ctx context.Context, tableName string) ([]map[string]interface{}, []string, error)
}

// Service exports the previous month's schedule on the 1st of each month and
// trims reservations past the retention window.
type Service struct {
	config   *Config
	source   ScheduleSource
	writer   func() export.ExcelWriter
	notifier Notifier
	cleaner  DataCleaner
	tables   TableExporter
	logger   *zerolog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewService creates a report service. notifier and cleaner may be nil; the
// corresponding step is skipped.
func NewService(config *Config, source ScheduleSource, writerFactory func() export.ExcelWriter, notifier Notifier, cleaner DataCleaner, logger *zerolog.Logger) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if config.DataRetentionDays <= 0 {
		config.DataRetentionDays = 93
	}
	if config.SheetName == "" {
		config.SheetName = "Schedule"
	}

	return &Service{
		config:   config,
		source:   source,
		writer:   writerFactory,
		notifier: notifier,
		cleaner:  cleaner,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// EnableTableDump adds raw table sheets to every exported workbook.
func (s *Service) EnableTableDump(exporter TableExporter) {
	s.tables = exporter
}

// Start begins the monthly scheduler.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	if s.config.ExportOnStart {
		go s.RunExportAndCleanup()
	}

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().Int("retention_days", s.config.DataRetentionDays).Msg("report service started")
}

// Stop gracefully stops the scheduler.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info().Msg("report service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	nextRun := nextFirstOfMonth(time.Now())
	timer := time.NewTimer(time.Until(nextRun))
	defer timer.Stop()

	s.logger.Info().Time("next_run", nextRun).Msg("next report scheduled")

	for {
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
			s.RunExportAndCleanup()

			nextRun = nextFirstOfMonth(time.Now())
			timer.Reset(time.Until(nextRun))
			s.logger.Info().Time("next_run", nextRun).Msg("next report scheduled")
		}
	}
}

// nextFirstOfMonth returns 00:01 on the first day of the month after now.
func nextFirstOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 1, 0, 0, now.Location())
}

// RunExportAndCleanup performs the export and cleanup immediately.
func (s *Service) RunExportAndCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := s.exportSchedule(ctx); err != nil {
		s.logger.Error().Err(err).Msg("schedule export failed")
	}
	if err := s.cleanupOldData(ctx); err != nil {
		s.logger.Error().Err(err).Msg("retention cleanup failed")
	}
}

// previousMonthWindow returns [first of previous month, first of current
// month) in UTC.
func previousMonthWindow(now time.Time) (time.Time, time.Time) {
	year, month, _ := now.UTC().Date()
	from := time.Date(year, month-1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, to
}

func (s *Service) exportSchedule(ctx context.Context) error {
	if s.source == nil || s.writer == nil {
		return fmt.Errorf("schedule source or writer not configured")
	}

	from, to := previousMonthWindow(time.Now())
	rows, err := s.source.GetScheduleRows(ctx, from, to, "", "")
	if err != nil {
		return fmt.Errorf("query schedule: %w", err)
	}

	writer := s.writer()
	defer writer.Close()
	if err := export.WriteScheduleXLSX(writer, s.config.SheetName, rows); err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}

	if s.tables != nil {
		if err := s.appendTableDump(ctx, writer); err != nil {
			s.logger.Error().Err(err).Msg("table dump failed, sending schedule sheet only")
		}
	}

	var buf bytes.Buffer
	if err := writer.Save(&buf); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	metrics.IncExportRun("xlsx")

	if s.notifier == nil {
		s.logger.Info().Int("rows", len(rows)).Msg("schedule exported, no notifier configured")
		return nil
	}

	filename := export.GenerateFilename(from)
	caption := fmt.Sprintf("Monthly room schedule %s", from.Format("2006-01"))
	if err := s.notifier.SendDocument(ctx, filename, &buf, caption); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	s.logger.Info().Str("filename", filename).Int("rows", len(rows)).Msg("schedule report sent")
	return nil
}

// appendTableDump writes one sheet per storage table after the schedule
// sheet.
func (s *Service) appendTableDump(ctx context.Context, writer export.ExcelWriter) error {
	tables, err := s.tables.GetTableNames(ctx)
	if err != nil {
		return fmt.Errorf("get table names: %w", err)
	}

	for _, tableName := range tables {
		data, columns, err := s.tables.GetTableData(ctx, tableName)
		if err != nil {
			s.logger.Error().Err(err).Str("table", tableName).Msg("table read failed, skipping")
			continue
		}

		if err := writer.AddSheet(tableName); err != nil {
			return fmt.Errorf("add sheet %s: %w", tableName, err)
		}
		if err := writer.WriteHeader(columns); err != nil {
			return fmt.Errorf("write header %s: %w", tableName, err)
		}
		for _, row := range data {
			rowData := make([]interface{}, len(columns))
			for i, col := range columns {
				rowData[i] = row[col]
			}
			if err := writer.WriteRow(rowData); err != nil {
				return fmt.Errorf("write row %s: %w", tableName, err)
			}
		}
		s.logger.Debug().Str("table", tableName).Int("rows", len(data)).Msg("table exported")
	}
	return nil
}

func (s *Service) cleanupOldData(ctx context.Context) error {
	if s.cleaner == nil {
		return nil
	}

	retention := time.Duration(s.config.DataRetentionDays) * 24 * time.Hour
	deleted, err := s.cleaner.DeleteReservationsOlderThan(ctx, retention)
	if err != nil {
		return fmt.Errorf("delete old reservations: %w", err)
	}

	s.logger.Info().
		Int64("deleted", deleted).
		Int("retention_days", s.config.DataRetentionDays).
		Msg("old reservations cleaned up")
	return nil
}

// ExportNow triggers an immediate export, for manual runs.
func (s *Service) ExportNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	return s.exportSchedule(ctx)
}

// CleanupNow triggers an immediate cleanup.
func (s *Service) CleanupNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	return s.cleanupOldData(ctx)
}
