// Package google mirrors the reservation schedule into a Google Sheet so
// managers can browse it without touching the service.
package google

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"roombook/internal/model"
)

var scheduleHeader = []interface{}{
	"Room ID", "Room Name", "Capacity", "Time Start", "Time End", "Competency", "Number of Students",
}

// SheetsService pushes schedule snapshots to one spreadsheet tab.
type SheetsService struct {
	srv           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        *zerolog.Logger

	mu       sync.Mutex
	lastSync time.Time
}

// NewSheetsService authenticates with a service account key file and returns
// a mirror bound to one spreadsheet.
func NewSheetsService(ctx context.Context, credentialsPath, spreadsheetID, sheetName string, logger *zerolog.Logger) (*SheetsService, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	return &SheetsService{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger,
	}, nil
}

func scheduleRowValues(row *model.ScheduleRow) []interface{} {
	name := ""
	if row.RoomName != nil {
		name = *row.RoomName
	}
	capacity := ""
	if row.RoomCapacity != nil {
		capacity = fmt.Sprintf("%d", *row.RoomCapacity)
	}
	return []interface{}{
		row.RoomID,
		name,
		capacity,
		row.TimeStart.UTC().Format(time.RFC3339),
		row.TimeEnd.UTC().Format(time.RFC3339),
		row.Competency,
		row.NumberOfStudents,
	}
}

func buildValues(rows []model.ScheduleRow) [][]interface{} {
	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, scheduleHeader)
	for i := range rows {
		values = append(values, scheduleRowValues(&rows[i]))
	}
	return values
}

// SyncSchedule replaces the sheet's contents with the given rows. The whole
// tab is cleared first so deleted reservations disappear from the mirror.
func (s *SheetsService) SyncSchedule(ctx context.Context, rows []model.ScheduleRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clearRange := fmt.Sprintf("%s!A:G", s.sheetName)
	if _, err := s.srv.Spreadsheets.Values.Clear(s.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	vr := &sheets.ValueRange{Values: buildValues(rows)}
	writeRange := fmt.Sprintf("%s!A1", s.sheetName)
	if _, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}

	s.lastSync = time.Now()
	s.logger.Info().Int("rows", len(rows)).Str("sheet", s.sheetName).Msg("schedule mirrored to google sheets")
	return nil
}

// LastSync returns when the mirror last succeeded, zero if never.
func (s *SheetsService) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}
