// Package export serializes schedule rows into flat tabular formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"roombook/internal/model"
)

// ScheduleHeader is the column order of every schedule export.
var ScheduleHeader = []string{
	"Room ID",
	"Room Name",
	"Capacity",
	"Time Start",
	"Time End",
	"Competency",
	"Number of Students",
}

// SentinelEmptyRow is emitted instead of a header-only table when the
// queried range holds no reservations.
const SentinelEmptyRow = "No reservations in the selected range"

func scheduleRecord(row *model.ScheduleRow) []string {
	name := ""
	if row.RoomName != nil {
		name = *row.RoomName
	}
	capacity := ""
	if row.RoomCapacity != nil {
		capacity = strconv.Itoa(*row.RoomCapacity)
	}
	return []string{
		row.RoomID,
		name,
		capacity,
		row.TimeStart.UTC().Format(time.RFC3339),
		row.TimeEnd.UTC().Format(time.RFC3339),
		row.Competency,
		strconv.Itoa(row.NumberOfStudents),
	}
}

// WriteScheduleCSV renders rows as CSV: the fixed header, one record per
// reservation, timestamps in RFC 3339. An empty result produces a single
// sentinel row so a downloaded report is never just a header.
func WriteScheduleCSV(w io.Writer, rows []model.ScheduleRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ScheduleHeader); err != nil {
		return err
	}

	if len(rows) == 0 {
		sentinel := make([]string, len(ScheduleHeader))
		sentinel[0] = SentinelEmptyRow
		if err := cw.Write(sentinel); err != nil {
			return err
		}
	}

	for i := range rows {
		if err := cw.Write(scheduleRecord(&rows[i])); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
