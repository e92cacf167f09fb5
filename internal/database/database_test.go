package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedRoom(t *testing.T, db *DB, roomID string, capacity int) {
	t.Helper()
	require.NoError(t, db.CreateRoom(context.Background(), &model.Room{
		RoomID:   roomID,
		Name:     "Room " + roomID,
		Capacity: capacity,
	}))
}

func at(day, hour int, min ...int) time.Time {
	m := 0
	if len(min) > 0 {
		m = min[0]
	}
	return time.Date(2025, 10, day, hour, m, 0, 0, time.UTC)
}

func reservation(seriesID, roomID string, start, end time.Time) model.Reservation {
	return model.Reservation{
		SeriesID:         seriesID,
		RoomID:           roomID,
		TimeStart:        start,
		TimeEnd:          end,
		Competency:       "Math",
		NumberOfStudents: 5,
	}
}

func TestRoomCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)

	room, err := db.GetRoomByID(ctx, "roomA")
	require.NoError(t, err)
	assert.Equal(t, 10, room.Capacity)

	room.Name = "Renamed"
	room.Capacity = 12
	require.NoError(t, db.UpdateRoom(ctx, room))

	room, err = db.GetRoomByID(ctx, "roomA")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", room.Name)
	assert.Equal(t, 12, room.Capacity)

	require.NoError(t, db.DeleteRoom(ctx, "roomA"))
	_, err = db.GetRoomByID(ctx, "roomA")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoomNotFoundPaths(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetRoomByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.UpdateRoom(ctx, &model.Room{RoomID: "ghost", Capacity: 5})
	assert.ErrorIs(t, err, ErrNotFound)

	err = db.DeleteRoom(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRoomsByCapacity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomC", 40)
	seedRoom(t, db, "roomA", 10)
	seedRoom(t, db, "roomB", 25)

	rooms, err := db.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, "roomA", rooms[0].RoomID)
	assert.Equal(t, "roomB", rooms[1].RoomID)
	assert.Equal(t, "roomC", rooms[2].RoomID)

	rooms, err = db.ListRoomsByCapacity(ctx, 20)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "roomB", rooms[0].RoomID)
}

func TestCreateSeriesRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	series := &model.Series{SeriesID: "s-1", Capacity: 5, Repetition: 2}
	require.NoError(t, db.CreateSeries(ctx, series, []model.Reservation{
		reservation("s-1", "roomA", at(28, 9), at(28, 10)),
		reservation("s-1", "roomA", at(28, 9).AddDate(0, 0, 7), at(28, 10).AddDate(0, 0, 7)),
	}))

	got, err := db.GetSeries(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Repetition)

	occurrences, err := db.GetReservationsBySeries(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, occurrences, 2)
	assert.True(t, occurrences[0].TimeStart.Equal(at(28, 9)))
	assert.True(t, occurrences[1].TimeStart.Equal(at(28, 9).AddDate(0, 0, 7)))
}

func TestCreateSeriesConflictWritesNothing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-1", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-1", "roomA", at(28, 9), at(28, 10))}))

	// Second occurrence collides; neither row of s-2 may survive.
	err := db.CreateSeries(ctx, &model.Series{SeriesID: "s-2", Capacity: 5, Repetition: 2},
		[]model.Reservation{
			reservation("s-2", "roomA", at(27, 9), at(27, 10)),
			reservation("s-2", "roomA", at(28, 9, 30), at(28, 10, 30)),
		})
	require.ErrorIs(t, err, ErrConflict)

	_, err = db.GetSeries(ctx, "s-2")
	assert.ErrorIs(t, err, ErrNotFound)
	occurrences, err := db.GetReservationsBySeries(ctx, "s-2")
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestAdjacentReservationsAccepted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-1", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-1", "roomA", at(28, 9), at(28, 10))}))
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-2", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-2", "roomA", at(28, 10), at(28, 11))}))

	all, err := db.GetReservationsByRoomAndRange(ctx, "roomA", at(28, 0), at(29, 0))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReplaceSeries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-1", Capacity: 5, Repetition: 2},
		[]model.Reservation{
			reservation("s-1", "roomA", at(28, 9), at(28, 10)),
			reservation("s-1", "roomA", at(28, 9).AddDate(0, 0, 7), at(28, 10).AddDate(0, 0, 7)),
		}))

	// New slots overlap the old ones; the old rows are gone before the
	// re-check, so this must succeed.
	require.NoError(t, db.ReplaceSeries(ctx, &model.Series{SeriesID: "s-1", Capacity: 8, Repetition: 1},
		[]model.Reservation{reservation("s-1", "roomA", at(28, 9, 30), at(28, 10, 30))}))

	got, err := db.GetSeries(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Capacity)
	assert.Equal(t, 1, got.Repetition)

	occurrences, err := db.GetReservationsBySeries(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.True(t, occurrences[0].TimeStart.Equal(at(28, 9, 30)))
}

func TestReplaceSeriesConflictKeepsOriginal(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-1", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-1", "roomA", at(28, 9), at(28, 10))}))
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-2", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-2", "roomA", at(28, 13), at(28, 14))}))

	err := db.ReplaceSeries(ctx, &model.Series{SeriesID: "s-1", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-1", "roomA", at(28, 13, 30), at(28, 14, 30))})
	require.ErrorIs(t, err, ErrConflict)

	// The failed replace rolled back; the original occurrence survives.
	occurrences, err := db.GetReservationsBySeries(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.True(t, occurrences[0].TimeStart.Equal(at(28, 9)))
}

func TestReplaceSeriesUnknownSeries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	err := db.ReplaceSeries(ctx, &model.Series{SeriesID: "ghost", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("ghost", "roomA", at(28, 9), at(28, 10))})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSeriesIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-1", Capacity: 5, Repetition: 2},
		[]model.Reservation{
			reservation("s-1", "roomA", at(28, 9), at(28, 10)),
			reservation("s-1", "roomA", at(28, 9).AddDate(0, 0, 7), at(28, 10).AddDate(0, 0, 7)),
		}))

	deleted, err := db.DeleteSeries(ctx, "s-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	deleted, err = db.DeleteSeries(ctx, "s-1")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	_, err = db.GetSeries(ctx, "s-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRoomWithReservationsRefused(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-1", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-1", "roomA", at(28, 9), at(28, 10))}))

	err := db.DeleteRoom(ctx, "roomA")
	assert.ErrorIs(t, err, ErrRoomReferenced)

	// Freeing the room makes it deletable
	_, err = db.DeleteSeries(ctx, "s-1")
	require.NoError(t, err)
	assert.NoError(t, db.DeleteRoom(ctx, "roomA"))
}

func TestOverlapQueryBoundaries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-1", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-1", "roomA", at(28, 9), at(28, 10))}))

	// Query ending exactly at the booking start does not include it
	rows, err := db.GetReservationsByRange(ctx, at(28, 8), at(28, 9))
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Any genuine overlap does
	rows, err = db.GetReservationsByRange(ctx, at(28, 9, 59), at(28, 11))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGetScheduleRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	seedRoom(t, db, "roomB", 25)
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-1", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-1", "roomA", at(28, 9), at(28, 10))}))
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-2", Capacity: 5, Repetition: 1},
		[]model.Reservation{
			{SeriesID: "s-2", RoomID: "roomB", TimeStart: at(28, 11), TimeEnd: at(28, 12),
				Competency: "Physics", NumberOfStudents: 8},
		}))

	rows, err := db.GetScheduleRows(ctx, at(28, 0), at(29, 0), "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].RoomName)
	assert.Equal(t, "Room roomA", *rows[0].RoomName)
	require.NotNil(t, rows[0].RoomCapacity)
	assert.Equal(t, 10, *rows[0].RoomCapacity)

	rows, err = db.GetScheduleRows(ctx, at(28, 0), at(29, 0), "roomB", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "s-2", rows[0].SeriesID)

	rows, err = db.GetScheduleRows(ctx, at(28, 0), at(29, 0), "", "Physics")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "roomB", rows[0].RoomID)
}

func TestDeleteReservationsOlderThan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "roomA", 10)
	old := time.Now().UTC().Add(-90 * 24 * time.Hour)
	recent := time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-old", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-old", "roomA", old, old.Add(time.Hour))}))
	require.NoError(t, db.CreateSeries(ctx, &model.Series{SeriesID: "s-new", Capacity: 5, Repetition: 1},
		[]model.Reservation{reservation("s-new", "roomA", recent, recent.Add(time.Hour))}))

	deleted, err := db.DeleteReservationsOlderThan(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	// The emptied series row is cleaned up with its occurrences
	_, err = db.GetSeries(ctx, "s-old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = db.GetSeries(ctx, "s-new")
	assert.NoError(t, err)
}
