package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"roombook/internal/model"
)

const reservationColumns = `id, series_id, room_id, time_start, time_end, competency, number_of_students, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var r model.Reservation
	if err := s.Scan(
		&r.ID, &r.SeriesID, &r.RoomID, &r.TimeStart, &r.TimeEnd,
		&r.Competency, &r.NumberOfStudents, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) queryReservations(ctx context.Context, query string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetReservationsByRoomAndRange returns reservations in one room whose
// interval overlaps [from, to).
func (db *DB) GetReservationsByRoomAndRange(ctx context.Context, roomID string, from, to time.Time) ([]model.Reservation, error) {
	return db.queryReservations(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE room_id = ? AND time_start < ? AND time_end > ?
		ORDER BY time_start`,
		roomID, to.UTC(), from.UTC(),
	)
}

// GetReservationsByRange returns reservations in any room whose interval
// overlaps [from, to).
func (db *DB) GetReservationsByRange(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
	return db.queryReservations(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE time_start < ? AND time_end > ?
		ORDER BY time_start`,
		to.UTC(), from.UTC(),
	)
}

// GetReservationsBySeries returns all occurrences of a series ordered by
// start time.
func (db *DB) GetReservationsBySeries(ctx context.Context, seriesID string) ([]model.Reservation, error) {
	return db.queryReservations(ctx, `
		SELECT `+reservationColumns+` FROM reservations
		WHERE series_id = ?
		ORDER BY time_start`,
		seriesID,
	)
}

// GetSeries returns the series row or ErrNotFound.
func (db *DB) GetSeries(ctx context.Context, seriesID string) (*model.Series, error) {
	var s model.Series
	err := db.QueryRowContext(ctx,
		`SELECT series_id, capacity, repetition, created_at, updated_at
		FROM series WHERE series_id = ?`,
		seriesID,
	).Scan(&s.SeriesID, &s.Capacity, &s.Repetition, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// hasOverlapTx re-checks the overlap predicate inside a write transaction.
// With _txlock=immediate this makes the check-then-insert sequence atomic
// against concurrent writers on the same store.
func hasOverlapTx(ctx context.Context, tx *sql.Tx, roomID string, start, end time.Time) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE room_id = ? AND time_start < ? AND time_end > ?`,
		roomID, end.UTC(), start.UTC(),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func insertReservationsTx(ctx context.Context, tx *sql.Tx, reservations []model.Reservation) error {
	now := time.Now().UTC()
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reservations (series_id, room_id, time_start, time_end, competency, number_of_students, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range reservations {
		r := &reservations[i]
		ok, err := hasOverlapTx(ctx, tx, r.RoomID, r.TimeStart, r.TimeEnd)
		if err != nil {
			return err
		}
		if ok {
			return ErrConflict
		}
		if _, err := stmt.ExecContext(ctx,
			r.SeriesID, r.RoomID, r.TimeStart.UTC(), r.TimeEnd.UTC(),
			r.Competency, r.NumberOfStudents, now, now,
		); err != nil {
			return err
		}
	}
	return nil
}

// CreateSeries inserts the series row and all of its occurrences in one
// transaction. Returns ErrConflict without writing anything if any
// occurrence overlaps an existing reservation.
func (db *DB) CreateSeries(ctx context.Context, series *model.Series, reservations []model.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO series (series_id, capacity, repetition, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		series.SeriesID, series.Capacity, series.Repetition, now, now,
	); err != nil {
		return err
	}

	if err := insertReservationsTx(ctx, tx, reservations); err != nil {
		return err
	}

	return tx.Commit()
}

// ReplaceSeries swaps every occurrence of an existing series for the given
// set under the same series id, in one transaction. The old rows are removed
// before the overlap re-check, so a series never conflicts with itself, and
// a failure at any point leaves the original series untouched.
func (db *DB) ReplaceSeries(ctx context.Context, series *model.Series, reservations []model.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE series SET capacity = ?, repetition = ?, updated_at = ?
		WHERE series_id = ?`,
		series.Capacity, series.Repetition, time.Now().UTC(), series.SeriesID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM reservations WHERE series_id = ?", series.SeriesID,
	); err != nil {
		return err
	}

	if err := insertReservationsTx(ctx, tx, reservations); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteSeries removes every occurrence of a series and the series row
// itself. Deleting a nonexistent series is a no-op, not an error.
func (db *DB) DeleteSeries(ctx context.Context, seriesID string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE series_id = ?", seriesID)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM series WHERE series_id = ?", seriesID); err != nil {
		return 0, err
	}

	return deleted, tx.Commit()
}

// DeleteReservationByID removes one occurrence.
func (db *DB) DeleteReservationByID(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReservationsOlderThan removes occurrences that ended before the
// retention window, then drops series rows left without occurrences.
func (db *DB) DeleteReservationsOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE time_end < ?", cutoff)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM series WHERE series_id NOT IN (SELECT DISTINCT series_id FROM reservations)`,
	); err != nil {
		return 0, err
	}

	return deleted, tx.Commit()
}

// GetScheduleRows returns reservations overlapping [from, to) joined with
// room metadata. Room fields are nil when the room row is missing. Optional
// roomID and competency filters narrow the result.
func (db *DB) GetScheduleRows(ctx context.Context, from, to time.Time, roomID, competency string) ([]model.ScheduleRow, error) {
	query := `
		SELECT r.id, r.series_id, r.room_id, r.time_start, r.time_end,
		       r.competency, r.number_of_students, r.created_at, r.updated_at,
		       rm.name, rm.capacity
		FROM reservations r
		LEFT JOIN rooms rm ON rm.room_id = r.room_id
		WHERE r.time_start < ? AND r.time_end > ?`
	args := []interface{}{to.UTC(), from.UTC()}

	if roomID != "" {
		query += " AND r.room_id = ?"
		args = append(args, roomID)
	}
	if competency != "" {
		query += " AND r.competency = ?"
		args = append(args, competency)
	}
	query += " ORDER BY r.time_start, r.room_id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScheduleRow
	for rows.Next() {
		var row model.ScheduleRow
		var name sql.NullString
		var capacity sql.NullInt64
		if err := rows.Scan(
			&row.ID, &row.SeriesID, &row.RoomID, &row.TimeStart, &row.TimeEnd,
			&row.Competency, &row.NumberOfStudents, &row.CreatedAt, &row.UpdatedAt,
			&name, &capacity,
		); err != nil {
			return nil, err
		}
		if name.Valid {
			row.RoomName = &name.String
		}
		if capacity.Valid {
			c := int(capacity.Int64)
			row.RoomCapacity = &c
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
