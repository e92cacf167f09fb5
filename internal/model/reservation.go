package model

import "time"

// Reservation is one concrete occurrence of a booking series.
// A weekly series of N repeats produces N rows sharing one SeriesID.
type Reservation struct {
	ID               int64     `json:"id"`
	SeriesID         string    `json:"series_id"`
	RoomID           string    `json:"room_id"`
	TimeStart        time.Time `json:"time_start"`
	TimeEnd          time.Time `json:"time_end"`
	Competency       string    `json:"competency"`
	NumberOfStudents int       `json:"number_of_students"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Interval returns the reservation's [start, end) range.
func (r *Reservation) Interval() Interval {
	return Interval{Start: r.TimeStart, End: r.TimeEnd}
}

// Duration returns the length of the occurrence.
func (r *Reservation) Duration() time.Duration {
	return r.TimeEnd.Sub(r.TimeStart)
}

// OverlapsWith checks if this reservation overlaps with another one.
// Uses half-open interval [start, end) semantics - end boundary is exclusive.
func (r *Reservation) OverlapsWith(other *Reservation) bool {
	return r.Interval().Overlaps(other.Interval())
}

// ContainsTime checks if t falls within the reservation.
func (r *Reservation) ContainsTime(t time.Time) bool {
	return r.Interval().Contains(t)
}

// Series groups reservations generated from one recurring request.
// Capacity and Repetition are the planning parameters the request was made with.
type Series struct {
	SeriesID   string    `json:"series_id"`
	Capacity   int       `json:"capacity"`
	Repetition int       `json:"repetition"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScheduleRow is a reservation joined with its room's metadata for reporting.
// RoomName and RoomCapacity are nil when the room row is missing.
type ScheduleRow struct {
	Reservation
	RoomName     *string `json:"room_name"`
	RoomCapacity *int    `json:"room_capacity"`
}
