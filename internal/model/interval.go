package model

import (
	"fmt"
	"time"
)

// Interval is a half-open time range [Start, End) on a single linear axis.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds a validated interval. Start must be strictly before End.
func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// Validate checks the strict ordering of the endpoints.
func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("interval start %s must be before end %s", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
	}
	return nil
}

// Overlaps reports whether two half-open intervals share any instant.
// An interval ending exactly when another starts does not overlap it.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// Contains reports whether t lies within [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Shift returns the interval with both endpoints moved by d.
func (iv Interval) Shift(d time.Duration) Interval {
	return Interval{Start: iv.Start.Add(d), End: iv.End.Add(d)}
}

// DayBounds returns the calendar-day span containing the interval's start.
// Used only as a fetch pre-filter; the overlap predicate stays authoritative.
func (iv Interval) DayBounds() (time.Time, time.Time) {
	y, m, d := iv.Start.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, iv.Start.Location())
	return dayStart, dayStart.Add(24 * time.Hour)
}
