// Package slots expands a weekly booking request into its concrete occurrences.
package slots

import (
	"errors"
	"time"

	"roombook/internal/model"
)

// Week is the shift between consecutive occurrences of a series.
const Week = 7 * 24 * time.Hour

// ErrInvalidRepeat indicates a repeat count below one. A zero-length series
// must never be constructed silently.
var ErrInvalidRepeat = errors.New("slots: repeat count must be at least 1")

// ErrInvalidInterval indicates the first-week interval is not strictly ordered.
var ErrInvalidInterval = errors.New("slots: time start must be before time end")

// Expand turns the first-week interval into rep weekly occurrences.
// The k-th occurrence shifts both endpoints by k weeks; the result is ordered
// by start time and has exactly rep elements. rep = 1 returns the input
// interval unchanged.
func Expand(start, end time.Time, rep int) ([]model.Interval, error) {
	if rep < 1 {
		return nil, ErrInvalidRepeat
	}
	if !start.Before(end) {
		return nil, ErrInvalidInterval
	}

	out := make([]model.Interval, 0, rep)
	current := model.Interval{Start: start, End: end}
	for i := 0; i < rep; i++ {
		out = append(out, current)
		current = current.Shift(Week)
	}
	return out, nil
}
