package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestExpand_SingleOccurrence(t *testing.T) {
	start := datetime(2025, 10, 28, 9, 0)
	end := datetime(2025, 10, 28, 10, 0)

	got, err := Expand(start, end, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, start, got[0].Start)
	assert.Equal(t, end, got[0].End)
}

func TestExpand_WeeklyShift(t *testing.T) {
	start := datetime(2025, 10, 28, 9, 0)
	end := datetime(2025, 10, 28, 10, 30)

	got, err := Expand(start, end, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	for k, iv := range got {
		shift := time.Duration(k) * Week
		assert.Equal(t, start.Add(shift), iv.Start, "occurrence %d start", k)
		assert.Equal(t, end.Add(shift), iv.End, "occurrence %d end", k)
		assert.Equal(t, end.Sub(start), iv.Duration(), "occurrence %d duration", k)
	}

	// Strictly increasing start times
	for k := 1; k < len(got); k++ {
		assert.True(t, got[k-1].Start.Before(got[k].Start))
	}
}

func TestExpand_RejectsZeroRepeat(t *testing.T) {
	start := datetime(2025, 10, 28, 9, 0)
	end := datetime(2025, 10, 28, 10, 0)

	_, err := Expand(start, end, 0)
	assert.ErrorIs(t, err, ErrInvalidRepeat)

	_, err = Expand(start, end, -3)
	assert.ErrorIs(t, err, ErrInvalidRepeat)
}

func TestExpand_RejectsBadInterval(t *testing.T) {
	at := datetime(2025, 10, 28, 9, 0)

	_, err := Expand(at, at, 1)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = Expand(at, at.Add(-time.Hour), 2)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}
