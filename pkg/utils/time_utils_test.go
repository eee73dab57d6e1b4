package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBounds(t *testing.T) {
	noon := time.Date(2025, 3, 10, 12, 30, 45, 123456789, time.UTC)

	t.Run("covers the whole day", func(t *testing.T) {
		start, end := DayBounds(noon, time.UTC)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, 999999999, time.UTC), end)
	})

	t.Run("end is strictly before the next day start", func(t *testing.T) {
		start, end := DayBounds(noon, time.UTC)
		nextStart, _ := DayBounds(start.AddDate(0, 0, 1), time.UTC)
		assert.True(t, end.Before(nextStart))
		assert.Equal(t, time.Nanosecond, nextStart.Sub(end))
	})

	t.Run("idempotent for any instant within the day", func(t *testing.T) {
		start, end := DayBounds(noon, time.UTC)
		for _, instant := range []time.Time{start, noon, end} {
			s, e := DayBounds(instant, time.UTC)
			assert.Equal(t, start, s)
			assert.Equal(t, end, e)
		}
	})

	t.Run("nil location defaults to UTC", func(t *testing.T) {
		start, _ := DayBounds(noon, nil)
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("buckets by the configured location, not the input offset", func(t *testing.T) {
		kolkata, err := time.LoadLocation("Asia/Kolkata")
		require.NoError(t, err)

		// 2025-03-10 22:00 UTC is already 2025-03-11 03:30 in Kolkata.
		lateUTC := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
		start, _ := DayBounds(lateUTC, kolkata)
		assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, kolkata), start)
	})
}
