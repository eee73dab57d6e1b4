package utils

import "time"

// DayBounds returns the first and last instants of the calendar day containing
// t, evaluated in loc (UTC when loc is nil). Both bounds are inclusive for the
// purpose of range queries: end is the last representable instant of the day,
// strictly less than the start of the following day.
func DayBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
