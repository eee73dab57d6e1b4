package models

import "time"

// Shift is an administrative work-schedule entity. StartTime and EndTime are
// local time-of-day strings in "HH:MM" form (e.g. "09:00"). The attendance
// core references shifts but does not currently enforce the time window.
type Shift struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" db:"name"`
	StartTime string    `json:"start_time" db:"start_time"`
	EndTime   string    `json:"end_time" db:"end_time"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
