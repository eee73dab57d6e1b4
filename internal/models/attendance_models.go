package models

import "time"

// AttendanceRecord is the per-user, per-day attendance session. A record with
// CheckOutAt == nil is an open session; at most one open session may exist per
// user within a day bucket (enforced by a partial unique index on
// (user_id, day_bucket) WHERE check_out_at IS NULL).
type AttendanceRecord struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id" db:"user_id"`
	ZoneID        int64      `json:"zone_id" db:"zone_id"`
	ShiftID       int64      `json:"shift_id" db:"shift_id"`
	CheckInAt     time.Time  `json:"check_in_at" db:"check_in_at"`
	CheckInLat    float64    `json:"check_in_lat" db:"check_in_lat"`
	CheckInLng    float64    `json:"check_in_lng" db:"check_in_lng"`
	CheckOutAt    *time.Time `json:"check_out_at,omitempty" db:"check_out_at"`
	CheckOutLat   *float64   `json:"check_out_lat,omitempty" db:"check_out_lat"`
	CheckOutLng   *float64   `json:"check_out_lng,omitempty" db:"check_out_lng"`
	WorkedMinutes *int64     `json:"worked_minutes,omitempty" db:"worked_minutes"`
	DayBucket     time.Time  `json:"-" db:"day_bucket"` // start of the calendar day CreatedAt falls in
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`

	ZoneName  *string `json:"zone_name,omitempty"`  // populated by joined reads
	ShiftName *string `json:"shift_name,omitempty"` // populated by joined reads
}

// IsOpen reports whether the record is an open session (checked in, not yet
// checked out).
func (a *AttendanceRecord) IsOpen() bool {
	return a.CheckOutAt == nil
}

// AttendanceFilter narrows administrative attendance listings. Nil fields are
// ignored.
type AttendanceFilter struct {
	UserID *int64
	From   *time.Time
	To     *time.Time
}
