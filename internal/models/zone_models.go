package models

import "time"

// DefaultZoneRadiusMeters is applied when an administrator creates a zone
// without specifying a radius.
const DefaultZoneRadiusMeters = 30.0

// Zone is an administrator-defined circular geofence. Check-ins are only
// admitted while the reported position lies within RadiusMeters of the center.
type Zone struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" db:"name"`
	CenterLat    float64   `json:"center_lat" db:"center_lat"`
	CenterLng    float64   `json:"center_lng" db:"center_lng"`
	RadiusMeters float64   `json:"radius_meters" db:"radius_meters"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
