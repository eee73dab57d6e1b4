package utils

import "math"

// EarthRadiusMeters is the spherical earth radius used for great-circle
// distance computations.
const EarthRadiusMeters = 6371000.0

// HaversineMeters computes the great-circle surface distance in meters between
// two points given as (lat, lng) pairs in signed decimal degrees, using the
// haversine formula on a spherical earth model.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)

	h := sinDLat*sinDLat + math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*sinDLng*sinDLng

	// Floating-point rounding can push h a hair above 1 for near-antipodal or
	// identical points; clamp before Asin to stay in its domain.
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// IsFiniteCoordinate reports whether both lat and lng are finite numbers
// (not NaN, not +/-Inf).
func IsFiniteCoordinate(lat, lng float64) bool {
	isFinite := func(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
	return isFinite(lat) && isFinite(lng)
}

// IsValidLatitude reports whether lat is a finite value within [-90, 90].
func IsValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// IsValidLongitude reports whether lng is a finite value within [-180, 180].
func IsValidLongitude(lng float64) bool {
	return !math.IsNaN(lng) && lng >= -180 && lng <= 180
}
