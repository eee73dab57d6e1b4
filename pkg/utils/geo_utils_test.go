package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name     string
		lat1     float64
		lng1     float64
		lat2     float64
		lng2     float64
		expected float64
		delta    float64
	}{
		{
			name: "Zero distance",
			lat1: 12.9716, lng1: 77.5946,
			lat2: 12.9716, lng2: 77.5946,
			expected: 0, delta: 0.001,
		},
		{
			name: "Small longitude offset near office",
			lat1: 12.9716, lng1: 77.5946,
			lat2: 12.9716, lng2: 77.5950,
			expected: 43.3, delta: 0.5,
		},
		{
			name: "Latitude offset of 0.004 degrees",
			lat1: 12.9716, lng1: 77.5946,
			lat2: 12.9756, lng2: 77.5946,
			expected: 444.8, delta: 0.5,
		},
		{
			name: "Symmetric in argument order",
			lat1: 12.9756, lng1: 77.5946,
			lat2: 12.9716, lng2: 77.5946,
			expected: 444.8, delta: 0.5,
		},
		{
			name: "Quarter of the equator",
			lat1: 0, lng1: 0,
			lat2: 0, lng2: 90,
			expected: math.Pi * EarthRadiusMeters / 2, delta: 1,
		},
		{
			name: "Antipodal points",
			lat1: 0, lng1: 0,
			lat2: 0, lng2: 180,
			expected: math.Pi * EarthRadiusMeters, delta: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := HaversineMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.expected, res, tt.delta)
		})
	}
}

// Identical coordinates must produce exactly zero, not NaN, even where
// floating-point rounding pushes the haversine intermediate above 1.
func TestHaversineMetersStableAtZero(t *testing.T) {
	coords := [][2]float64{
		{0, 0},
		{12.9716, 77.5946},
		{-33.8688, 151.2093},
		{89.9999, 179.9999},
	}
	for _, c := range coords {
		res := HaversineMeters(c[0], c[1], c[0], c[1])
		assert.False(t, math.IsNaN(res))
		assert.Equal(t, 0.0, res)
	}
}

func TestCoordinateValidation(t *testing.T) {
	assert.True(t, IsValidLatitude(0))
	assert.True(t, IsValidLatitude(90))
	assert.True(t, IsValidLatitude(-90))
	assert.False(t, IsValidLatitude(90.0001))
	assert.False(t, IsValidLatitude(-91))

	assert.True(t, IsValidLongitude(180))
	assert.True(t, IsValidLongitude(-180))
	assert.False(t, IsValidLongitude(180.0001))

	assert.True(t, IsFiniteCoordinate(12.9716, 77.5946))
	assert.False(t, IsFiniteCoordinate(math.NaN(), 77.5946))
	assert.False(t, IsFiniteCoordinate(12.9716, math.Inf(1)))
}
