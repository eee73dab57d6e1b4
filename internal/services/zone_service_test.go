package services

import (
	"testing"

	"geoattend_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestZoneService() ZoneService {
	return NewZoneService(&fakeZoneRepo{zones: map[int64]*models.Zone{
		1: {ID: 1, Name: "HQ", CenterLat: officeLat, CenterLng: officeLng, RadiusMeters: 50},
	}}, nil)
}

func TestCreateZone(t *testing.T) {
	t.Run("defaults the radius when omitted", func(t *testing.T) {
		svc := newTestZoneService()

		zone, err := svc.CreateZone(CreateZoneRequest{Name: "Annex", Lat: ptr(officeLat), Lng: ptr(officeLng)})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultZoneRadiusMeters, zone.RadiusMeters)
	})

	tests := []struct {
		name string
		req  CreateZoneRequest
	}{
		{name: "missing name", req: CreateZoneRequest{Lat: ptr(officeLat), Lng: ptr(officeLng)}},
		{name: "missing lat", req: CreateZoneRequest{Name: "Annex", Lng: ptr(officeLng)}},
		{name: "latitude out of range", req: CreateZoneRequest{Name: "Annex", Lat: ptr(90.5), Lng: ptr(officeLng)}},
		{name: "longitude out of range", req: CreateZoneRequest{Name: "Annex", Lat: ptr(officeLat), Lng: ptr(-180.5)}},
		{name: "zero radius", req: CreateZoneRequest{Name: "Annex", Lat: ptr(officeLat), Lng: ptr(officeLng), RadiusMeters: ptr(0.0)}},
		{name: "negative radius", req: CreateZoneRequest{Name: "Annex", Lat: ptr(officeLat), Lng: ptr(officeLng), RadiusMeters: ptr(-10.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestZoneService()
			_, err := svc.CreateZone(tt.req)
			assert.ErrorIs(t, err, ErrZoneValidation)
		})
	}
}

func TestUpdateZone(t *testing.T) {
	t.Run("partial update keeps other fields", func(t *testing.T) {
		svc := newTestZoneService()

		zone, err := svc.UpdateZone(1, UpdateZoneRequest{RadiusMeters: ptr(75.0)})
		require.NoError(t, err)
		assert.Equal(t, 75.0, zone.RadiusMeters)
		assert.Equal(t, "HQ", zone.Name)
		assert.Equal(t, officeLat, zone.CenterLat)
	})

	t.Run("update cannot break geometry", func(t *testing.T) {
		svc := newTestZoneService()

		_, err := svc.UpdateZone(1, UpdateZoneRequest{RadiusMeters: ptr(-1.0)})
		assert.ErrorIs(t, err, ErrZoneValidation)
	})

	t.Run("unknown zone", func(t *testing.T) {
		svc := newTestZoneService()

		_, err := svc.UpdateZone(99, UpdateZoneRequest{RadiusMeters: ptr(75.0)})
		assert.ErrorIs(t, err, ErrZoneNotFound)
	})
}

func TestDeleteZone(t *testing.T) {
	svc := newTestZoneService()

	require.NoError(t, svc.DeleteZone(1))
	assert.ErrorIs(t, svc.DeleteZone(1), ErrZoneNotFound)
}
