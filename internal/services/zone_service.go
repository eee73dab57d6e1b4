package services

import (
	"database/sql"
	"errors"
	"fmt"

	"geoattend_backend/internal/models"
	"geoattend_backend/internal/repositories"
	"geoattend_backend/pkg/utils"
)

// --- Custom Service Errors for Zones ---
var (
	ErrZoneValidation = errors.New("zone data validation error")
)

// --- Zone DTOs ---

// CreateZoneRequest DTO
type CreateZoneRequest struct {
	Name         string   `json:"name" binding:"required"`
	Lat          *float64 `json:"lat" binding:"required"`
	Lng          *float64 `json:"lng" binding:"required"`
	RadiusMeters *float64 `json:"radius_meters"`
}

// UpdateZoneRequest DTO; nil fields are left unchanged.
type UpdateZoneRequest struct {
	Name         *string  `json:"name"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	RadiusMeters *float64 `json:"radius_meters"`
}

// --- ZoneService Interface ---
type ZoneService interface {
	CreateZone(req CreateZoneRequest) (*models.Zone, error)
	GetZones() ([]models.Zone, error)
	UpdateZone(zoneID int64, req UpdateZoneRequest) (*models.Zone, error)
	DeleteZone(zoneID int64) error
}

// --- zoneService Implementation ---
type zoneService struct {
	zoneRepo repositories.ZoneRepository
	db       *sql.DB
}

// NewZoneService creates a new instance of ZoneService.
func NewZoneService(zoneRepo repositories.ZoneRepository, db *sql.DB) ZoneService {
	return &zoneService{zoneRepo: zoneRepo, db: db}
}

// validateZoneGeometry rejects centers outside valid coordinate ranges and
// non-positive radii. Admission-time checks rely on administrators never being
// able to persist a misconfigured zone through this path.
func validateZoneGeometry(lat, lng, radius float64) error {
	if !utils.IsValidLatitude(lat) {
		return fmt.Errorf("%w: lat must be within [-90, 90]", ErrZoneValidation)
	}
	if !utils.IsValidLongitude(lng) {
		return fmt.Errorf("%w: lng must be within [-180, 180]", ErrZoneValidation)
	}
	if radius <= 0 {
		return fmt.Errorf("%w: radius_meters must be positive", ErrZoneValidation)
	}
	return nil
}

// CreateZone validates and persists a new geofence zone.
func (s *zoneService) CreateZone(req CreateZoneRequest) (*models.Zone, error) {
	if utils.IsEmpty(req.Name) || req.Lat == nil || req.Lng == nil {
		return nil, fmt.Errorf("%w: name, lat and lng are required", ErrZoneValidation)
	}

	radius := models.DefaultZoneRadiusMeters
	if req.RadiusMeters != nil {
		radius = *req.RadiusMeters
	}
	if err := validateZoneGeometry(*req.Lat, *req.Lng, radius); err != nil {
		return nil, err
	}

	zone := &models.Zone{
		Name:         req.Name,
		CenterLat:    *req.Lat,
		CenterLng:    *req.Lng,
		RadiusMeters: radius,
	}
	if _, err := s.zoneRepo.CreateZone(s.db, zone); err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	return zone, nil
}

// GetZones returns all zones.
func (s *zoneService) GetZones() ([]models.Zone, error) {
	zones, err := s.zoneRepo.GetZones()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch zones: %w", err)
	}
	return zones, nil
}

// UpdateZone applies a partial update to an existing zone.
func (s *zoneService) UpdateZone(zoneID int64, req UpdateZoneRequest) (*models.Zone, error) {
	zone, err := s.zoneRepo.GetZoneByID(zoneID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to fetch zone %d: %w", zoneID, err)
	}

	if req.Name != nil && !utils.IsEmpty(*req.Name) {
		zone.Name = *req.Name
	}
	if req.Lat != nil {
		zone.CenterLat = *req.Lat
	}
	if req.Lng != nil {
		zone.CenterLng = *req.Lng
	}
	if req.RadiusMeters != nil {
		zone.RadiusMeters = *req.RadiusMeters
	}
	if err := validateZoneGeometry(zone.CenterLat, zone.CenterLng, zone.RadiusMeters); err != nil {
		return nil, err
	}

	if err := s.zoneRepo.UpdateZone(s.db, zone); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to update zone %d: %w", zoneID, err)
	}
	return zone, nil
}

// DeleteZone removes a zone.
func (s *zoneService) DeleteZone(zoneID int64) error {
	if err := s.zoneRepo.DeleteZone(s.db, zoneID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrZoneNotFound
		}
		return fmt.Errorf("failed to delete zone %d: %w", zoneID, err)
	}
	return nil
}
