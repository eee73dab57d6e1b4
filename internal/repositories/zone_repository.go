package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"geoattend_backend/internal/models"
)

// ZoneRepository defines the interface for geofence zone database operations.
type ZoneRepository interface {
	CreateZone(executor SQLExecutor, zone *models.Zone) (int64, error)
	GetZoneByID(id int64) (*models.Zone, error)
	GetZones() ([]models.Zone, error)
	UpdateZone(executor SQLExecutor, zone *models.Zone) error
	DeleteZone(executor SQLExecutor, id int64) error
}

type zoneRepository struct {
	db *sql.DB
}

// NewZoneRepository creates a new instance of ZoneRepository.
func NewZoneRepository(db *sql.DB) ZoneRepository {
	return &zoneRepository{db: db}
}

const zoneColumns = `id, name, center_lat, center_lng, radius_meters, created_at, updated_at`

// CreateZone inserts a new zone into the database.
func (r *zoneRepository) CreateZone(executor SQLExecutor, zone *models.Zone) (int64, error) {
	query := `INSERT INTO zones (name, center_lat, center_lng, radius_meters, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	currentTime := time.Now()
	zone.CreatedAt = currentTime
	zone.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		zone.Name, zone.CenterLat, zone.CenterLng, zone.RadiusMeters,
		zone.CreatedAt, zone.UpdatedAt,
	).Scan(&zone.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating zone: %v", ErrDatabaseError, err)
	}
	return zone.ID, nil
}

// GetZoneByID retrieves a zone by its ID.
func (r *zoneRepository) GetZoneByID(id int64) (*models.Zone, error) {
	zone := &models.Zone{}
	query := `SELECT ` + zoneColumns + ` FROM zones WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&zone.ID, &zone.Name, &zone.CenterLat, &zone.CenterLng, &zone.RadiusMeters,
		&zone.CreatedAt, &zone.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting zone by ID %d: %v", ErrDatabaseError, id, err)
	}
	return zone, nil
}

// GetZones retrieves all zones ordered by name.
func (r *zoneRepository) GetZones() ([]models.Zone, error) {
	query := `SELECT ` + zoneColumns + ` FROM zones ORDER BY name ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying zones: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	zones := []models.Zone{}
	for rows.Next() {
		var zone models.Zone
		if err := rows.Scan(
			&zone.ID, &zone.Name, &zone.CenterLat, &zone.CenterLng, &zone.RadiusMeters,
			&zone.CreatedAt, &zone.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning zone: %v", ErrDatabaseError, err)
		}
		zones = append(zones, zone)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating zone rows: %v", ErrDatabaseError, err)
	}
	return zones, nil
}

// UpdateZone updates an existing zone.
func (r *zoneRepository) UpdateZone(executor SQLExecutor, zone *models.Zone) error {
	query := `UPDATE zones SET name = $1, center_lat = $2, center_lng = $3, radius_meters = $4, updated_at = $5
	          WHERE id = $6`

	zone.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		zone.Name, zone.CenterLat, zone.CenterLng, zone.RadiusMeters, zone.UpdatedAt, zone.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating zone %d: %v", ErrDatabaseError, zone.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for zone %d: %v", ErrDatabaseError, zone.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteZone removes a zone by its ID.
func (r *zoneRepository) DeleteZone(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM zones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting zone %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for zone %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
