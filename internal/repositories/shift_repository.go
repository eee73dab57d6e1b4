package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"geoattend_backend/internal/models"
)

// ShiftRepository defines the interface for shift database operations.
type ShiftRepository interface {
	CreateShift(executor SQLExecutor, shift *models.Shift) (int64, error)
	GetShiftByID(id int64) (*models.Shift, error)
	GetShifts() ([]models.Shift, error)
	UpdateShift(executor SQLExecutor, shift *models.Shift) error
	DeleteShift(executor SQLExecutor, id int64) error
}

type shiftRepository struct {
	db *sql.DB
}

// NewShiftRepository creates a new instance of ShiftRepository.
func NewShiftRepository(db *sql.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

const shiftColumns = `id, name, start_time, end_time, created_at, updated_at`

// CreateShift inserts a new shift into the database.
func (r *shiftRepository) CreateShift(executor SQLExecutor, shift *models.Shift) (int64, error) {
	query := `INSERT INTO shifts (name, start_time, end_time, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	currentTime := time.Now()
	shift.CreatedAt = currentTime
	shift.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		shift.Name, shift.StartTime, shift.EndTime, shift.CreatedAt, shift.UpdatedAt,
	).Scan(&shift.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating shift: %v", ErrDatabaseError, err)
	}
	return shift.ID, nil
}

// GetShiftByID retrieves a shift by its ID.
func (r *shiftRepository) GetShiftByID(id int64) (*models.Shift, error) {
	shift := &models.Shift{}
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime,
		&shift.CreatedAt, &shift.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting shift by ID %d: %v", ErrDatabaseError, id, err)
	}
	return shift, nil
}

// GetShifts retrieves all shifts ordered by name.
func (r *shiftRepository) GetShifts() ([]models.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts ORDER BY name ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying shifts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	shifts := []models.Shift{}
	for rows.Next() {
		var shift models.Shift
		if err := rows.Scan(
			&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime,
			&shift.CreatedAt, &shift.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning shift: %v", ErrDatabaseError, err)
		}
		shifts = append(shifts, shift)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating shift rows: %v", ErrDatabaseError, err)
	}
	return shifts, nil
}

// UpdateShift updates an existing shift.
func (r *shiftRepository) UpdateShift(executor SQLExecutor, shift *models.Shift) error {
	query := `UPDATE shifts SET name = $1, start_time = $2, end_time = $3, updated_at = $4
	          WHERE id = $5`

	shift.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		shift.Name, shift.StartTime, shift.EndTime, shift.UpdatedAt, shift.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating shift %d: %v", ErrDatabaseError, shift.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for shift %d: %v", ErrDatabaseError, shift.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteShift removes a shift by its ID.
func (r *shiftRepository) DeleteShift(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting shift %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for shift %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
