package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"geoattend_backend/internal/models"
)

// LeaveRepository defines the interface for leave request database operations.
type LeaveRepository interface {
	CreateLeave(executor SQLExecutor, leave *models.Leave) (int64, error)
	GetLeaveByID(id int64) (*models.Leave, error)
	GetLeavesByUser(userID int64) ([]models.Leave, error)
	GetLeaves() ([]models.Leave, error)
	UpdateLeaveStatus(executor SQLExecutor, id int64, status string, reviewedBy int64) (*models.Leave, error)
}

type leaveRepository struct {
	db *sql.DB
}

// NewLeaveRepository creates a new instance of LeaveRepository.
func NewLeaveRepository(db *sql.DB) LeaveRepository {
	return &leaveRepository{db: db}
}

const leaveColumns = `id, user_id, from_date, to_date, reason, status, reviewed_by, created_at, updated_at`

func scanLeave(row *sql.Row) (*models.Leave, error) {
	leave := &models.Leave{}
	var reviewedBy sql.NullInt64
	err := row.Scan(
		&leave.ID, &leave.UserID, &leave.FromDate, &leave.ToDate,
		&leave.Reason, &leave.Status, &reviewedBy,
		&leave.CreatedAt, &leave.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reviewedBy.Valid {
		leave.ReviewedBy = &reviewedBy.Int64
	}
	return leave, nil
}

// CreateLeave inserts a new leave request.
func (r *leaveRepository) CreateLeave(executor SQLExecutor, leave *models.Leave) (int64, error) {
	query := `INSERT INTO leaves (user_id, from_date, to_date, reason, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	currentTime := time.Now()
	leave.CreatedAt = currentTime
	leave.UpdatedAt = currentTime
	if leave.Status == "" {
		leave.Status = models.LeaveStatusPending
	}

	err := executor.QueryRow(query,
		leave.UserID, leave.FromDate, leave.ToDate, leave.Reason, leave.Status,
		leave.CreatedAt, leave.UpdatedAt,
	).Scan(&leave.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating leave request: %v", ErrDatabaseError, err)
	}
	return leave.ID, nil
}

// GetLeaveByID retrieves a leave request by its ID.
func (r *leaveRepository) GetLeaveByID(id int64) (*models.Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves WHERE id = $1`
	leave, err := scanLeave(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting leave by ID %d: %v", ErrDatabaseError, id, err)
	}
	return leave, nil
}

// GetLeavesByUser retrieves a user's leave requests ordered by creation time.
func (r *leaveRepository) GetLeavesByUser(userID int64) ([]models.Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying leaves for user %d: %v", ErrDatabaseError, userID, err)
	}
	defer rows.Close()
	return collectLeaveRows(rows)
}

// GetLeaves retrieves all leave requests ordered by creation time.
func (r *leaveRepository) GetLeaves() ([]models.Leave, error) {
	query := `SELECT ` + leaveColumns + ` FROM leaves ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying leaves: %v", ErrDatabaseError, err)
	}
	defer rows.Close()
	return collectLeaveRows(rows)
}

// UpdateLeaveStatus moves a leave request to a new status and records the
// reviewer. Returns the updated row.
func (r *leaveRepository) UpdateLeaveStatus(executor SQLExecutor, id int64, status string, reviewedBy int64) (*models.Leave, error) {
	query := `UPDATE leaves SET status = $1, reviewed_by = $2, updated_at = $3 WHERE id = $4
	          RETURNING ` + leaveColumns
	leave, err := scanLeave(executor.QueryRow(query, status, reviewedBy, time.Now(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating status for leave %d: %v", ErrDatabaseError, id, err)
	}
	return leave, nil
}

func collectLeaveRows(rows *sql.Rows) ([]models.Leave, error) {
	leaves := []models.Leave{}
	for rows.Next() {
		var leave models.Leave
		var reviewedBy sql.NullInt64
		if err := rows.Scan(
			&leave.ID, &leave.UserID, &leave.FromDate, &leave.ToDate,
			&leave.Reason, &leave.Status, &reviewedBy,
			&leave.CreatedAt, &leave.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning leave request: %v", ErrDatabaseError, err)
		}
		if reviewedBy.Valid {
			leave.ReviewedBy = &reviewedBy.Int64
		}
		leaves = append(leaves, leave)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating leave rows: %v", ErrDatabaseError, err)
	}
	return leaves, nil
}
