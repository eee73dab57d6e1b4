package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"geoattend_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// AttendanceRepository defines the interface for attendance record database
// operations. The open-session invariant (at most one record per user per day
// bucket with check_out_at IS NULL) is backed by a partial unique index, so
// CreateAttendance returns ErrDuplicateKey for the loser of a concurrent
// duplicate check-in.
type AttendanceRepository interface {
	CreateAttendance(executor SQLExecutor, record *models.AttendanceRecord) (int64, error)
	FindOpenSession(userID int64, windowStart, windowEnd time.Time) (*models.AttendanceRecord, error)
	FindByUserInWindow(userID int64, windowStart, windowEnd time.Time) (*models.AttendanceRecord, error)
	CloseSession(executor SQLExecutor, record *models.AttendanceRecord) error
	GetAttendanceByUser(userID int64, page, pageSize int) ([]models.AttendanceRecord, int, error)
	GetAttendanceFiltered(filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	GetAttendanceCheckedInBetween(windowStart, windowEnd time.Time) ([]models.AttendanceRecord, error)
}

type attendanceRepository struct {
	db *sql.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `a.id, a.user_id, a.zone_id, a.shift_id, a.check_in_at, a.check_in_lat, a.check_in_lng,
	a.check_out_at, a.check_out_lat, a.check_out_lng, a.worked_minutes, a.day_bucket, a.created_at, a.updated_at`

// scanAttendance scans one attendance row, including the joined zone and shift
// names when the query selects them.
func scanAttendance(row interface {
	Scan(dest ...interface{}) error
}, withNames bool) (*models.AttendanceRecord, error) {
	record := &models.AttendanceRecord{}
	var checkOutAt sql.NullTime
	var checkOutLat, checkOutLng sql.NullFloat64
	var workedMinutes sql.NullInt64

	dest := []interface{}{
		&record.ID, &record.UserID, &record.ZoneID, &record.ShiftID,
		&record.CheckInAt, &record.CheckInLat, &record.CheckInLng,
		&checkOutAt, &checkOutLat, &checkOutLng, &workedMinutes,
		&record.DayBucket, &record.CreatedAt, &record.UpdatedAt,
	}

	var zoneName, shiftName sql.NullString
	if withNames {
		dest = append(dest, &zoneName, &shiftName)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if checkOutAt.Valid {
		record.CheckOutAt = &checkOutAt.Time
	}
	if checkOutLat.Valid {
		record.CheckOutLat = &checkOutLat.Float64
	}
	if checkOutLng.Valid {
		record.CheckOutLng = &checkOutLng.Float64
	}
	if workedMinutes.Valid {
		record.WorkedMinutes = &workedMinutes.Int64
	}
	if zoneName.Valid {
		record.ZoneName = &zoneName.String
	}
	if shiftName.Valid {
		record.ShiftName = &shiftName.String
	}
	return record, nil
}

// CreateAttendance inserts a new open attendance record.
func (r *attendanceRepository) CreateAttendance(executor SQLExecutor, record *models.AttendanceRecord) (int64, error) {
	query := `INSERT INTO attendance (user_id, zone_id, shift_id, check_in_at, check_in_lat, check_in_lng, day_bucket, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	currentTime := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = currentTime
	}
	record.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		record.UserID, record.ZoneID, record.ShiftID,
		record.CheckInAt, record.CheckInLat, record.CheckInLng,
		record.DayBucket, record.CreatedAt, record.UpdatedAt,
	).Scan(&record.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return 0, fmt.Errorf("%w: creating attendance record: %v", ErrDatabaseError, err)
	}
	return record.ID, nil
}

// FindOpenSession retrieves the user's open record (check_out_at IS NULL)
// whose created_at falls within the given inclusive window.
func (r *attendanceRepository) FindOpenSession(userID int64, windowStart, windowEnd time.Time) (*models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + `
	          FROM attendance a
	          WHERE a.user_id = $1 AND a.created_at BETWEEN $2 AND $3 AND a.check_out_at IS NULL
	          ORDER BY a.created_at DESC
	          LIMIT 1`

	record, err := scanAttendance(r.db.QueryRow(query, userID, windowStart, windowEnd), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding open session for user %d: %v", ErrDatabaseError, userID, err)
	}
	return record, nil
}

// FindByUserInWindow retrieves the user's attendance record (open or closed)
// whose created_at falls within the given inclusive window.
func (r *attendanceRepository) FindByUserInWindow(userID int64, windowStart, windowEnd time.Time) (*models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + `, z.name, s.name
	          FROM attendance a
	          LEFT JOIN zones z ON a.zone_id = z.id
	          LEFT JOIN shifts s ON a.shift_id = s.id
	          WHERE a.user_id = $1 AND a.created_at BETWEEN $2 AND $3
	          ORDER BY a.created_at DESC
	          LIMIT 1`

	record, err := scanAttendance(r.db.QueryRow(query, userID, windowStart, windowEnd), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding attendance for user %d in window: %v", ErrDatabaseError, userID, err)
	}
	return record, nil
}

// CloseSession persists the check-out fields of an open record. The
// check_out_at IS NULL guard ensures a closed record is never reopened or
// overwritten.
func (r *attendanceRepository) CloseSession(executor SQLExecutor, record *models.AttendanceRecord) error {
	query := `UPDATE attendance
	          SET check_out_at = $1, check_out_lat = $2, check_out_lng = $3, worked_minutes = $4, updated_at = $5
	          WHERE id = $6 AND check_out_at IS NULL`

	record.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		record.CheckOutAt, record.CheckOutLat, record.CheckOutLng, record.WorkedMinutes,
		record.UpdatedAt, record.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: closing attendance record %d: %v", ErrDatabaseError, record.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for attendance record %d: %v", ErrDatabaseError, record.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAttendanceByUser retrieves a user's attendance history ordered by
// created_at descending, with pagination. Returns records, total count, error.
func (r *attendanceRepository) GetAttendanceByUser(userID int64, page, pageSize int) ([]models.AttendanceRecord, int, error) {
	query := `SELECT ` + attendanceColumns + `, z.name, s.name, COUNT(*) OVER() as total_count
	          FROM attendance a
	          LEFT JOIN zones z ON a.zone_id = z.id
	          LEFT JOIN shifts s ON a.shift_id = s.id
	          WHERE a.user_id = $1
	          ORDER BY a.created_at DESC
	          LIMIT $2 OFFSET $3`

	offset := (page - 1) * pageSize
	rows, err := r.db.Query(query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying attendance for user %d: %v", ErrDatabaseError, userID, err)
	}
	defer rows.Close()

	records := []models.AttendanceRecord{}
	totalCount := 0
	for rows.Next() {
		record := models.AttendanceRecord{}
		var checkOutAt sql.NullTime
		var checkOutLat, checkOutLng sql.NullFloat64
		var workedMinutes sql.NullInt64
		var zoneName, shiftName sql.NullString

		if err := rows.Scan(
			&record.ID, &record.UserID, &record.ZoneID, &record.ShiftID,
			&record.CheckInAt, &record.CheckInLat, &record.CheckInLng,
			&checkOutAt, &checkOutLat, &checkOutLng, &workedMinutes,
			&record.DayBucket, &record.CreatedAt, &record.UpdatedAt,
			&zoneName, &shiftName, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning attendance record: %v", ErrDatabaseError, err)
		}
		if checkOutAt.Valid {
			record.CheckOutAt = &checkOutAt.Time
		}
		if checkOutLat.Valid {
			record.CheckOutLat = &checkOutLat.Float64
		}
		if checkOutLng.Valid {
			record.CheckOutLng = &checkOutLng.Float64
		}
		if workedMinutes.Valid {
			record.WorkedMinutes = &workedMinutes.Int64
		}
		if zoneName.Valid {
			record.ZoneName = &zoneName.String
		}
		if shiftName.Valid {
			record.ShiftName = &shiftName.String
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating attendance rows: %v", ErrDatabaseError, err)
	}
	return records, totalCount, nil
}

// GetAttendanceFiltered retrieves attendance records across users, narrowed by
// the optional filter fields, ordered by created_at descending.
func (r *attendanceRepository) GetAttendanceFiltered(filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + attendanceColumns + `, z.name, s.name
	          FROM attendance a
	          LEFT JOIN zones z ON a.zone_id = z.id
	          LEFT JOIN shifts s ON a.shift_id = s.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", argCount))
		args = append(args, *filter.UserID)
		argCount++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("a.created_at >= $%d", argCount))
		args = append(args, *filter.From)
		argCount++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("a.created_at <= $%d", argCount))
		args = append(args, *filter.To)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY a.created_at DESC")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying filtered attendance: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	return collectAttendanceRows(rows)
}

// GetAttendanceCheckedInBetween retrieves all records whose check_in_at falls
// within the given inclusive window, for the HR daily sheet.
func (r *attendanceRepository) GetAttendanceCheckedInBetween(windowStart, windowEnd time.Time) ([]models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + `, z.name, s.name
	          FROM attendance a
	          LEFT JOIN zones z ON a.zone_id = z.id
	          LEFT JOIN shifts s ON a.shift_id = s.id
	          WHERE a.check_in_at BETWEEN $1 AND $2
	          ORDER BY a.check_in_at ASC`

	rows, err := r.db.Query(query, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: querying daily attendance: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	return collectAttendanceRows(rows)
}

func collectAttendanceRows(rows *sql.Rows) ([]models.AttendanceRecord, error) {
	records := []models.AttendanceRecord{}
	for rows.Next() {
		record, err := scanAttendance(rows, true)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning attendance record: %v", ErrDatabaseError, err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating attendance rows: %v", ErrDatabaseError, err)
	}
	return records, nil
}
