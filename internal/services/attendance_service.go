package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"geoattend_backend/internal/models"
	"geoattend_backend/internal/repositories"
	"geoattend_backend/pkg/utils"
)

// --- Custom Service Errors for Attendance ---
var (
	ErrAttendanceValidation = errors.New("attendance data validation error")
	ErrZoneNotFound         = errors.New("zone not found")
	ErrShiftNotFound        = errors.New("shift not found")
	ErrAlreadyCheckedIn     = errors.New("already checked in and not checked out yet")
	ErrNoOpenSession        = errors.New("not checked in today or already checked out")
	ErrOutOfZone            = errors.New("reported position is outside the allowed zone")
	ErrZoneMisconfigured    = errors.New("zone is misconfigured")
)

// OpenSessionConflictError reports a duplicate check-in attempt. It carries the
// identifier of the record already open for the user so the caller can surface
// it. errors.Is(err, ErrAlreadyCheckedIn) matches it.
type OpenSessionConflictError struct {
	AttendanceID int64
}

func (e *OpenSessionConflictError) Error() string {
	return fmt.Sprintf("already checked in and not checked out yet (attendance_id=%d)", e.AttendanceID)
}

func (e *OpenSessionConflictError) Unwrap() error { return ErrAlreadyCheckedIn }

// OutOfZoneError reports a geometrically rejected check-in. Distance and radius
// are rounded to whole meters for user feedback. errors.Is(err, ErrOutOfZone)
// matches it.
type OutOfZoneError struct {
	DistanceMeters      int64
	AllowedRadiusMeters int64
}

func (e *OutOfZoneError) Error() string {
	return fmt.Sprintf("reported position is outside the allowed zone (distance=%dm, allowed=%dm)",
		e.DistanceMeters, e.AllowedRadiusMeters)
}

func (e *OutOfZoneError) Unwrap() error { return ErrOutOfZone }

// --- Attendance DTOs ---

// CheckInRequest carries a reported position and the target zone/shift.
// Pointer fields distinguish "missing" from zero values.
type CheckInRequest struct {
	Lat     *float64 `json:"lat" binding:"required"`
	Lng     *float64 `json:"lng" binding:"required"`
	ZoneID  *int64   `json:"zone_id" binding:"required"`
	ShiftID *int64   `json:"shift_id" binding:"required"`
}

// CheckOutRequest carries the reported position at check-out.
type CheckOutRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// AttendanceHistoryPage is the paginated "my history" projection.
type AttendanceHistoryPage struct {
	Items []models.AttendanceRecord `json:"items"`
	Total int                       `json:"total"`
	Page  int                       `json:"page"`
	Size  int                       `json:"size"`
}

const (
	DefaultHistoryPageSize = 20
	MaxHistoryPageSize     = 100
)

// --- AttendanceService Interface ---

// AttendanceService is the geofenced check-in/check-out state machine. Per
// (user, day bucket) a session moves NoSession -> Open -> Closed; Closed is
// terminal for that bucket. All operations take the current instant explicitly
// so tests can supply fixed clocks.
type AttendanceService interface {
	CheckIn(userID int64, req CheckInRequest, now time.Time) (*models.AttendanceRecord, error)
	CheckOut(userID int64, req CheckOutRequest, now time.Time) (*models.AttendanceRecord, error)
	MyToday(userID int64, now time.Time) (*models.AttendanceRecord, error)
	MyHistory(userID int64, page, size int) (*AttendanceHistoryPage, error)
	AdminList(filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	AdminDaily(date time.Time) ([]models.AttendanceRecord, error)
}

// --- attendanceService Implementation ---
type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	zoneRepo       repositories.ZoneRepository
	shiftRepo      repositories.ShiftRepository
	db             *sql.DB
	loc            *time.Location // time reference used for day bucketing, fixed per deployment
}

// NewAttendanceService creates a new instance of AttendanceService. loc is the
// deployment's day-bucketing time reference; nil means UTC.
func NewAttendanceService(
	ar repositories.AttendanceRepository,
	zr repositories.ZoneRepository,
	sr repositories.ShiftRepository,
	db *sql.DB,
	loc *time.Location,
) AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &attendanceService{
		attendanceRepo: ar,
		zoneRepo:       zr,
		shiftRepo:      sr,
		db:             db,
		loc:            loc,
	}
}

// admissionResult is the inside/outside decision for a reported position
// against a zone.
type admissionResult struct {
	Inside              bool
	DistanceMeters      float64
	AllowedRadiusMeters float64
}

// evaluateAdmission compares a reported position to the zone's center and
// radius. A non-positive radius or an out-of-range center is an administrative
// data defect and fails with ErrZoneMisconfigured rather than silently
// admitting or rejecting. The boundary is inclusive: a position exactly at the
// radius is admitted.
func evaluateAdmission(zone *models.Zone, lat, lng float64) (admissionResult, error) {
	if zone.RadiusMeters <= 0 {
		return admissionResult{}, fmt.Errorf("%w: zone %d has non-positive radius %v", ErrZoneMisconfigured, zone.ID, zone.RadiusMeters)
	}
	if !utils.IsValidLatitude(zone.CenterLat) || !utils.IsValidLongitude(zone.CenterLng) {
		return admissionResult{}, fmt.Errorf("%w: zone %d has out-of-range center (%v, %v)", ErrZoneMisconfigured, zone.ID, zone.CenterLat, zone.CenterLng)
	}

	distance := utils.HaversineMeters(zone.CenterLat, zone.CenterLng, lat, lng)
	return admissionResult{
		Inside:              distance <= zone.RadiusMeters,
		DistanceMeters:      distance,
		AllowedRadiusMeters: zone.RadiusMeters,
	}, nil
}

// validatePosition checks that a reported position is present and finite.
func validatePosition(lat, lng *float64) error {
	if lat == nil || lng == nil {
		return fmt.Errorf("%w: lat/lng are required", ErrAttendanceValidation)
	}
	if !utils.IsFiniteCoordinate(*lat, *lng) {
		return fmt.Errorf("%w: lat/lng must be finite numbers", ErrAttendanceValidation)
	}
	return nil
}

// CheckIn validates the request, resolves the zone and shift, enforces the
// open-session invariant and the geofence, then creates a new open record.
// The uniqueness check runs before the geometry check so a misconfigured zone
// never masks a duplicate check-in conflict.
func (s *attendanceService) CheckIn(userID int64, req CheckInRequest, now time.Time) (*models.AttendanceRecord, error) {
	if err := validatePosition(req.Lat, req.Lng); err != nil {
		return nil, err
	}
	if req.ZoneID == nil || req.ShiftID == nil {
		return nil, fmt.Errorf("%w: zone_id and shift_id are required", ErrAttendanceValidation)
	}

	zone, err := s.zoneRepo.GetZoneByID(*req.ZoneID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to resolve zone %d: %w", *req.ZoneID, err)
	}

	if _, err := s.shiftRepo.GetShiftByID(*req.ShiftID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to resolve shift %d: %w", *req.ShiftID, err)
	}

	dayStart, dayEnd := utils.DayBounds(now, s.loc)

	open, err := s.attendanceRepo.FindOpenSession(userID, dayStart, dayEnd)
	if err == nil {
		return nil, &OpenSessionConflictError{AttendanceID: open.ID}
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up open session for user %d: %w", userID, err)
	}

	admission, err := evaluateAdmission(zone, *req.Lat, *req.Lng)
	if err != nil {
		return nil, err
	}
	if !admission.Inside {
		return nil, &OutOfZoneError{
			DistanceMeters:      int64(math.Round(admission.DistanceMeters)),
			AllowedRadiusMeters: int64(math.Round(admission.AllowedRadiusMeters)),
		}
	}

	record := &models.AttendanceRecord{
		UserID:     userID,
		ZoneID:     zone.ID,
		ShiftID:    *req.ShiftID,
		CheckInAt:  now,
		CheckInLat: *req.Lat,
		CheckInLng: *req.Lng,
		DayBucket:  dayStart,
		CreatedAt:  now,
	}

	if _, err := s.attendanceRepo.CreateAttendance(s.db, record); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// Lost a race against a concurrent check-in; report the winner's id.
			if winner, findErr := s.attendanceRepo.FindOpenSession(userID, dayStart, dayEnd); findErr == nil {
				return nil, &OpenSessionConflictError{AttendanceID: winner.ID}
			}
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("failed to create attendance record for user %d: %w", userID, err)
	}
	return record, nil
}

// CheckOut closes the caller's open session for the current day bucket and
// computes the worked duration. Minutes are rounded half away from zero and
// floored at zero so equal clock readings yield 0, never a negative value.
func (s *attendanceService) CheckOut(userID int64, req CheckOutRequest, now time.Time) (*models.AttendanceRecord, error) {
	if err := validatePosition(req.Lat, req.Lng); err != nil {
		return nil, err
	}

	dayStart, dayEnd := utils.DayBounds(now, s.loc)

	record, err := s.attendanceRepo.FindOpenSession(userID, dayStart, dayEnd)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoOpenSession
		}
		return nil, fmt.Errorf("failed to look up open session for user %d: %w", userID, err)
	}

	workedMinutes := int64(math.Round(now.Sub(record.CheckInAt).Seconds() / 60))
	if workedMinutes < 0 {
		workedMinutes = 0
	}

	checkOutAt := now
	record.CheckOutAt = &checkOutAt
	record.CheckOutLat = req.Lat
	record.CheckOutLng = req.Lng
	record.WorkedMinutes = &workedMinutes

	if err := s.attendanceRepo.CloseSession(s.db, record); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// The session was closed between the lookup and the update.
			return nil, ErrNoOpenSession
		}
		return nil, fmt.Errorf("failed to close attendance record %d: %w", record.ID, err)
	}
	return record, nil
}

// MyToday returns the caller's record for the current day bucket, or nil when
// none exists. Absence is not an error.
func (s *attendanceService) MyToday(userID int64, now time.Time) (*models.AttendanceRecord, error) {
	dayStart, dayEnd := utils.DayBounds(now, s.loc)

	record, err := s.attendanceRepo.FindByUserInWindow(userID, dayStart, dayEnd)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up today's attendance for user %d: %w", userID, err)
	}
	return record, nil
}

// MyHistory returns the caller's attendance history, newest first. page is
// floored at 1 and size is clamped into [1, MaxHistoryPageSize] rather than
// rejected.
func (s *attendanceService) MyHistory(userID int64, page, size int) (*AttendanceHistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultHistoryPageSize
	}
	if size > MaxHistoryPageSize {
		size = MaxHistoryPageSize
	}

	items, total, err := s.attendanceRepo.GetAttendanceByUser(userID, page, size)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance history for user %d: %w", userID, err)
	}
	return &AttendanceHistoryPage{Items: items, Total: total, Page: page, Size: size}, nil
}

// AdminList returns attendance records across users narrowed by the filter,
// newest first. Role gating happens at the transport layer.
func (s *attendanceService) AdminList(filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	records, err := s.attendanceRepo.GetAttendanceFiltered(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filtered attendance: %w", err)
	}
	return records, nil
}

// AdminDaily returns all records that checked in during the calendar day
// containing date, for the HR daily sheet.
func (s *attendanceService) AdminDaily(date time.Time) ([]models.AttendanceRecord, error) {
	dayStart, dayEnd := utils.DayBounds(date, s.loc)

	records, err := s.attendanceRepo.GetAttendanceCheckedInBetween(dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily attendance: %w", err)
	}
	return records, nil
}
