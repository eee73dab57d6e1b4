package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"geoattend_backend/internal/models"
	"geoattend_backend/internal/repositories"
	"geoattend_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory fakes ---

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*models.AttendanceRecord
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[int64]*models.AttendanceRecord{}}
}

func (f *fakeAttendanceRepo) CreateAttendance(_ repositories.SQLExecutor, record *models.AttendanceRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Mirrors the partial unique index on (user_id, day_bucket) for open rows.
	for _, existing := range f.records {
		if existing.UserID == record.UserID && existing.DayBucket.Equal(record.DayBucket) && existing.CheckOutAt == nil {
			return 0, fmt.Errorf("%w: attendance_open_session_uniq", repositories.ErrDuplicateKey)
		}
	}

	f.nextID++
	record.ID = f.nextID
	stored := *record
	f.records[record.ID] = &stored
	return record.ID, nil
}

func (f *fakeAttendanceRepo) FindOpenSession(userID int64, windowStart, windowEnd time.Time) (*models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.records {
		if r.UserID == userID && r.CheckOutAt == nil &&
			!r.CreatedAt.Before(windowStart) && !r.CreatedAt.After(windowEnd) {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeAttendanceRepo) FindByUserInWindow(userID int64, windowStart, windowEnd time.Time) (*models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest *models.AttendanceRecord
	for _, r := range f.records {
		if r.UserID != userID || r.CreatedAt.Before(windowStart) || r.CreatedAt.After(windowEnd) {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeAttendanceRepo) CloseSession(_ repositories.SQLExecutor, record *models.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.records[record.ID]
	if !ok || stored.CheckOutAt != nil {
		return repositories.ErrNotFound
	}
	stored.CheckOutAt = record.CheckOutAt
	stored.CheckOutLat = record.CheckOutLat
	stored.CheckOutLng = record.CheckOutLng
	stored.WorkedMinutes = record.WorkedMinutes
	return nil
}

func (f *fakeAttendanceRepo) GetAttendanceByUser(userID int64, page, pageSize int) ([]models.AttendanceRecord, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := []models.AttendanceRecord{}
	for _, r := range f.records {
		if r.UserID == userID {
			all = append(all, *r)
		}
	}
	total := len(all)
	offset := (page - 1) * pageSize
	if offset >= total {
		return []models.AttendanceRecord{}, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeAttendanceRepo) GetAttendanceFiltered(filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.AttendanceRecord{}
	for _, r := range f.records {
		if filter.UserID != nil && r.UserID != *filter.UserID {
			continue
		}
		if filter.From != nil && r.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && r.CreatedAt.After(*filter.To) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeAttendanceRepo) GetAttendanceCheckedInBetween(windowStart, windowEnd time.Time) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.AttendanceRecord{}
	for _, r := range f.records {
		if !r.CheckInAt.Before(windowStart) && !r.CheckInAt.After(windowEnd) {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeZoneRepo struct {
	zones map[int64]*models.Zone
}

func (f *fakeZoneRepo) CreateZone(_ repositories.SQLExecutor, zone *models.Zone) (int64, error) {
	f.zones[zone.ID] = zone
	return zone.ID, nil
}

func (f *fakeZoneRepo) GetZoneByID(id int64) (*models.Zone, error) {
	zone, ok := f.zones[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *zone
	return &copied, nil
}

func (f *fakeZoneRepo) GetZones() ([]models.Zone, error) {
	out := []models.Zone{}
	for _, z := range f.zones {
		out = append(out, *z)
	}
	return out, nil
}

func (f *fakeZoneRepo) UpdateZone(_ repositories.SQLExecutor, zone *models.Zone) error {
	if _, ok := f.zones[zone.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.zones[zone.ID] = zone
	return nil
}

func (f *fakeZoneRepo) DeleteZone(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.zones[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.zones, id)
	return nil
}

type fakeShiftRepo struct {
	shifts map[int64]*models.Shift
}

func (f *fakeShiftRepo) CreateShift(_ repositories.SQLExecutor, shift *models.Shift) (int64, error) {
	f.shifts[shift.ID] = shift
	return shift.ID, nil
}

func (f *fakeShiftRepo) GetShiftByID(id int64) (*models.Shift, error) {
	shift, ok := f.shifts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *shift
	return &copied, nil
}

func (f *fakeShiftRepo) GetShifts() ([]models.Shift, error) {
	out := []models.Shift{}
	for _, s := range f.shifts {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeShiftRepo) UpdateShift(_ repositories.SQLExecutor, shift *models.Shift) error {
	if _, ok := f.shifts[shift.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.shifts[shift.ID] = shift
	return nil
}

func (f *fakeShiftRepo) DeleteShift(_ repositories.SQLExecutor, id int64) error {
	if _, ok := f.shifts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.shifts, id)
	return nil
}

// --- Test fixture ---

const (
	officeLat = 12.9716
	officeLng = 77.5946
)

func newTestAttendanceService(t *testing.T) (AttendanceService, *fakeAttendanceRepo) {
	t.Helper()

	attendanceRepo := newFakeAttendanceRepo()
	zoneRepo := &fakeZoneRepo{zones: map[int64]*models.Zone{
		1: {ID: 1, Name: "HQ", CenterLat: officeLat, CenterLng: officeLng, RadiusMeters: 50},
		2: {ID: 2, Name: "Broken", CenterLat: officeLat, CenterLng: officeLng, RadiusMeters: 0},
	}}
	shiftRepo := &fakeShiftRepo{shifts: map[int64]*models.Shift{
		1: {ID: 1, Name: "Morning", StartTime: "09:00", EndTime: "17:00"},
	}}

	svc := NewAttendanceService(attendanceRepo, zoneRepo, shiftRepo, nil, time.UTC)
	return svc, attendanceRepo
}

func ptr[T any](v T) *T { return &v }

func checkInAt(lat, lng float64) CheckInRequest {
	return CheckInRequest{Lat: ptr(lat), Lng: ptr(lng), ZoneID: ptr(int64(1)), ShiftID: ptr(int64(1))}
}

// --- CheckIn ---

func TestCheckIn(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("inside the zone creates an open record", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		record, err := svc.CheckIn(7, checkInAt(officeLat, officeLng+0.0004), now)
		require.NoError(t, err)
		assert.NotZero(t, record.ID)
		assert.Equal(t, int64(7), record.UserID)
		assert.Equal(t, now, record.CheckInAt)
		assert.True(t, record.IsOpen())
		assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), record.DayBucket)
	})

	t.Run("position exactly at the radius is admitted", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		// Set the zone radius to the exact distance of the reported position.
		distance := utils.HaversineMeters(officeLat, officeLng, officeLat, officeLng+0.0004)
		zoneRepo := &fakeZoneRepo{zones: map[int64]*models.Zone{
			1: {ID: 1, Name: "Edge", CenterLat: officeLat, CenterLng: officeLng, RadiusMeters: distance},
		}}
		shiftRepo := &fakeShiftRepo{shifts: map[int64]*models.Shift{
			1: {ID: 1, Name: "Morning", StartTime: "09:00", EndTime: "17:00"},
		}}
		svc = NewAttendanceService(newFakeAttendanceRepo(), zoneRepo, shiftRepo, nil, time.UTC)

		_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng+0.0004), now)
		assert.NoError(t, err)
	})

	t.Run("outside the zone is rejected with rounded distances", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckIn(7, checkInAt(officeLat+0.004, officeLng), now)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOutOfZone)

		var oozErr *OutOfZoneError
		require.ErrorAs(t, err, &oozErr)
		assert.Equal(t, int64(445), oozErr.DistanceMeters)
		assert.Equal(t, int64(50), oozErr.AllowedRadiusMeters)
	})

	t.Run("duplicate check-in conflicts with the open record id", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		first, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
		require.NoError(t, err)

		_, err = svc.CheckIn(7, checkInAt(officeLat, officeLng), now.Add(time.Hour))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

		var conflict *OpenSessionConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, first.ID, conflict.AttendanceID)
	})

	t.Run("uniqueness conflict wins over geometry rejection", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		first, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
		require.NoError(t, err)

		// Second attempt from far outside the zone still reports the conflict.
		_, err = svc.CheckIn(7, checkInAt(officeLat+5, officeLng), now.Add(time.Hour))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
		assert.NotErrorIs(t, err, ErrOutOfZone)

		var conflict *OpenSessionConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, first.ID, conflict.AttendanceID)
	})

	t.Run("open session yesterday does not block today", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
		require.NoError(t, err)

		_, err = svc.CheckIn(7, checkInAt(officeLat, officeLng), now.AddDate(0, 0, 1))
		assert.NoError(t, err)
	})

	t.Run("different users do not conflict", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
		require.NoError(t, err)
		_, err = svc.CheckIn(8, checkInAt(officeLat, officeLng), now)
		assert.NoError(t, err)
	})

	t.Run("unknown zone", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		req := checkInAt(officeLat, officeLng)
		req.ZoneID = ptr(int64(99))
		_, err := svc.CheckIn(7, req, now)
		assert.ErrorIs(t, err, ErrZoneNotFound)
	})

	t.Run("unknown shift", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		req := checkInAt(officeLat, officeLng)
		req.ShiftID = ptr(int64(99))
		_, err := svc.CheckIn(7, req, now)
		assert.ErrorIs(t, err, ErrShiftNotFound)
	})

	t.Run("missing position", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		req := checkInAt(officeLat, officeLng)
		req.Lat = nil
		_, err := svc.CheckIn(7, req, now)
		assert.ErrorIs(t, err, ErrAttendanceValidation)
	})

	t.Run("zone with non-positive radius fails as misconfigured", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		req := checkInAt(officeLat, officeLng)
		req.ZoneID = ptr(int64(2))
		_, err := svc.CheckIn(7, req, now)
		assert.ErrorIs(t, err, ErrZoneMisconfigured)
	})
}

func TestCheckInConcurrent(t *testing.T) {
	svc, _ := newTestAttendanceService(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	const attempts = 16
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	}
	assert.Equal(t, 1, successes)
}

// --- CheckOut ---

func TestCheckOut(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("closes the open session and rounds worked minutes", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
		require.NoError(t, err)

		// 42m30s rounds half away from zero to 43.
		out := now.Add(42*time.Minute + 30*time.Second)
		record, err := svc.CheckOut(7, CheckOutRequest{Lat: ptr(officeLat), Lng: ptr(officeLng)}, out)
		require.NoError(t, err)
		require.NotNil(t, record.CheckOutAt)
		assert.Equal(t, out, *record.CheckOutAt)
		require.NotNil(t, record.WorkedMinutes)
		assert.Equal(t, int64(43), *record.WorkedMinutes)
		assert.False(t, record.IsOpen())
	})

	t.Run("equal clock readings yield zero minutes", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
		require.NoError(t, err)

		record, err := svc.CheckOut(7, CheckOutRequest{Lat: ptr(officeLat), Lng: ptr(officeLng)}, now)
		require.NoError(t, err)
		require.NotNil(t, record.WorkedMinutes)
		assert.Equal(t, int64(0), *record.WorkedMinutes)
	})

	t.Run("position is recorded but never gated", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
		require.NoError(t, err)

		// Checking out far outside the zone still succeeds.
		record, err := svc.CheckOut(7, CheckOutRequest{Lat: ptr(officeLat + 5), Lng: ptr(officeLng)}, now.Add(time.Hour))
		require.NoError(t, err)
		require.NotNil(t, record.CheckOutLat)
		assert.Equal(t, officeLat+5, *record.CheckOutLat)
	})

	t.Run("no open session", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckOut(7, CheckOutRequest{Lat: ptr(officeLat), Lng: ptr(officeLng)}, now)
		assert.ErrorIs(t, err, ErrNoOpenSession)
	})

	t.Run("closed session is never reopened", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
		require.NoError(t, err)
		_, err = svc.CheckOut(7, CheckOutRequest{Lat: ptr(officeLat), Lng: ptr(officeLng)}, now.Add(time.Hour))
		require.NoError(t, err)

		_, err = svc.CheckOut(7, CheckOutRequest{Lat: ptr(officeLat), Lng: ptr(officeLng)}, now.Add(2*time.Hour))
		assert.ErrorIs(t, err, ErrNoOpenSession)
	})

	t.Run("missing position", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckOut(7, CheckOutRequest{}, now)
		assert.ErrorIs(t, err, ErrAttendanceValidation)
	})
}

// --- Projections ---

func TestMyToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("no record yields nil without error", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		record, err := svc.MyToday(7, now)
		assert.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("returns the closed record after check-out", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
		require.NoError(t, err)
		_, err = svc.CheckOut(7, CheckOutRequest{Lat: ptr(officeLat), Lng: ptr(officeLng)}, now.Add(8*time.Hour))
		require.NoError(t, err)

		record, err := svc.MyToday(7, now.Add(9*time.Hour))
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.False(t, record.IsOpen())
	})

	t.Run("yesterday's record is not today's", func(t *testing.T) {
		svc, _ := newTestAttendanceService(t)

		_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
		require.NoError(t, err)

		record, err := svc.MyToday(7, now.AddDate(0, 0, 1))
		assert.NoError(t, err)
		assert.Nil(t, record)
	})
}

func TestMyHistoryPaging(t *testing.T) {
	svc, _ := newTestAttendanceService(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
	require.NoError(t, err)

	t.Run("defaults applied", func(t *testing.T) {
		page, err := svc.MyHistory(7, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, DefaultHistoryPageSize, page.Size)
		assert.Equal(t, 1, page.Total)
		assert.Len(t, page.Items, 1)
	})

	t.Run("oversized page is clamped", func(t *testing.T) {
		page, err := svc.MyHistory(7, 1, 200)
		require.NoError(t, err)
		assert.Equal(t, MaxHistoryPageSize, page.Size)
	})

	t.Run("negative page is floored", func(t *testing.T) {
		page, err := svc.MyHistory(7, -3, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
	})
}

func TestAdminProjections(t *testing.T) {
	svc, _ := newTestAttendanceService(t)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := svc.CheckIn(7, checkInAt(officeLat, officeLng), now)
	require.NoError(t, err)
	_, err = svc.CheckIn(8, checkInAt(officeLat, officeLng), now.AddDate(0, 0, 1))
	require.NoError(t, err)

	t.Run("list filtered by user", func(t *testing.T) {
		records, err := svc.AdminList(models.AttendanceFilter{UserID: ptr(int64(7))})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, int64(7), records[0].UserID)
	})

	t.Run("daily sheet covers one day bucket", func(t *testing.T) {
		records, err := svc.AdminDaily(now)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, int64(7), records[0].UserID)
	})
}

// evaluateAdmission is exercised directly for center validation, which CheckIn
// only reaches with a persisted zone.
func TestEvaluateAdmission(t *testing.T) {
	t.Run("out-of-range center is misconfigured", func(t *testing.T) {
		zone := &models.Zone{ID: 3, CenterLat: 91, CenterLng: 0, RadiusMeters: 50}
		_, err := evaluateAdmission(zone, officeLat, officeLng)
		assert.ErrorIs(t, err, ErrZoneMisconfigured)
	})

	t.Run("zero distance is inside", func(t *testing.T) {
		zone := &models.Zone{ID: 1, CenterLat: officeLat, CenterLng: officeLng, RadiusMeters: 50}
		res, err := evaluateAdmission(zone, officeLat, officeLng)
		require.NoError(t, err)
		assert.True(t, res.Inside)
		assert.Equal(t, 0.0, res.DistanceMeters)
	})
}
