package services

import (
	"database/sql"
	"errors"
	"fmt"

	"geoattend_backend/internal/models"
	"geoattend_backend/internal/repositories"
	"geoattend_backend/pkg/utils"
)

// --- Custom Service Errors for Shifts ---
var (
	ErrShiftValidation = errors.New("shift data validation error")
)

// --- Shift DTOs ---

// CreateShiftRequest DTO
type CreateShiftRequest struct {
	Name      string `json:"name" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// UpdateShiftRequest DTO; nil fields are left unchanged.
type UpdateShiftRequest struct {
	Name      *string `json:"name"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// --- ShiftService Interface ---
type ShiftService interface {
	CreateShift(req CreateShiftRequest) (*models.Shift, error)
	GetShifts() ([]models.Shift, error)
	UpdateShift(shiftID int64, req UpdateShiftRequest) (*models.Shift, error)
	DeleteShift(shiftID int64) error
}

// --- shiftService Implementation ---
type shiftService struct {
	shiftRepo repositories.ShiftRepository
	db        *sql.DB
}

// NewShiftService creates a new instance of ShiftService.
func NewShiftService(shiftRepo repositories.ShiftRepository, db *sql.DB) ShiftService {
	return &shiftService{shiftRepo: shiftRepo, db: db}
}

// CreateShift validates and persists a new shift.
func (s *shiftService) CreateShift(req CreateShiftRequest) (*models.Shift, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name is required", ErrShiftValidation)
	}
	if !utils.IsValidTimeOfDay(req.StartTime) || !utils.IsValidTimeOfDay(req.EndTime) {
		return nil, fmt.Errorf("%w: start_time and end_time must be HH:MM", ErrShiftValidation)
	}

	shift := &models.Shift{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if _, err := s.shiftRepo.CreateShift(s.db, shift); err != nil {
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}
	return shift, nil
}

// GetShifts returns all shifts.
func (s *shiftService) GetShifts() ([]models.Shift, error) {
	shifts, err := s.shiftRepo.GetShifts()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	return shifts, nil
}

// UpdateShift applies a partial update to an existing shift.
func (s *shiftService) UpdateShift(shiftID int64, req UpdateShiftRequest) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to fetch shift %d: %w", shiftID, err)
	}

	if req.Name != nil && !utils.IsEmpty(*req.Name) {
		shift.Name = *req.Name
	}
	if req.StartTime != nil {
		if !utils.IsValidTimeOfDay(*req.StartTime) {
			return nil, fmt.Errorf("%w: start_time must be HH:MM", ErrShiftValidation)
		}
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		if !utils.IsValidTimeOfDay(*req.EndTime) {
			return nil, fmt.Errorf("%w: end_time must be HH:MM", ErrShiftValidation)
		}
		shift.EndTime = *req.EndTime
	}

	if err := s.shiftRepo.UpdateShift(s.db, shift); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to update shift %d: %w", shiftID, err)
	}
	return shift, nil
}

// DeleteShift removes a shift.
func (s *shiftService) DeleteShift(shiftID int64) error {
	if err := s.shiftRepo.DeleteShift(s.db, shiftID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete shift %d: %w", shiftID, err)
	}
	return nil
}
