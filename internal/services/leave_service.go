package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"geoattend_backend/internal/models"
	"geoattend_backend/internal/repositories"
)

// --- Custom Service Errors for Leaves ---
var (
	ErrLeaveNotFound   = errors.New("leave request not found")
	ErrLeaveValidation = errors.New("leave data validation error")
)

// --- Leave DTOs ---

// ApplyLeaveRequest DTO. Dates are ISO "2006-01-02" strings.
type ApplyLeaveRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Reason string `json:"reason"`
}

// ReviewLeaveRequest DTO
type ReviewLeaveRequest struct {
	Status string `json:"status" binding:"required"` // APPROVED or REJECTED
}

const leaveDateLayout = "2006-01-02"

// --- LeaveService Interface ---
type LeaveService interface {
	ApplyLeave(userID int64, req ApplyLeaveRequest) (*models.Leave, error)
	GetMyLeaves(userID int64) ([]models.Leave, error)
	GetLeaves() ([]models.Leave, error)
	ReviewLeave(leaveID int64, reviewerID int64, req ReviewLeaveRequest) (*models.Leave, error)
}

// --- leaveService Implementation ---
type leaveService struct {
	leaveRepo repositories.LeaveRepository
	db        *sql.DB
}

// NewLeaveService creates a new instance of LeaveService.
func NewLeaveService(leaveRepo repositories.LeaveRepository, db *sql.DB) LeaveService {
	return &leaveService{leaveRepo: leaveRepo, db: db}
}

// ApplyLeave validates and files a new leave request in PENDING state.
func (s *leaveService) ApplyLeave(userID int64, req ApplyLeaveRequest) (*models.Leave, error) {
	from, err := time.Parse(leaveDateLayout, req.From)
	if err != nil {
		return nil, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrLeaveValidation)
	}
	to, err := time.Parse(leaveDateLayout, req.To)
	if err != nil {
		return nil, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrLeaveValidation)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to must not be before from", ErrLeaveValidation)
	}

	leave := &models.Leave{
		UserID:   userID,
		FromDate: from,
		ToDate:   to,
		Reason:   req.Reason,
		Status:   models.LeaveStatusPending,
	}
	if _, err := s.leaveRepo.CreateLeave(s.db, leave); err != nil {
		return nil, fmt.Errorf("failed to create leave request: %w", err)
	}
	return leave, nil
}

// GetMyLeaves returns the caller's leave requests, newest first.
func (s *leaveService) GetMyLeaves(userID int64) ([]models.Leave, error) {
	leaves, err := s.leaveRepo.GetLeavesByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaves for user %d: %w", userID, err)
	}
	return leaves, nil
}

// GetLeaves returns all leave requests for HR/Admin review, newest first.
func (s *leaveService) GetLeaves() ([]models.Leave, error) {
	leaves, err := s.leaveRepo.GetLeaves()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaves: %w", err)
	}
	return leaves, nil
}

// ReviewLeave moves a leave request to APPROVED or REJECTED and records the
// reviewer.
func (s *leaveService) ReviewLeave(leaveID int64, reviewerID int64, req ReviewLeaveRequest) (*models.Leave, error) {
	if req.Status != models.LeaveStatusApproved && req.Status != models.LeaveStatusRejected {
		return nil, fmt.Errorf("%w: status must be APPROVED or REJECTED", ErrLeaveValidation)
	}

	leave, err := s.leaveRepo.UpdateLeaveStatus(s.db, leaveID, req.Status, reviewerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, fmt.Errorf("failed to update status for leave %d: %w", leaveID, err)
	}
	return leave, nil
}
