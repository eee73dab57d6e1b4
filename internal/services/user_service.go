package services

import (
	"database/sql"
	"errors"
	"fmt"

	"geoattend_backend/internal/models"
	"geoattend_backend/internal/repositories"
)

// --- Custom Service Errors for User Administration ---
var (
	ErrUserValidation = errors.New("user data validation error")
)

// --- User DTOs ---

// UpdateUserActiveRequest DTO
type UpdateUserActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// UpdateUserRoleRequest DTO
type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// --- UserService Interface ---
type UserService interface {
	GetUsers() ([]models.User, error)
	SetUserActive(userID int64, active bool) (*models.User, error)
	SetUserRole(userID int64, role string) (*models.User, error)
}

// --- userService Implementation ---
type userService struct {
	userRepo repositories.UserRepository
	db       *sql.DB
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo repositories.UserRepository, db *sql.DB) UserService {
	return &userService{userRepo: userRepo, db: db}
}

// GetUsers returns all user accounts for HR/Admin review.
func (s *userService) GetUsers() ([]models.User, error) {
	users, err := s.userRepo.GetUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// SetUserActive enables or disables an account.
func (s *userService) SetUserActive(userID int64, active bool) (*models.User, error) {
	user, err := s.userRepo.UpdateUserActive(s.db, userID, active)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update active flag for user %d: %w", userID, err)
	}
	return user, nil
}

// SetUserRole changes an account's role.
func (s *userService) SetUserRole(userID int64, role string) (*models.User, error) {
	if !models.IsValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role '%s'", ErrUserValidation, role)
	}
	user, err := s.userRepo.UpdateUserRole(s.db, userID, role)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role for user %d: %w", userID, err)
	}
	return user, nil
}
