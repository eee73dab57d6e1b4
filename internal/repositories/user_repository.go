package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"geoattend_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) (int64, error)
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(userID int64) (*models.User, error)
	GetUsers() ([]models.User, error)
	UpdateUserActive(executor SQLExecutor, userID int64, active bool) (*models.User, error)
	UpdateUserRole(executor SQLExecutor, userID int64, role string) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new user into the database.
// It expects an SQLExecutor which can be a *sql.DB or *sql.Tx.
func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (name, email, password_hash, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	currentTime := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = currentTime
	}
	user.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}

// FindUserByEmail retrieves a user by their email address.
func (r *userRepository) FindUserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by email %s: %v", ErrDatabaseError, email, err)
	}
	return user, nil
}

// FindUserByID retrieves a user by their ID.
func (r *userRepository) FindUserByID(userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}

// GetUsers retrieves all users ordered by creation time.
func (r *userRepository) GetUsers() ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.PasswordHash,
			&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, nil
}

// UpdateUserActive sets the active flag of a user and returns the updated row.
func (r *userRepository) UpdateUserActive(executor SQLExecutor, userID int64, active bool) (*models.User, error) {
	query := `UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3
	          RETURNING ` + userColumns
	user, err := scanUser(executor.QueryRow(query, active, time.Now(), userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating active flag for user %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}

// UpdateUserRole sets the role of a user and returns the updated row.
func (r *userRepository) UpdateUserRole(executor SQLExecutor, userID int64, role string) (*models.User, error) {
	query := `UPDATE users SET role = $1, updated_at = $2 WHERE id = $3
	          RETURNING ` + userColumns
	user, err := scanUser(executor.QueryRow(query, role, time.Now(), userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating role for user %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}
