package services

import (
	"fmt"
	"strings"
	"testing"

	"geoattend_backend/internal/models"
	"geoattend_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}}
}

func (f *fakeUserRepo) CreateUser(_ repositories.SQLExecutor, user *models.User) (int64, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return 0, fmt.Errorf("%w: users_email_key", repositories.ErrDuplicateKey)
		}
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.users[user.ID] = &stored
	return user.ID, nil
}

func (f *fakeUserRepo) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) FindUserByID(id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUsers() ([]models.User, error) {
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateUserActive(_ repositories.SQLExecutor, id int64, active bool) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u.IsActive = active
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdateUserRole(_ repositories.SQLExecutor, id int64, role string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	u.Role = role
	copied := *u
	return &copied, nil
}

func TestSignUp(t *testing.T) {
	t.Run("normalizes email and defaults the role", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), nil)

		user, err := svc.SignUp(SignUpRequest{Name: "Asel", Email: "  Asel@Example.COM ", Password: "supersecret"})
		require.NoError(t, err)
		assert.Equal(t, "asel@example.com", user.Email)
		assert.Equal(t, models.RoleEmployee, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "supersecret", user.PasswordHash)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), nil)

		_, err := svc.SignUp(SignUpRequest{Email: "asel@example.com", Password: "supersecret"})
		require.NoError(t, err)
		_, err = svc.SignUp(SignUpRequest{Email: "ASEL@example.com", Password: "othersecret"})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("short password rejected", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), nil)

		_, err := svc.SignUp(SignUpRequest{Email: "asel@example.com", Password: "short"})
		assert.ErrorIs(t, err, ErrAuthValidation)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), nil)

		_, err := svc.SignUp(SignUpRequest{Email: "not-an-email", Password: "supersecret"})
		assert.ErrorIs(t, err, ErrAuthValidation)
	})

	t.Run("unrecognized role falls back to employee", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo(), nil)

		user, err := svc.SignUp(SignUpRequest{Email: "asel@example.com", Password: "supersecret", Role: "SUPERUSER"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleEmployee, user.Role)
	})
}

func TestLogin(t *testing.T) {
	setup := func(t *testing.T) (AuthService, *fakeUserRepo) {
		t.Helper()
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, nil)
		_, err := svc.SignUp(SignUpRequest{Name: "Asel", Email: "asel@example.com", Password: "supersecret", Role: models.RoleHR})
		require.NoError(t, err)
		return svc, repo
	}

	t.Run("valid credentials issue tokens", func(t *testing.T) {
		svc, _ := setup(t)

		resp, err := svc.Login(LoginRequest{Email: "Asel@Example.com", Password: "supersecret"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, models.RoleHR, resp.User.Role)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		svc, _ := setup(t)

		_, errWrongPassword := svc.Login(LoginRequest{Email: "asel@example.com", Password: "wrong-password"})
		_, errUnknownEmail := svc.Login(LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
		assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
		assert.Equal(t, strings.TrimSpace(errWrongPassword.Error()), strings.TrimSpace(errUnknownEmail.Error()))
	})

	t.Run("inactive user rejected", func(t *testing.T) {
		svc, repo := setup(t)

		_, err := repo.UpdateUserActive(nil, 1, false)
		require.NoError(t, err)

		_, err = svc.Login(LoginRequest{Email: "asel@example.com", Password: "supersecret"})
		assert.ErrorIs(t, err, ErrUserInactive)
	})
}
