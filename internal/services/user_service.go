package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ecelabs/lims-backend/internal/auth"
	"github.com/ecelabs/lims-backend/internal/models"
	repo "github.com/ecelabs/lims-backend/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService handles registration and credential checks. Identity
// establishment itself (tokens) lives in the auth package; user rows are
// governed tables and fall under the storage backstop like everything else.
type UserService struct {
	store repo.Store
	tm    *auth.TokenManager
}

func NewUserService(store repo.Store, tm *auth.TokenManager) *UserService {
	return &UserService{store: store, tm: tm}
}

func (s *UserService) Register(ctx context.Context, username, email, password, role string) (models.User, error) {
	u := models.User{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email), Role: role}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.store.Users().Create(ctx, u.Username, u.Email, hash, u.Role)
}

// Login verifies credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, email, password string) (access, refresh string, err error) {
	u, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return "", "", ErrInvalidCredentials
	}
	access, refresh, _, err = s.tm.GeneratePair(u.ID, u.Email, u.Role)
	return access, refresh, err
}
