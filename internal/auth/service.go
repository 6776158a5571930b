package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates login failure. The message never reveals
// whether the username exists.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials and stamps the
// user's last login on success.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*AdminUser, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	now := time.Now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err == nil {
		user.LastLogin = now
	}
	return user, nil
}

// Resolve loads the identity and its roles for one request. The role set is
// re-derived from the join table on every call; a failure resolves to nil so
// downstream permission checks fail closed.
func (s *Service) Resolve(ctx context.Context, userID int64) (*ResolvedUser, error) {
	if userID == 0 {
		return nil, nil
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	roles, err := s.repo.RolesFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &ResolvedUser{Identity: *user, Roles: roles}, nil
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
