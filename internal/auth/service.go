package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumen/gallery/internal/config"
)

// ErrInvalidCredentials is returned for an unknown username or wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Repo abstracts admin account persistence for the service.
type Repo interface {
	GetByUsername(ctx context.Context, username string) (*AdminUser, error)
	CreateIfMissing(ctx context.Context, username, passwordHash string) error
}

// Service contains business logic for admin authentication.
type Service struct {
	repo Repo
	cfg  *config.Config
}

// NewService creates a new auth Service.
func NewService(repo Repo, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// EnsureBootstrapAdmin creates the configured admin account on startup if it
// does not exist yet. Idempotent; an existing account is never overwritten.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	return s.repo.CreateIfMissing(ctx, s.cfg.AdminUsername, string(hash))
}

// Login verifies the credentials and issues a signed admin JWT.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ErrAdminNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("look up admin: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(u.ID, u.Username, u.Role)
}

// issueToken creates a signed JWT for the given admin.
func (s *Service) issueToken(adminID, username, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      adminID,
		"username": username,
		"role":     role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(30 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
