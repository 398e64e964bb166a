// Package auth handles admin credential login and token issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminUser is a stored admin account.
type AdminUser struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// ErrAdminNotFound is returned when no admin matches the username.
var ErrAdminNotFound = errors.New("admin not found")

// Repository handles admin account persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new auth Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetByUsername fetches an admin account by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*AdminUser, error) {
	u := &AdminUser{}
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, role, created_at
		 FROM admin_users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return u, nil
}

// CreateIfMissing inserts an admin account unless the username already exists.
func (r *Repository) CreateIfMissing(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO admin_users (username, password_hash, role)
		 VALUES ($1, $2, 'ADMIN')
		 ON CONFLICT (username) DO NOTHING`,
		username, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
