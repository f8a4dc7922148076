// Package users declares the repository contract for the user store. The
// repository exclusively owns User mutation; services never touch the table
// directly.
package users

import (
	"context"

	"github.com/quickbyte/quickbyte-auth/internal/server/models"
)

type Repository interface {
	// Create inserts a new user row. The email unique constraint is the
	// authoritative duplicate guard; a violation is returned as
	// common.ErrorEmailAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns common.ErrorNotFound when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns common.ErrorNotFound when the id is unknown.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// ExistsByEmail is a fast-path existence probe only; Create remains the
	// race-safe guard.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdatePasswordHash replaces the stored password hash in one statement.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// SetEmailVerified flips the verification flag in one statement.
	SetEmailVerified(ctx context.Context, userID string, verified bool) error
}
