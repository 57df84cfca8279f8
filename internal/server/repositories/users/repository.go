// Package users declares the repository contract for account records and
// its storage backends.
package users

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// Update describes a partial profile change. Nil fields are left untouched.
type Update struct {
	Username     *string
	PasswordHash *string
}

// Repository defines operations over user accounts. Both backends enforce
// case-insensitive username uniqueness and assign ids monotonically from 1.
type Repository interface {
	// Create persists a new user and returns the full record with its
	// assigned id and timestamps. Returns common.ErrorAlreadyExists when
	// the username is taken under case folding.
	Create(ctx context.Context, username string, passwordHash string) (*models.User, error)

	// GetByID returns the user with the given id or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername performs a case-insensitive lookup and returns the full
	// record including the password hash, or common.ErrorNotFound. For
	// internal use by the services only.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Update merges the supplied fields into the record, refreshes
	// UpdatedAt and returns the result. Returns common.ErrorNotFound for an
	// unknown id, common.ErrorAlreadyExists when the new username collides
	// with a different user.
	Update(ctx context.Context, id int64, upd Update) (*models.User, error)
}
