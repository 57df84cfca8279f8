package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
)

// ProfileUpdate describes the optional fields a user may change on their
// own profile. A supplied password arrives in plaintext and is hashed here
// before it reaches any repository.
type ProfileUpdate struct {
	Username *string
	Password *string
}

// UsersService serves the guarded profile endpoints.
type UsersService struct {
	users users.Repository
}

func NewUsersService(users users.Repository) *UsersService {
	return &UsersService{users: users}
}

// GetByID returns the user record for the given id.
func (s *UsersService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile merges the supplied fields into the user record,
// propagating common.ErrorNotFound and common.ErrorAlreadyExists from the
// repository.
func (s *UsersService) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*models.User, error) {
	repoUpd := users.Update{Username: upd.Username}

	if upd.Password != nil {
		passwordHash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return nil, common.ErrorInternal
		}
		repoUpd.PasswordHash = &passwordHash
	}

	user, err := s.users.Update(ctx, id, repoUpd)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return user, nil
}
