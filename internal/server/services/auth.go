// Package services contains the server's business-logic layer, orchestrating
// repositories and credential primitives behind storage-agnostic interfaces.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/blacklist"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
)

// AuthService orchestrates sign-up, sign-in and logout. It owns no state of
// its own, only injected references to the repositories.
type AuthService struct {
	users                       users.Repository
	blacklist                   blacklist.Repository
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewAuthService(users users.Repository, blacklist blacklist.Repository, cfg *config.Config) *AuthService {
	return &AuthService{
		users:                       users,
		blacklist:                   blacklist,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.accessTokenValidityDuration)
}

// SignUp registers a new account and returns its first access token. The
// token is issued only after the user row is persisted, so a failed create
// never leaves a live token behind.
func (s *AuthService) SignUp(ctx context.Context, username string, password string) (string, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return "", common.ErrorInternal
	}

	user, err := s.users.Create(ctx, username, passwordHash)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", common.ErrorAlreadyExists
		}
		return "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", common.ErrorInternal
	}

	return token, nil
}

// SignIn exchanges credentials for an access token. Unknown username and
// wrong password are indistinguishable to the caller: both come back as
// common.ErrorUnauthorized, resisting username enumeration.
func (s *AuthService) SignIn(ctx context.Context, username string, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return "", common.ErrorUnauthorized
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", common.ErrorInternal
	}

	return token, nil
}

// Logout blacklists the presented token. The token is decoded without
// signature or expiry checks: revoking an expired or otherwise invalid-but-
// parsable token is allowed, only unparsable input is rejected.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if _, err := auth.DecodeToken(token); err != nil {
		return common.ErrInvalidToken
	}

	if err := s.blacklist.Revoke(ctx, token); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}

	return nil
}
