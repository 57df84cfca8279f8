package httpapi

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/httpapi/response"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// CredentialsRequest is the body of the sign-up and sign-in endpoints.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateProfileRequest is the body of the profile update endpoint. At least
// one field must be supplied.
type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// UserResponse is the outward projection of a user record. It never carries
// the password hash.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (s *Server) SignUp(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	token, err := s.auth.SignUp(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return response.Conflict(c, "username is already taken, please choose another username")
		}
		s.logger.Error(c.UserContext(), "sign-up failed", "error", err.Error())
		return response.InternalServerError(c, "internal error")
	}

	s.logger.Info(c.UserContext(), "user registered", "username", req.Username)
	return response.Created(c, TokenResponse{AccessToken: token})
}

func (s *Server) SignIn(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	token, err := s.auth.SignIn(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return response.Unauthorized(c, "UNAUTHORIZED", "incorrect username or password")
		}
		s.logger.Error(c.UserContext(), "sign-in failed", "error", err.Error())
		return response.InternalServerError(c, "internal error")
	}

	return response.Success(c, TokenResponse{AccessToken: token})
}

// Logout revokes the exact token the guard admitted this request with.
func (s *Server) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals(localToken).(string)

	if err := s.auth.Logout(c.UserContext(), token); err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return response.Unauthorized(c, "TOKEN_INVALID", "invalid token")
		}
		s.logger.Error(c.UserContext(), "logout failed", "error", err.Error())
		return response.InternalServerError(c, "internal error")
	}

	return response.Success(c, nil)
}

func (s *Server) Whoami(c *fiber.Ctx) error {
	userID, _ := c.Locals(localUserID).(int64)

	user, err := s.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return response.NotFound(c, "user not found")
		}
		s.logger.Error(c.UserContext(), "whoami failed", "error", err.Error())
		return response.InternalServerError(c, "internal error")
	}

	return response.Success(c, toUserResponse(user))
}

func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals(localUserID).(int64)

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.Username == nil && req.Password == nil {
		return response.BadRequest(c, "at least one of username or password must be provided")
	}
	if err := s.validate.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	user, err := s.users.UpdateProfile(c.UserContext(), userID, services.ProfileUpdate{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return response.NotFound(c, "user not found")
		case errors.Is(err, common.ErrorAlreadyExists):
			return response.Conflict(c, "username is already taken, please choose another username")
		default:
			s.logger.Error(c.UserContext(), "profile update failed", "error", err.Error())
			return response.InternalServerError(c, "internal error")
		}
	}

	return response.Success(c, toUserResponse(user))
}
