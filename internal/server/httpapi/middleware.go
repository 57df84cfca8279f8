package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/httpapi/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

// Locals keys populated by the access guard for downstream handlers.
const (
	localUserID   = "user_id"
	localUsername = "username"
	localToken    = "token"
)

// requestLogger assigns a request id and logs method, path, status and
// duration for every request.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := uuid.NewString()
		c.Locals("request_id", reqID)

		err := c.Next()

		s.logger.Info(c.UserContext(), "request",
			"request_id", reqID,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start).String(),
		)
		return err
	}
}

// extractBearerToken pulls the token out of the Authorization header.
// Returns common.ErrorMissingToken when the header is absent, empty or not
// of the "Bearer <token>" form. The returned string is copied: c.Get hands
// out a view into fiber's per-request buffer, which is recycled after the
// handler returns, and the token outlives the request as a blacklist key.
func extractBearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(common.AuthHeaderName)
	if header == "" {
		return "", common.ErrorMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != common.BearerScheme || parts[1] == "" {
		return "", common.ErrorMissingToken
	}
	return utils.CopyString(parts[1]), nil
}

// checkToken admits a token or explains why not: common.ErrTokenRevoked when
// the blacklist holds it, common.ErrInvalidToken when verification fails.
// The blacklist check deliberately precedes verification, so a revoked token
// is rejected even while its signature would still verify.
func (s *Server) checkToken(ctx context.Context, token string) (*auth.Claims, error) {
	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}
	return auth.ParseToken(token, s.jwtSecret)
}

// requireAuth is the per-request access guard. On success the decoded
// identity and the raw token are attached to the request for downstream
// handlers.
func (s *Server) requireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := extractBearerToken(c)
		if err != nil {
			return response.Unauthorized(c, "MISSING_CREDENTIAL", "missing or malformed authorization header")
		}

		claims, err := s.checkToken(c.UserContext(), token)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrTokenRevoked):
				return response.Unauthorized(c, "TOKEN_REVOKED", "token has been revoked")
			case errors.Is(err, common.ErrInvalidToken):
				return response.Unauthorized(c, "TOKEN_INVALID", "invalid token")
			default:
				s.logger.Error(c.UserContext(), "token check failed", "error", err.Error())
				return response.InternalServerError(c, "failed to check token status")
			}
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localUsername, claims.Username)
		c.Locals(localToken, token)

		return c.Next()
	}
}
