// Package httpapi exposes the server's operations over HTTP/JSON: the
// credential endpoints, the guarded profile endpoints, and the access-guard
// middleware protecting them.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/blacklist"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Server struct {
	app       *fiber.App
	address   string
	logger    logging.Logger
	auth      *services.AuthService
	users     *services.UsersService
	blacklist blacklist.Repository
	jwtSecret []byte
	validate  *validator.Validate
}

func NewServer(address string, l logging.Logger, as *services.AuthService, us *services.UsersService, br blacklist.Repository, secretKey string) *Server {
	s := &Server{
		app:       fiber.New(fiber.Config{DisableStartupMessage: true}),
		address:   address,
		logger:    l.With("module", "http_server"),
		auth:      as,
		users:     us,
		blacklist: br,
		jwtSecret: []byte(secretKey),
		validate:  validator.New(),
	}
	s.routes()
	return s
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Use(s.requestLogger())

	authGroup := s.app.Group("/auth")
	authGroup.Post("/signup", s.SignUp)
	authGroup.Post("/signin", s.SignIn)
	authGroup.Get("/logout", s.requireAuth(), s.Logout)

	usersGroup := s.app.Group("/users", s.requireAuth())
	usersGroup.Get("/whoami", s.Whoami)
	usersGroup.Patch("/profile", s.UpdateProfile)
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		_ = s.app.Shutdown()
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.app.Listen(s.address); err != nil {
		return err
	}

	return nil
}
