package rest

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Ak2k04/Life-Tracker/internal/logging"
)

const (
	limiterWindow    = 15 * time.Minute
	globalLimiterMax = 1000
	authLimiterMax   = 10

	shutdownTimeout = 5 * time.Second
)

type RestServer struct {
	app       *fiber.App
	address   string
	users     UserService
	resets    PasswordResetService
	logger    logging.Logger
	jwtSecret []byte
}

func NewRestServer(address string, l logging.Logger, us UserService, rs PasswordResetService, secretKey string) *RestServer {
	s := &RestServer{
		address:   address,
		users:     us,
		resets:    rs,
		logger:    l.With("module", "rest_server"),
		jwtSecret: []byte(secretKey),
	}

	s.app = fiber.New(fiber.Config{
		ErrorHandler: s.errorHandler,
	})
	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *RestServer) setupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(helmet.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	s.app.Use(limiter.New(limiter.Config{
		Max:        globalLimiterMax,
		Expiration: limiterWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return respondError(c, fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))
}

func (s *RestServer) setupRoutes() {
	s.app.Get("/", s.banner)

	api := s.app.Group("/api")
	api.Get("/health", s.health)

	// The auth group keeps its own tighter budget against password guessing
	// and mail flooding.
	authGroup := api.Group("/auth", limiter.New(limiter.Config{
		Max:        authLimiterMax,
		Expiration: limiterWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return respondError(c, fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))
	authGroup.Post("/register", s.register)
	authGroup.Post("/login", s.login)
	authGroup.Get("/me", s.requireAuth, s.me)
	authGroup.Post("/forgot-password", s.forgotPassword)
	authGroup.Post("/verify-otp", s.verifyOTP)
	authGroup.Get("/reset-password/validate", s.validateResetLink)
	authGroup.Post("/reset-password", s.resetPassword)

	s.app.Use(func(c *fiber.Ctx) error {
		return respondError(c, fiber.StatusNotFound, "Route not found")
	})
}

// errorHandler is the last stop for anything a handler did not map itself.
func (s *RestServer) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return respondError(c, fiberErr.Code, fiberErr.Message)
	}

	s.logger.Error(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	return respondError(c, fiber.StatusInternalServerError, "Internal server error")
}

func (s *RestServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
	return s.app.Listen(s.address)
}
