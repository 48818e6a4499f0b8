package handler

import (
	"errors"
	"time"

	"github.com/arturoeanton/devmind-gateway/internal/auth"
	"github.com/arturoeanton/devmind-gateway/internal/middleware"
	"github.com/arturoeanton/devmind-gateway/internal/port"
	"github.com/arturoeanton/devmind-gateway/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	AppName     string
	AuthService *service.AuthService
	Tokens      *auth.TokenService
	Store       port.CredentialStore
	Forwarder   port.Forwarder
	Audit       middleware.AuditWriter // nil disables audit logging
	AITimeout   time.Duration
	CORSOrigin  string
}

// NewApp builds the Fiber application: global middleware, public auth
// routes, auth-gated repo and AI routes, health check, and the JSON 404
// catch-all. Unhandled errors render as 500 {error: message}.
func NewApp(deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      deps.AppName,
		ErrorHandler: jsonErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{deps.CORSOrigin},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))
	if deps.Audit != nil {
		app.Use(middleware.Audit(deps.Audit))
	}

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "gateway"})
	})

	NewAuthHandler(deps.AuthService).Register(app.Group("/api/auth"))

	gate := middleware.AuthGate(deps.Tokens, deps.Store)
	NewRepoHandler(deps.Forwarder, deps.AITimeout).Register(app.Group("/api/repo", gate))
	NewAIHandler(deps.Forwarder, deps.AITimeout).Register(app.Group("/api/ai", gate))

	// JSON 404 for anything unmatched.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})

	return app
}

func jsonErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
