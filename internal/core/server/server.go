package server

import (
	"fmt"
	"net/http"
	"path/filepath"

	"ecu-stand/internal/core/config"
	"ecu-stand/internal/core/logger"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "ecu-stand/docs/swagger"
)

// bodyLimit caps JSON request bodies at 200 KB.
const bodyLimit = 200 * 1024

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig
}

// New creates a new Server instance with configured middleware.
func New(cfg *config.AppConfig) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "ecu-stand",
		BodyLimit:             bodyLimit,
	})

	app.Use(requestid.New(requestid.Config{
		Header: "X-Ray-ID",
	}))

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Admin-Passphrase",
	}))

	app.Get("/health", Health)
	app.Get("/swagger/*", swagger.HandlerDefault)

	return &Server{
		App: app,
		cfg: cfg,
	}
}

// Health handles GET /health.
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /health [get]
func Health(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
}

// ServeSPA serves the prebuilt single-page application. It must be
// registered after every API route: unknown paths fall back to index.html.
func (s *Server) ServeSPA() {
	s.App.Static("/", s.cfg.StaticDir)

	index := filepath.Join(s.cfg.StaticDir, "index.html")
	s.App.Get("*", func(c *fiber.Ctx) error {
		return c.SendFile(index)
	})
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server",
		zap.String("address", addr),
		zap.String("static_dir", s.cfg.StaticDir),
	)
	return s.App.Listen(addr)
}
