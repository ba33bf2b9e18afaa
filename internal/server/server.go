package server

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/mention-me/AISlackBot/internal/bootstrap"
	"github.com/mention-me/AISlackBot/internal/config"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		// Slack event payloads are small; no need for a generous body limit.
		BodyLimit: 1 * 1024 * 1024,
	})

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.SlackController.RegisterRoutes(app)
}
