package routes

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/techgyan/techgyan-backend/internal/config"
	"github.com/techgyan/techgyan-backend/internal/handlers"
	"github.com/techgyan/techgyan-backend/internal/middleware"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	GraphQL *handlers.GraphQLHandler
	WS      *handlers.WSHandler
	Upload  *handlers.UploadHandler
	Health  *handlers.HealthHandler
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers) {
	api := app.Group("/api")

	api.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
	}))

	api.Get("/health", h.Health.Health)

	// Credential endpoints get a tighter budget than the rest of the API.
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", h.Auth.Logout)

	api.Post("/graphql", h.GraphQL.Post)
	api.Get("/graphql", h.GraphQL.Get)

	api.Use("/graphql/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/graphql/ws", websocket.New(h.WS.Serve))

	api.Post("/upload", middleware.JWTProtected(cfg), h.Upload.Upload)
	api.Delete("/upload/:id", middleware.JWTProtected(cfg), h.Upload.Destroy)
}
