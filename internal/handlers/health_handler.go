package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/techgyan/techgyan-backend/internal/database"
	"github.com/techgyan/techgyan-backend/internal/dto"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        "ok",
	}
	if err := database.Ping(); err != nil {
		resp.Status = "degraded"
		resp.DB = "unreachable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
