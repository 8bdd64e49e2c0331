package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/techgyan/techgyan-backend/internal/dto"
	"github.com/techgyan/techgyan-backend/internal/media"
)

type UploadHandler struct {
	store media.Store
}

func NewUploadHandler(store media.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload forwards a multipart file to the media store and returns the
// stored asset's descriptor.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "a file field is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "unreadable file")
	}
	defer file.Close()

	desc, err := h.store.Upload(c.UserContext(), fileHeader.Filename, file)
	if err != nil {
		slog.Error("media upload failed", "error", err, "filename", fileHeader.Filename)
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: true, Message: "media store upload failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.UploadResponse{
		URL:      desc.URL,
		AssetID:  desc.AssetID,
		Provider: desc.Provider,
	})
}

// Destroy removes a stored asset by its id.
func (h *UploadHandler) Destroy(c *fiber.Ctx) error {
	assetID := c.Params("id")
	if assetID == "" {
		return badRequest(c, "asset id is required")
	}
	if err := h.store.Destroy(c.UserContext(), assetID); err != nil {
		slog.Error("media destroy failed", "error", err, "asset_id", assetID)
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: true, Message: "media store destroy failed"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
