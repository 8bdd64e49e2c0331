package services

import (
	"context"
	"log/slog"

	"github.com/techgyan/techgyan-backend/internal/apperr"
	"github.com/techgyan/techgyan-backend/internal/media"
	"github.com/techgyan/techgyan-backend/internal/models"
	"gorm.io/gorm"
)

// ImageInput is a client-supplied image action: create a descriptor,
// patch an existing one, or delete it (which also destroys the stored
// asset, best-effort).
type ImageInput struct {
	Action   string
	ID       *string
	URL      *string
	Provider *string
	Alt      *string
	Caption  *string
}

const (
	ImageActionCreate = "create"
	ImageActionUpdate = "update"
	ImageActionDelete = "delete"
)

type ImageService struct {
	db    *gorm.DB
	store media.Store
}

func NewImageService(db *gorm.DB, store media.Store) *ImageService {
	return &ImageService{db: db, store: store}
}

// Resolve applies an image action and returns the resulting descriptor,
// nil after a delete or an unrecognized action.
func (s *ImageService) Resolve(ctx context.Context, in ImageInput) (*models.Image, error) {
	switch in.Action {
	case ImageActionCreate:
		return s.create(in)
	case ImageActionUpdate:
		return s.update(in)
	case ImageActionDelete:
		return nil, s.delete(ctx, in)
	default:
		return nil, nil
	}
}

func (s *ImageService) create(in ImageInput) (*models.Image, error) {
	if in.URL == nil || *in.URL == "" || in.Provider == nil || *in.Provider == "" {
		return nil, apperr.Validation("image url and provider are required")
	}
	img := &models.Image{
		URL:      *in.URL,
		Provider: *in.Provider,
		Alt:      in.Alt,
		Caption:  in.Caption,
	}
	if err := s.db.Create(img).Error; err != nil {
		return nil, err
	}
	return img, nil
}

func (s *ImageService) update(in ImageInput) (*models.Image, error) {
	if in.ID == nil {
		return nil, apperr.Validation("image id is required")
	}
	var img models.Image
	if err := s.db.Where("id = ?", *in.ID).First(&img).Error; err != nil {
		return nil, apperr.NotFound("image not found")
	}
	if in.URL != nil && *in.URL != "" {
		img.URL = *in.URL
	}
	if in.Provider != nil && *in.Provider != "" {
		img.Provider = *in.Provider
	}
	if in.Alt != nil {
		img.Alt = in.Alt
	}
	if in.Caption != nil {
		img.Caption = in.Caption
	}
	if err := s.db.Save(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *ImageService) delete(ctx context.Context, in ImageInput) error {
	if in.ID == nil {
		return apperr.Validation("image id is required")
	}
	var img models.Image
	if err := s.db.Where("id = ?", *in.ID).First(&img).Error; err != nil {
		return apperr.NotFound("image not found")
	}
	// The stored asset is destroyed best-effort; a media store outage
	// must not keep the row alive.
	if s.store != nil {
		if err := s.store.Destroy(ctx, img.URL); err != nil {
			slog.Error("media destroy failed", "error", err, "image_id", img.ID)
		}
	}
	return s.db.Delete(&img).Error
}
