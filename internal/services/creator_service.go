package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/techgyan/techgyan-backend/internal/apperr"
	"github.com/techgyan/techgyan-backend/internal/broadcast"
	"github.com/techgyan/techgyan-backend/internal/models"
	"github.com/techgyan/techgyan-backend/internal/viewer"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var handleRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

type CreatorService struct {
	db     *gorm.DB
	images *ImageService
	hub    *broadcast.Hub
}

func NewCreatorService(db *gorm.DB, images *ImageService, hub *broadcast.Hub) *CreatorService {
	return &CreatorService{db: db, images: images, hub: hub}
}

// CreatorPatch carries the merge-patch fields of an update. Nil means
// "leave unchanged".
type CreatorPatch struct {
	Name         *string
	Handle       *string
	Description  *string
	ContactEmail *string
	Social       []models.SocialLink
	Image        *ImageInput
	Banner       *ImageInput
}

func (s *CreatorService) Create(v viewer.Viewer, name, handle string) (*models.Creator, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	name = strings.TrimSpace(name)
	// Handles are unique case-insensitively; the stored form is always
	// lowercase so the unique index enforces that.
	handle = strings.ToLower(strings.TrimSpace(handle))
	if name == "" {
		return nil, apperr.Validation("creator name is required")
	}
	if !handleRe.MatchString(handle) {
		return nil, apperr.Validation("handle may contain only letters, numbers, _ . and - (3-64 chars)")
	}

	creator := models.Creator{
		Name:    name,
		Handle:  handle,
		UserKey: v.Key(),
	}
	if err := s.db.Create(&creator).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("handle %q is already taken", handle)
		}
		return nil, err
	}
	return &creator, nil
}

// Update applies a merge-patch to a creator the viewer owns.
func (s *CreatorService) Update(ctx context.Context, v viewer.Viewer, key string, patch CreatorPatch) (*models.Creator, error) {
	creator, err := s.owned(v, key)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("creator name cannot be empty")
		}
		creator.Name = name
	}
	if patch.Handle != nil {
		handle := strings.ToLower(strings.TrimSpace(*patch.Handle))
		if !handleRe.MatchString(handle) {
			return nil, apperr.Validation("handle may contain only letters, numbers, _ . and - (3-64 chars)")
		}
		creator.Handle = handle
	}
	if patch.Description != nil {
		creator.Description = patch.Description
	}
	if patch.ContactEmail != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.ContactEmail))
		creator.ContactEmail = &email
	}
	if patch.Social != nil {
		raw, err := json.Marshal(patch.Social)
		if err != nil {
			return nil, apperr.Validation("social links are not serializable")
		}
		creator.Social = datatypes.JSON(raw)
	}
	if patch.Image != nil {
		img, err := s.images.Resolve(ctx, *patch.Image)
		if err != nil {
			return nil, err
		}
		if img != nil {
			creator.ImageID = &img.ID
			creator.Image = img
		} else if patch.Image.Action == ImageActionDelete {
			creator.ImageID = nil
			creator.Image = nil
		}
	}
	if patch.Banner != nil {
		img, err := s.images.Resolve(ctx, *patch.Banner)
		if err != nil {
			return nil, err
		}
		if img != nil {
			creator.BannerID = &img.ID
			creator.Banner = img
		} else if patch.Banner.Action == ImageActionDelete {
			creator.BannerID = nil
			creator.Banner = nil
		}
	}

	if err := s.db.Save(creator).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("handle %q is already taken", creator.Handle)
		}
		return nil, err
	}
	return creator, nil
}

// Follow toggles the viewer's follow relation on a creator. It returns
// the creator, whether the viewer now follows it, and the notification
// preference of the surviving row (empty after an unfollow).
func (s *CreatorService) Follow(v viewer.Viewer, creatorKey, notify string) (*models.Creator, bool, string, error) {
	if !v.Authenticated() {
		return nil, false, "", apperr.Authorization("authentication required")
	}
	creator, err := s.Get(creatorKey)
	if err != nil {
		return nil, false, "", err
	}
	if notify == "" {
		notify = models.NotifyAll
	}
	switch notify {
	case models.NotifyAll, models.NotifyPersonalized, models.NotifyNone:
	default:
		return nil, false, "", apperr.Validation("unknown notify preference %q", notify)
	}

	following := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.CreatorFollower
		err := tx.Where("creator_key = ? AND user_key = ?", creator.Key, v.Key()).First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.CreatorFollower{CreatorKey: creator.Key, UserKey: v.Key(), Notify: notify}
			if err := tx.Create(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict("follow state changed concurrently")
				}
				return err
			}
			following = true
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, "", err
	}
	if !following {
		notify = ""
	}
	return creator, following, notify, nil
}

// Get fetches a creator by key; soft-deleted creators resolve as absent.
func (s *CreatorService) Get(key string) (*models.Creator, error) {
	var creator models.Creator
	err := s.db.Preload("Image").Preload("Banner").
		Where("key = ? AND is_deleted = ?", key, false).
		First(&creator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("creator %q not found", key)
	}
	if err != nil {
		return nil, err
	}
	return &creator, nil
}

// GetByHandle resolves a creator by handle, case-insensitively.
func (s *CreatorService) GetByHandle(handle string) (*models.Creator, error) {
	var creator models.Creator
	err := s.db.Preload("Image").Preload("Banner").
		Where("LOWER(handle) = ? AND is_deleted = ?", strings.ToLower(handle), false).
		First(&creator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("creator with handle %q not found", handle)
	}
	if err != nil {
		return nil, err
	}
	return &creator, nil
}

// Delete soft-deletes a creator the viewer owns.
func (s *CreatorService) Delete(v viewer.Viewer, key string) (*models.Creator, error) {
	creator, err := s.owned(v, key)
	if err != nil {
		return nil, err
	}
	now := nowPtr()
	creator.IsDeleted = true
	creator.DeletedAt = now
	if err := s.db.Save(creator).Error; err != nil {
		return nil, err
	}
	return creator, nil
}

func (s *CreatorService) FollowersCount(creatorKey string) (int64, error) {
	var n int64
	err := s.db.Model(&models.CreatorFollower{}).
		Where("creator_key = ?", creatorKey).Count(&n).Error
	return n, err
}

// FollowedBy reports whether the viewer follows the creator; anonymous
// viewers never do.
func (s *CreatorService) FollowedBy(v viewer.Viewer, creatorKey string) (bool, error) {
	if !v.Authenticated() {
		return false, nil
	}
	var n int64
	err := s.db.Model(&models.CreatorFollower{}).
		Where("creator_key = ? AND user_key = ?", creatorKey, v.Key()).
		Count(&n).Error
	return n > 0, err
}

// Mine lists the creators owned by the viewer.
func (s *CreatorService) Mine(v viewer.Viewer) ([]models.Creator, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	var creators []models.Creator
	err := s.db.Preload("Image").Preload("Banner").
		Where("user_key = ? AND is_deleted = ?", v.Key(), false).
		Order("created_at ASC").Find(&creators).Error
	return creators, err
}

// owned loads a creator and enforces that the viewer owns it.
func (s *CreatorService) owned(v viewer.Viewer, key string) (*models.Creator, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	creator, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if creator.UserKey != v.Key() {
		return nil, apperr.Authorization("you do not manage this creator")
	}
	return creator, nil
}
