package services

import (
	"errors"
	"strings"
	"time"

	"github.com/techgyan/techgyan-backend/internal/apperr"
	"github.com/techgyan/techgyan-backend/internal/models"
	"gorm.io/gorm"
)

func nowPtr() *time.Time {
	t := time.Now()
	return &t
}

// getOrCreateTags resolves tag names to rows, creating missing ones.
// Names are trimmed; empty and duplicate names are skipped.
func getOrCreateTags(tx *gorm.DB, names []string) ([]*models.Tag, error) {
	seen := make(map[string]struct{}, len(names))
	tags := make([]*models.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		var tag models.Tag
		err := tx.Where("name = ?", name).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name}
			if err := tx.Create(&tag).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
						return nil, err
					}
				} else {
					return nil, err
				}
			}
		} else if err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, nil
}

// findCategory resolves a category by exact name. Unlike tags, an
// unknown category is an error, not an implicit create.
func findCategory(tx *gorm.DB, name string) (*models.Category, error) {
	var cat models.Category
	err := tx.Where("name = ?", name).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("category %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}
