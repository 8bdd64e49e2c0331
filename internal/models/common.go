package models

import (
	"time"

	"gorm.io/gorm"
)

// Image is a provider-tagged media descriptor. The binary itself lives
// in the external media store; we only keep the URL and provider id.
type Image struct {
	ID        string    `gorm:"size:40;primaryKey" json:"id"`
	URL       string    `gorm:"size:255;not null" json:"url"`
	Alt       *string   `gorm:"size:255" json:"alt"`
	Caption   *string   `gorm:"size:500" json:"caption"`
	Provider  string    `gorm:"size:255;default:'cloudinary'" json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Image) TableName() string { return "images" }

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = NewKey(RowKeySize)
	}
	return nil
}

type Tag struct {
	ID          string    `gorm:"size:40;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Tag) TableName() string { return "tags" }

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewKey(RowKeySize)
	}
	return nil
}

type Category struct {
	ID          string    `gorm:"size:40;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewKey(RowKeySize)
	}
	return nil
}
