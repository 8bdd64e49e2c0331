package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SocialLink is one entry of a creator's ordered social link list,
// stored as a JSON column.
type SocialLink struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Follow notification preferences.
const (
	NotifyAll          = "all"
	NotifyPersonalized = "personalized"
	NotifyNone         = "none"
)

// Creator is a publishing persona bound to exactly one owning User.
// Handle is persisted lowercase, so its unique index is effectively
// case-insensitive.
type Creator struct {
	Key          string         `gorm:"size:24;uniqueIndex;primaryKey" json:"key"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Handle       string         `gorm:"size:180;not null;uniqueIndex" json:"handle"`
	Description  *string        `gorm:"type:text" json:"description"`
	ImageID      *string        `gorm:"size:40" json:"-"`
	Image        *Image         `gorm:"foreignKey:ImageID" json:"image,omitempty"`
	BannerID     *string        `gorm:"size:40" json:"-"`
	Banner       *Image         `gorm:"foreignKey:BannerID" json:"banner,omitempty"`
	Social       datatypes.JSON `json:"social"`
	ContactEmail *string        `gorm:"size:254" json:"contact_email"`
	UserKey      string         `gorm:"size:24;not null;index" json:"user_key"`
	User         *User          `gorm:"foreignKey:UserKey" json:"user,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	IsDeleted    bool           `gorm:"default:false" json:"is_deleted"`
	DeletedAt    *time.Time     `json:"deleted_at"`
}

func (Creator) TableName() string { return "creators" }

func (c *Creator) BeforeCreate(tx *gorm.DB) error {
	if c.Key == "" {
		c.Key = NewKey(CreatorKeySize)
	}
	return nil
}

// SocialLinks decodes the JSON social column. A broken column yields an
// empty list rather than an error; the data is cosmetic.
func (c *Creator) SocialLinks() []SocialLink {
	var links []SocialLink
	if len(c.Social) == 0 {
		return links
	}
	_ = json.Unmarshal(c.Social, &links)
	return links
}

// CreatorFollower joins a follower User to a Creator. At most one row
// per (creator, user) pair, enforced by the composite unique index.
type CreatorFollower struct {
	ID         string    `gorm:"size:40;primaryKey" json:"id"`
	CreatorKey string    `gorm:"size:24;not null;uniqueIndex:idx_creator_followers_pair" json:"creator_key"`
	Creator    *Creator  `gorm:"foreignKey:CreatorKey" json:"creator,omitempty"`
	UserKey    string    `gorm:"size:24;not null;uniqueIndex:idx_creator_followers_pair" json:"user_key"`
	User       *User     `gorm:"foreignKey:UserKey" json:"user,omitempty"`
	Notify     string    `gorm:"size:20;default:'all'" json:"notify"`
	CreatedAt  time.Time `json:"created_at"`
}

func (CreatorFollower) TableName() string { return "creator_followers" }

func (f *CreatorFollower) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = NewKey(RowKeySize)
	}
	return nil
}
