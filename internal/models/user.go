package models

import (
	"regexp"
	"time"

	"gorm.io/gorm"
)

// UsernameRe is the accepted username shape: letters, digits and _ only.
var UsernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

type User struct {
	Key       string  `gorm:"size:24;primaryKey" json:"key"`
	Username  string  `gorm:"size:190;not null;uniqueIndex" json:"username"`
	Email     string  `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Password  string  `gorm:"not null" json:"-"`
	FirstName string  `gorm:"size:30" json:"first_name"`
	LastName  string  `gorm:"size:150" json:"last_name"`
	ImageID   *string `gorm:"size:40" json:"-"`
	Image     *Image  `gorm:"foreignKey:ImageID" json:"image,omitempty"`

	// Bookmark relations. The join tables carry a composite primary key
	// on (user_key, story_key) / (user_key, post_key), so the save
	// toggle is race-safe at the storage layer.
	SavedStories []*Story `gorm:"many2many:user_saved_stories;foreignKey:Key;joinForeignKey:UserKey;References:Key;joinReferences:StoryKey" json:"-"`
	SavedPosts   []*Post  `gorm:"many2many:user_saved_posts;foreignKey:Key;joinForeignKey:UserKey;References:Key;joinReferences:PostKey" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Key == "" {
		u.Key = NewKey(UserKeySize)
	}
	return nil
}

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type RefreshToken struct {
	ID        string    `gorm:"size:40;primaryKey" json:"id"`
	UserKey   string    `gorm:"size:24;not null;index" json:"user_key"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserKey" json:"-"`
}

func (r *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewKey(RowKeySize)
	}
	return nil
}
