package models

import (
	"time"

	"gorm.io/gorm"
)

// Content lifecycle states.
const (
	StateDraft     = "draft"
	StatePublished = "published"
	StateArchived  = "archived"
	StateScheduled = "scheduled"
)

// Content privacy levels.
const (
	PrivacyPublic   = "public"
	PrivacyPrivate  = "private"
	PrivacyUnlisted = "unlisted"
)

func ValidState(s string) bool {
	switch s {
	case StateDraft, StatePublished, StateArchived, StateScheduled:
		return true
	}
	return false
}

func ValidPrivacy(p string) bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyUnlisted:
		return true
	}
	return false
}

// Story is long-form content owned by a Creator. Soft-deleted rows stay
// queryable unless the caller filters them out.
type Story struct {
	Key         string     `gorm:"size:28;primaryKey" json:"key"`
	Slug        string     `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Title       string     `gorm:"size:255" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	Content     string     `gorm:"type:text" json:"content"`
	AuthorKey   string     `gorm:"size:24;not null;index" json:"author_key"`
	Author      *Creator   `gorm:"foreignKey:AuthorKey" json:"author,omitempty"`
	ImageID     *string    `gorm:"size:40" json:"-"`
	Image       *Image     `gorm:"foreignKey:ImageID" json:"image,omitempty"`
	State       string     `gorm:"size:20;default:'draft'" json:"state"`
	Privacy     string     `gorm:"size:20;default:'public'" json:"privacy"`
	Tags        []*Tag     `gorm:"many2many:story_tags;" json:"tags,omitempty"`
	CategoryID  *string    `gorm:"size:40" json:"-"`
	Category    *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	PublishedAt *time.Time `json:"published_at"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	IsDeleted   bool       `gorm:"default:false" json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

func (Story) TableName() string { return "stories" }

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.Key == "" {
		s.Key = NewKey(StoryKeySize)
	}
	if s.Slug == "" {
		s.Slug = NewKey(SlugKeySize)
	}
	return nil
}

// StoryClap is a toggle relation: the row's presence means "user has
// clapped". The composite unique index keeps the toggle race-safe.
type StoryClap struct {
	ID        string    `gorm:"size:40;primaryKey" json:"id"`
	StoryKey  string    `gorm:"size:28;not null;uniqueIndex:idx_story_claps_pair" json:"story_key"`
	Story     *Story    `gorm:"foreignKey:StoryKey" json:"story,omitempty"`
	UserKey   string    `gorm:"size:24;not null;uniqueIndex:idx_story_claps_pair" json:"user_key"`
	User      *User     `gorm:"foreignKey:UserKey" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoryClap) TableName() string { return "story_claps" }

func (c *StoryClap) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewKey(RowKeySize)
	}
	return nil
}

// StoryComment is a threaded comment. Parent is assigned once at
// creation and never changes, so the tree stays acyclic.
type StoryComment struct {
	ID        string        `gorm:"size:40;primaryKey" json:"id"`
	StoryKey  string        `gorm:"size:28;not null;index" json:"story_key"`
	Story     *Story        `gorm:"foreignKey:StoryKey" json:"story,omitempty"`
	UserKey   string        `gorm:"size:24;not null;index" json:"user_key"`
	User      *User         `gorm:"foreignKey:UserKey" json:"user,omitempty"`
	AuthorKey *string       `gorm:"size:24" json:"author_key"`
	Author    *Creator      `gorm:"foreignKey:AuthorKey" json:"author,omitempty"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	ParentID  *string       `gorm:"size:40;index" json:"parent_id"`
	Parent    *StoryComment `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	IsDeleted bool          `gorm:"default:false" json:"is_deleted"`
	DeletedAt *time.Time    `json:"deleted_at"`
}

func (StoryComment) TableName() string { return "story_comments" }

func (c *StoryComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewKey(RowKeySize)
	}
	return nil
}

// StoryCommentVote is a toggle relation. The vote column keeps the
// up/down shape of the stored data, but the mutation boundary accepts
// no direction; rows are always created as "up".
type StoryCommentVote struct {
	ID        string        `gorm:"size:40;primaryKey" json:"id"`
	CommentID string        `gorm:"size:40;not null;uniqueIndex:idx_story_comment_votes_pair" json:"comment_id"`
	Comment   *StoryComment `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
	UserKey   string        `gorm:"size:24;not null;uniqueIndex:idx_story_comment_votes_pair" json:"user_key"`
	User      *User         `gorm:"foreignKey:UserKey" json:"user,omitempty"`
	Vote      string        `gorm:"size:20;default:'up'" json:"vote"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (StoryCommentVote) TableName() string { return "story_comment_votes" }

func (v *StoryCommentVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = NewKey(RowKeySize)
	}
	return nil
}
