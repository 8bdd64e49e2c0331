package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post sub-kind discriminator values.
const (
	PostTypeText  = "text"
	PostTypeImage = "image"
	PostTypeVideo = "video"
	PostTypeLink  = "link"
	PostTypePoll  = "poll"
	PostTypeEvent = "event"
)

func ValidPostType(t string) bool {
	switch t {
	case PostTypeText, PostTypeImage, PostTypeVideo, PostTypeLink, PostTypePoll, PostTypeEvent:
		return true
	}
	return false
}

// Post is short-form content. TypeOf selects which sub-entity (poll,
// image) is active; create validation guarantees a non-text post always
// references a resolvable sub-entity.
type Post struct {
	Key         string     `gorm:"size:30;primaryKey" json:"key"`
	Text        string     `gorm:"type:text" json:"text"`
	TypeOf      string     `gorm:"size:20;default:'text'" json:"type_of"`
	PollID      *string    `gorm:"size:40" json:"-"`
	Poll        *PostPoll  `gorm:"foreignKey:PollID" json:"poll,omitempty"`
	ImageID     *string    `gorm:"size:40" json:"-"`
	Image       *PostImage `gorm:"foreignKey:ImageID" json:"image,omitempty"`
	AuthorKey   string     `gorm:"size:24;not null;index" json:"author_key"`
	Author      *Creator   `gorm:"foreignKey:AuthorKey" json:"author,omitempty"`
	State       string     `gorm:"size:20;default:'published'" json:"state"`
	Privacy     string     `gorm:"size:20;default:'public'" json:"privacy"`
	Tags        []*Tag     `gorm:"many2many:post_tags;" json:"tags,omitempty"`
	PublishedAt *time.Time `json:"published_at"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	IsDeleted   bool       `gorm:"default:false" json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.Key == "" {
		p.Key = NewKey(PostKeySize)
	}
	return nil
}

// PollOption is one entry of a poll's ordered option list, stored as a
// JSON column on the poll row.
type PollOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type PostPoll struct {
	ID        string         `gorm:"size:40;primaryKey" json:"id"`
	Question  string         `gorm:"size:255;not null" json:"question"`
	Options   datatypes.JSON `json:"options"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (PostPoll) TableName() string { return "post_polls" }

func (p *PostPoll) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewKey(RowKeySize)
	}
	return nil
}

func (p *PostPoll) OptionList() []PollOption {
	var opts []PollOption
	if len(p.Options) == 0 {
		return opts
	}
	_ = json.Unmarshal(p.Options, &opts)
	return opts
}

// OptionByID returns the stored option with the given id, if any.
func (p *PostPoll) OptionByID(id int) (PollOption, bool) {
	for _, opt := range p.OptionList() {
		if opt.ID == id {
			return opt, true
		}
	}
	return PollOption{}, false
}

// PostPollVote holds at most one active vote per (poll, user). Voting
// the same option again retracts it; a different option replaces it.
type PostPollVote struct {
	ID        string    `gorm:"size:40;primaryKey" json:"id"`
	PollID    string    `gorm:"size:40;not null;uniqueIndex:idx_post_poll_votes_pair" json:"poll_id"`
	Poll      *PostPoll `gorm:"foreignKey:PollID" json:"poll,omitempty"`
	UserKey   string    `gorm:"size:24;not null;uniqueIndex:idx_post_poll_votes_pair" json:"user_key"`
	User      *User     `gorm:"foreignKey:UserKey" json:"user,omitempty"`
	Option    int       `gorm:"not null" json:"option"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PostPollVote) TableName() string { return "post_poll_votes" }

func (v *PostPollVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = NewKey(RowKeySize)
	}
	return nil
}

// PostImage aggregates the image resources of an image post.
type PostImage struct {
	ID        string    `gorm:"size:40;primaryKey" json:"id"`
	Caption   *string   `gorm:"size:255" json:"caption"`
	Images    []*Image  `gorm:"many2many:post_image_objs;" json:"images,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PostImage) TableName() string { return "post_images" }

func (i *PostImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = NewKey(RowKeySize)
	}
	return nil
}

type PostClap struct {
	ID        string    `gorm:"size:40;primaryKey" json:"id"`
	PostKey   string    `gorm:"size:30;not null;uniqueIndex:idx_post_claps_pair" json:"post_key"`
	Post      *Post     `gorm:"foreignKey:PostKey" json:"post,omitempty"`
	UserKey   string    `gorm:"size:24;not null;uniqueIndex:idx_post_claps_pair" json:"user_key"`
	User      *User     `gorm:"foreignKey:UserKey" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PostClap) TableName() string { return "post_claps" }

func (c *PostClap) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewKey(RowKeySize)
	}
	return nil
}

type PostComment struct {
	ID        string       `gorm:"size:40;primaryKey" json:"id"`
	PostKey   string       `gorm:"size:30;not null;index" json:"post_key"`
	Post      *Post        `gorm:"foreignKey:PostKey" json:"post,omitempty"`
	UserKey   string       `gorm:"size:24;not null;index" json:"user_key"`
	User      *User        `gorm:"foreignKey:UserKey" json:"user,omitempty"`
	AuthorKey *string      `gorm:"size:24" json:"author_key"`
	Author    *Creator     `gorm:"foreignKey:AuthorKey" json:"author,omitempty"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	ParentID  *string      `gorm:"size:40;index" json:"parent_id"`
	Parent    *PostComment `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	IsDeleted bool         `gorm:"default:false" json:"is_deleted"`
	DeletedAt *time.Time   `json:"deleted_at"`
}

func (PostComment) TableName() string { return "post_comments" }

func (c *PostComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewKey(RowKeySize)
	}
	return nil
}

type PostCommentVote struct {
	ID        string       `gorm:"size:40;primaryKey" json:"id"`
	CommentID string       `gorm:"size:40;not null;uniqueIndex:idx_post_comment_votes_pair" json:"comment_id"`
	Comment   *PostComment `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
	UserKey   string       `gorm:"size:24;not null;uniqueIndex:idx_post_comment_votes_pair" json:"user_key"`
	User      *User        `gorm:"foreignKey:UserKey" json:"user,omitempty"`
	Vote      string       `gorm:"size:20;default:'up'" json:"vote"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (PostCommentVote) TableName() string { return "post_comment_votes" }

func (v *PostCommentVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = NewKey(RowKeySize)
	}
	return nil
}
