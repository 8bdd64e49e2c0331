package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/techgyan/techgyan-backend/internal/apperr"
	"github.com/techgyan/techgyan-backend/internal/broadcast"
	"github.com/techgyan/techgyan-backend/internal/models"
	"github.com/techgyan/techgyan-backend/internal/viewer"
	"gorm.io/gorm"
)

// Broadcast event kinds for story activity.
const (
	EventStoryUpdated     = "story.updated"
	EventStoryClap        = "story.clap"
	EventStoryComment     = "story.comment"
	EventStoryCommentVote = "story.comment_vote"
)

type StoryService struct {
	db       *gorm.DB
	creators *CreatorService
	images   *ImageService
	hub      *broadcast.Hub
}

func NewStoryService(db *gorm.DB, creators *CreatorService, images *ImageService, hub *broadcast.Hub) *StoryService {
	return &StoryService{db: db, creators: creators, images: images, hub: hub}
}

// StoryPatch is the merge-patch shape of a story update. Nil fields are
// left unchanged; Tags is a union with the existing set, never a
// replacement.
type StoryPatch struct {
	Title       *string
	Slug        *string
	Description *string
	Content     *string
	Privacy     *string
	State       *string
	Tags        []string
	Category    *string
	Image       *ImageInput
	DoPublish   *bool
	ScheduledAt *time.Time
}

// Create opens a new draft story under a creator the viewer owns. Both
// title and slug are optional; an absent slug gets a generated one.
func (s *StoryService) Create(v viewer.Viewer, authorKey string, title, slug *string) (*models.Story, error) {
	author, err := s.creators.owned(v, authorKey)
	if err != nil {
		return nil, err
	}
	story := models.Story{
		AuthorKey: author.Key,
		State:     models.StateDraft,
	}
	if title != nil {
		story.Title = strings.TrimSpace(*title)
	}
	if slug != nil {
		cleaned := strings.TrimSpace(*slug)
		if cleaned == "" {
			return nil, apperr.Validation("slug cannot be empty")
		}
		story.Slug = cleaned
	}
	if err := s.db.Create(&story).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("slug %q is already taken", story.Slug)
		}
		return nil, err
	}
	story.Author = author
	return &story, nil
}

// Update applies a merge-patch to a story whose author the viewer owns.
func (s *StoryService) Update(ctx context.Context, v viewer.Viewer, key string, patch StoryPatch) (*models.Story, error) {
	story, err := s.owned(v, key)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		story.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Slug != nil {
		cleaned := strings.TrimSpace(*patch.Slug)
		if cleaned == "" {
			return nil, apperr.Validation("slug cannot be empty")
		}
		story.Slug = cleaned
	}
	if patch.Description != nil {
		story.Description = patch.Description
	}
	if patch.Content != nil {
		story.Content = *patch.Content
	}
	if patch.Privacy != nil {
		if !models.ValidPrivacy(*patch.Privacy) {
			return nil, apperr.Validation("unknown privacy %q", *patch.Privacy)
		}
		story.Privacy = *patch.Privacy
	}
	if patch.State != nil {
		if !models.ValidState(*patch.State) {
			return nil, apperr.Validation("unknown state %q", *patch.State)
		}
		story.State = *patch.State
	}
	if patch.ScheduledAt != nil {
		story.ScheduledAt = patch.ScheduledAt
		story.State = models.StateScheduled
	}
	if patch.DoPublish != nil && *patch.DoPublish {
		story.State = models.StatePublished
		if story.PublishedAt == nil {
			story.PublishedAt = nowPtr()
		}
	}
	if patch.Image != nil {
		img, err := s.images.Resolve(ctx, *patch.Image)
		if err != nil {
			return nil, err
		}
		if img != nil {
			story.ImageID = &img.ID
			story.Image = img
		} else if patch.Image.Action == ImageActionDelete {
			story.ImageID = nil
			story.Image = nil
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if patch.Category != nil {
			cat, err := findCategory(tx, *patch.Category)
			if err != nil {
				return err
			}
			story.CategoryID = &cat.ID
			story.Category = cat
		}
		if len(patch.Tags) > 0 {
			tags, err := getOrCreateTags(tx, patch.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(story).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		return tx.Save(story).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.Conflict("slug %q is already taken", story.Slug)
	}
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(broadcast.Event{
		Topic:      "story:" + story.Key,
		Kind:       EventStoryUpdated,
		SubjectKey: story.Key,
		ActorKey:   v.Key(),
	})
	return story, nil
}

// Delete soft-deletes a story the viewer's creator authored.
func (s *StoryService) Delete(v viewer.Viewer, key string) (*models.Story, error) {
	story, err := s.owned(v, key)
	if err != nil {
		return nil, err
	}
	story.IsDeleted = true
	story.DeletedAt = nowPtr()
	if err := s.db.Save(story).Error; err != nil {
		return nil, err
	}
	return story, nil
}

// Get fetches a story by key. Soft-deleted stories still resolve; the
// caller decides what to show for them.
func (s *StoryService) Get(key string) (*models.Story, error) {
	var story models.Story
	err := s.db.Preload("Author").Preload("Image").Preload("Tags").Preload("Category").
		Where("key = ?", key).First(&story).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("story %q not found", key)
	}
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (s *StoryService) GetBySlug(slug string) (*models.Story, error) {
	var story models.Story
	err := s.db.Preload("Author").Preload("Image").Preload("Tags").Preload("Category").
		Where("slug = ?", slug).First(&story).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("story with slug %q not found", slug)
	}
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// Clap toggles the viewer's clap on a story and reports the resulting
// state.
func (s *StoryService) Clap(v viewer.Viewer, storyKey string) (*models.Story, bool, error) {
	if !v.Authenticated() {
		return nil, false, apperr.Authorization("authentication required")
	}
	story, err := s.Get(storyKey)
	if err != nil {
		return nil, false, err
	}

	clapped := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.StoryClap
		err := tx.Where("story_key = ? AND user_key = ?", story.Key, v.Key()).First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.StoryClap{StoryKey: story.Key, UserKey: v.Key()}
			if err := tx.Create(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict("clap state changed concurrently")
				}
				return err
			}
			clapped = true
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}

	s.hub.Broadcast(broadcast.Event{
		Topic:      "story:" + story.Key,
		Kind:       EventStoryClap,
		SubjectKey: story.Key,
		ActorKey:   v.Key(),
	})
	return story, clapped, nil
}

// Save toggles the story in the viewer's reading list.
func (s *StoryService) Save(v viewer.Viewer, storyKey string) (*models.Story, bool, error) {
	if !v.Authenticated() {
		return nil, false, apperr.Authorization("authentication required")
	}
	story, err := s.Get(storyKey)
	if err != nil {
		return nil, false, err
	}

	assoc := s.db.Model(v.User).Association("SavedStories")
	var existing []models.Story
	if err := assoc.Find(&existing, "key = ?", story.Key); err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		if err := assoc.Delete(story); err != nil {
			return nil, false, err
		}
		return story, false, nil
	}
	if err := assoc.Append(story); err != nil {
		return nil, false, err
	}
	return story, true, nil
}

// CreateComment adds a comment to a story, optionally as a reply. When
// authorKey is set, the comment is attributed to that creator persona,
// which the viewer must own.
func (s *StoryService) CreateComment(v viewer.Viewer, storyKey, content string, parentID, authorKey *string) (*models.StoryComment, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("comment content is required")
	}
	story, err := s.Get(storyKey)
	if err != nil {
		return nil, err
	}

	comment := models.StoryComment{
		StoryKey: story.Key,
		UserKey:  v.Key(),
		Content:  content,
	}
	if parentID != nil {
		var parent models.StoryComment
		if err := s.db.Where("id = ?", *parentID).First(&parent).Error; err != nil {
			return nil, apperr.NotFound("parent comment %q not found", *parentID)
		}
		if parent.StoryKey != story.Key {
			return nil, apperr.Validation("parent comment belongs to a different story")
		}
		comment.ParentID = &parent.ID
	}
	if authorKey != nil {
		author, err := s.creators.owned(v, *authorKey)
		if err != nil {
			return nil, err
		}
		comment.AuthorKey = &author.Key
	}

	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	s.hub.Broadcast(broadcast.Event{
		Topic:      "story:" + story.Key,
		Kind:       EventStoryComment,
		SubjectKey: comment.ID,
		ActorKey:   v.Key(),
	})
	return &comment, nil
}

// UpdateComment edits the content of the viewer's own comment.
func (s *StoryService) UpdateComment(v viewer.Viewer, commentID, content string) (*models.StoryComment, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("comment content is required")
	}
	var comment models.StoryComment
	if err := s.db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		return nil, apperr.NotFound("comment %q not found", commentID)
	}
	if comment.UserKey != v.Key() {
		return nil, apperr.Authorization("you can only edit your own comments")
	}
	comment.Content = content
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment soft-deletes the viewer's own comment. Replies stay
// attached so the thread keeps its shape.
func (s *StoryService) DeleteComment(v viewer.Viewer, commentID string) (*models.StoryComment, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	var comment models.StoryComment
	if err := s.db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		return nil, apperr.NotFound("comment %q not found", commentID)
	}
	if comment.UserKey != v.Key() {
		return nil, apperr.Authorization("you can only delete your own comments")
	}
	comment.IsDeleted = true
	comment.DeletedAt = nowPtr()
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// VoteOnComment toggles the viewer's upvote on a story comment.
func (s *StoryService) VoteOnComment(v viewer.Viewer, commentID string) (*models.StoryComment, bool, error) {
	if !v.Authenticated() {
		return nil, false, apperr.Authorization("authentication required")
	}
	var comment models.StoryComment
	if err := s.db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		return nil, false, apperr.NotFound("comment %q not found", commentID)
	}

	voted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.StoryCommentVote
		err := tx.Where("comment_id = ? AND user_key = ?", comment.ID, v.Key()).First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.StoryCommentVote{CommentID: comment.ID, UserKey: v.Key(), Vote: "up"}
			if err := tx.Create(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict("vote state changed concurrently")
				}
				return err
			}
			voted = true
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}

	s.hub.Broadcast(broadcast.Event{
		Topic:      "story:" + comment.StoryKey,
		Kind:       EventStoryCommentVote,
		SubjectKey: comment.ID,
		ActorKey:   v.Key(),
	})
	return &comment, voted, nil
}

// ClapsCount counts claps on a story.
func (s *StoryService) ClapsCount(storyKey string) (int64, error) {
	var n int64
	err := s.db.Model(&models.StoryClap{}).Where("story_key = ?", storyKey).Count(&n).Error
	return n, err
}

// ClappedBy reports whether the viewer has clapped on the story.
func (s *StoryService) ClappedBy(v viewer.Viewer, storyKey string) (bool, error) {
	if !v.Authenticated() {
		return false, nil
	}
	var n int64
	err := s.db.Model(&models.StoryClap{}).
		Where("story_key = ? AND user_key = ?", storyKey, v.Key()).Count(&n).Error
	return n > 0, err
}

// SavedBy reports whether the story is in the viewer's reading list.
func (s *StoryService) SavedBy(v viewer.Viewer, storyKey string) (bool, error) {
	if !v.Authenticated() {
		return false, nil
	}
	var n int64
	err := s.db.Table("user_saved_stories").
		Where("user_key = ? AND story_key = ?", v.Key(), storyKey).Count(&n).Error
	return n > 0, err
}

// CommentsCount counts live root comments; replies are excluded.
func (s *StoryService) CommentsCount(storyKey string) (int64, error) {
	var n int64
	err := s.db.Model(&models.StoryComment{}).
		Where("story_key = ? AND parent_id IS NULL AND is_deleted = ?", storyKey, false).
		Count(&n).Error
	return n, err
}

// ReplyCount counts live replies under a comment.
func (s *StoryService) ReplyCount(commentID string) (int64, error) {
	var n int64
	err := s.db.Model(&models.StoryComment{}).
		Where("parent_id = ? AND is_deleted = ?", commentID, false).Count(&n).Error
	return n, err
}

// CommentVotesCount counts upvotes on a comment.
func (s *StoryService) CommentVotesCount(commentID string) (int64, error) {
	var n int64
	err := s.db.Model(&models.StoryCommentVote{}).
		Where("comment_id = ?", commentID).Count(&n).Error
	return n, err
}

// CommentVotedBy reports whether the viewer has voted on the comment.
func (s *StoryService) CommentVotedBy(v viewer.Viewer, commentID string) (bool, error) {
	if !v.Authenticated() {
		return false, nil
	}
	var n int64
	err := s.db.Model(&models.StoryCommentVote{}).
		Where("comment_id = ? AND user_key = ?", commentID, v.Key()).Count(&n).Error
	return n > 0, err
}

// owned loads a story and enforces that the viewer owns its author.
func (s *StoryService) owned(v viewer.Viewer, key string) (*models.Story, error) {
	story, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if _, err := s.creators.owned(v, story.AuthorKey); err != nil {
		return nil, err
	}
	return story, nil
}
