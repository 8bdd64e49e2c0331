package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/techgyan/techgyan-backend/internal/apperr"
	"github.com/techgyan/techgyan-backend/internal/broadcast"
	"github.com/techgyan/techgyan-backend/internal/models"
	"github.com/techgyan/techgyan-backend/internal/viewer"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Broadcast event kinds for post activity.
const (
	EventPostUpdated     = "post.updated"
	EventPostClap        = "post.clap"
	EventPostComment     = "post.comment"
	EventPostCommentVote = "post.comment_vote"
	EventPostPollVote    = "post.poll_vote"
)

type PostService struct {
	db       *gorm.DB
	creators *CreatorService
	images   *ImageService
	hub      *broadcast.Hub
}

func NewPostService(db *gorm.DB, creators *CreatorService, images *ImageService, hub *broadcast.Hub) *PostService {
	return &PostService{db: db, creators: creators, images: images, hub: hub}
}

// PostInput is the create shape. PollID and ImageID select the
// sub-entity for non-text kinds and must resolve when the kind needs
// them.
type PostInput struct {
	AuthorKey string
	Text      string
	TypeOf    string
	PollID    *string
	ImageID   *string
	Tags      []string
}

// PostPatch is the merge-patch shape of a post update.
type PostPatch struct {
	Text        *string
	Privacy     *string
	State       *string
	Tags        []string
	DoPublish   *bool
	ScheduledAt *time.Time
}

// Create publishes a new post under a creator the viewer owns. Poll and
// image posts must reference an existing sub-entity.
func (s *PostService) Create(v viewer.Viewer, in PostInput) (*models.Post, error) {
	author, err := s.creators.owned(v, in.AuthorKey)
	if err != nil {
		return nil, err
	}
	typeOf := in.TypeOf
	if typeOf == "" {
		typeOf = models.PostTypeText
	}
	if !models.ValidPostType(typeOf) {
		return nil, apperr.Validation("unknown post type %q", typeOf)
	}

	post := models.Post{
		Text:        in.Text,
		TypeOf:      typeOf,
		AuthorKey:   author.Key,
		State:       models.StatePublished,
		PublishedAt: nowPtr(),
	}

	switch typeOf {
	case models.PostTypePoll:
		if in.PollID == nil {
			return nil, apperr.Validation("poll posts require a poll id")
		}
		var poll models.PostPoll
		if err := s.db.Where("id = ?", *in.PollID).First(&poll).Error; err != nil {
			return nil, apperr.NotFound("poll %q not found", *in.PollID)
		}
		post.PollID = &poll.ID
		post.Poll = &poll
	case models.PostTypeImage:
		if in.ImageID == nil {
			return nil, apperr.Validation("image posts require an image id")
		}
		var img models.PostImage
		if err := s.db.Where("id = ?", *in.ImageID).First(&img).Error; err != nil {
			return nil, apperr.NotFound("post image %q not found", *in.ImageID)
		}
		post.ImageID = &img.ID
		post.Image = &img
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		if len(in.Tags) > 0 {
			tags, err := getOrCreateTags(tx, in.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&post).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	post.Author = author
	return &post, nil
}

// Update applies a merge-patch to a post whose author the viewer owns.
func (s *PostService) Update(v viewer.Viewer, key string, patch PostPatch) (*models.Post, error) {
	post, err := s.owned(v, key)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		post.Text = *patch.Text
	}
	if patch.Privacy != nil {
		if !models.ValidPrivacy(*patch.Privacy) {
			return nil, apperr.Validation("unknown privacy %q", *patch.Privacy)
		}
		post.Privacy = *patch.Privacy
	}
	if patch.State != nil {
		if !models.ValidState(*patch.State) {
			return nil, apperr.Validation("unknown state %q", *patch.State)
		}
		post.State = *patch.State
	}
	if patch.ScheduledAt != nil {
		post.ScheduledAt = patch.ScheduledAt
		post.State = models.StateScheduled
	}
	if patch.DoPublish != nil && *patch.DoPublish {
		post.State = models.StatePublished
		if post.PublishedAt == nil {
			post.PublishedAt = nowPtr()
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(patch.Tags) > 0 {
			tags, err := getOrCreateTags(tx, patch.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(post).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		return tx.Save(post).Error
	})
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(broadcast.Event{
		Topic:      "post:" + post.Key,
		Kind:       EventPostUpdated,
		SubjectKey: post.Key,
		ActorKey:   v.Key(),
	})
	return post, nil
}

// Delete soft-deletes a post the viewer's creator authored.
func (s *PostService) Delete(v viewer.Viewer, key string) (*models.Post, error) {
	post, err := s.owned(v, key)
	if err != nil {
		return nil, err
	}
	post.IsDeleted = true
	post.DeletedAt = nowPtr()
	if err := s.db.Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Get(key string) (*models.Post, error) {
	var post models.Post
	err := s.db.Preload("Author").Preload("Poll").Preload("Image").Preload("Image.Images").Preload("Tags").
		Where("key = ?", key).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("post %q not found", key)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Clap toggles the viewer's clap on a post.
func (s *PostService) Clap(v viewer.Viewer, postKey string) (*models.Post, bool, error) {
	if !v.Authenticated() {
		return nil, false, apperr.Authorization("authentication required")
	}
	post, err := s.Get(postKey)
	if err != nil {
		return nil, false, err
	}

	clapped := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PostClap
		err := tx.Where("post_key = ? AND user_key = ?", post.Key, v.Key()).First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.PostClap{PostKey: post.Key, UserKey: v.Key()}
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
		Topic:      "post:" + post.Key,
		Kind:       EventPostClap,
		SubjectKey: post.Key,
		ActorKey:   v.Key(),
	})
	return post, clapped, nil
}

// Save toggles the post in the viewer's reading list.
func (s *PostService) Save(v viewer.Viewer, postKey string) (*models.Post, bool, error) {
	if !v.Authenticated() {
		return nil, false, apperr.Authorization("authentication required")
	}
	post, err := s.Get(postKey)
	if err != nil {
		return nil, false, err
	}

	assoc := s.db.Model(v.User).Association("SavedPosts")
	var existing []models.Post
	if err := assoc.Find(&existing, "key = ?", post.Key); err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		if err := assoc.Delete(post); err != nil {
			return nil, false, err
		}
		return post, false, nil
	}
	if err := assoc.Append(post); err != nil {
		return nil, false, err
	}
	return post, true, nil
}

// CreateComment adds a comment to a post, optionally as a reply.
func (s *PostService) CreateComment(v viewer.Viewer, postKey, content string, parentID, authorKey *string) (*models.PostComment, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("comment content is required")
	}
	post, err := s.Get(postKey)
	if err != nil {
		return nil, err
	}

	comment := models.PostComment{
		PostKey: post.Key,
		UserKey: v.Key(),
		Content: content,
	}
	if parentID != nil {
		var parent models.PostComment
		if err := s.db.Where("id = ?", *parentID).First(&parent).Error; err != nil {
			return nil, apperr.NotFound("parent comment %q not found", *parentID)
		}
		if parent.PostKey != post.Key {
			return nil, apperr.Validation("parent comment belongs to a different post")
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
		Topic:      "post:" + post.Key,
		Kind:       EventPostComment,
		SubjectKey: comment.ID,
		ActorKey:   v.Key(),
	})
	return &comment, nil
}

// UpdateComment edits the content of the viewer's own comment.
func (s *PostService) UpdateComment(v viewer.Viewer, commentID, content string) (*models.PostComment, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("comment content is required")
	}
	var comment models.PostComment
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

// DeleteComment soft-deletes the viewer's own comment.
func (s *PostService) DeleteComment(v viewer.Viewer, commentID string) (*models.PostComment, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	var comment models.PostComment
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

// VoteOnComment toggles the viewer's upvote on a post comment.
func (s *PostService) VoteOnComment(v viewer.Viewer, commentID string) (*models.PostComment, bool, error) {
	if !v.Authenticated() {
		return nil, false, apperr.Authorization("authentication required")
	}
	var comment models.PostComment
	if err := s.db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		return nil, false, apperr.NotFound("comment %q not found", commentID)
	}

	voted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PostCommentVote
		err := tx.Where("comment_id = ? AND user_key = ?", comment.ID, v.Key()).First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.PostCommentVote{CommentID: comment.ID, UserKey: v.Key(), Vote: "up"}
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
		Topic:      "post:" + comment.PostKey,
		Kind:       EventPostCommentVote,
		SubjectKey: comment.ID,
		ActorKey:   v.Key(),
	})
	return &comment, voted, nil
}

// CreatePoll stores a poll with its ordered option list. Option ids are
// assigned positionally starting at 1.
func (s *PostService) CreatePoll(v viewer.Viewer, question string, options []string) (*models.PostPoll, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperr.Validation("poll question is required")
	}
	opts := make([]models.PollOption, 0, len(options))
	for _, text := range options {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		opts = append(opts, models.PollOption{ID: len(opts) + 1, Text: text})
	}
	if len(opts) < 2 {
		return nil, apperr.Validation("a poll needs at least two options")
	}

	raw, err := json.Marshal(opts)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	poll := models.PostPoll{Question: question, Options: datatypes.JSON(raw)}
	if err := s.db.Create(&poll).Error; err != nil {
		return nil, err
	}
	return &poll, nil
}

// VotePoll records the viewer's vote on a poll post. Voting the already
// chosen option retracts it; a different option replaces the previous
// vote. Both transitions run in one transaction.
func (s *PostService) VotePoll(v viewer.Viewer, postKey string, optionID int) (*models.Post, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	post, err := s.Get(postKey)
	if err != nil {
		return nil, err
	}
	if post.TypeOf != models.PostTypePoll || post.Poll == nil {
		return nil, apperr.Validation("post %q is not a poll", postKey)
	}
	if _, ok := post.Poll.OptionByID(optionID); !ok {
		return nil, apperr.Validation("poll has no option %d", optionID)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.PostPollVote
		err := tx.Where("poll_id = ? AND user_key = ?", post.Poll.ID, v.Key()).First(&existing).Error
		switch {
		case err == nil:
			if existing.Option == optionID {
				return tx.Delete(&existing).Error
			}
			existing.Option = optionID
			return tx.Save(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := models.PostPollVote{PollID: post.Poll.ID, UserKey: v.Key(), Option: optionID}
			if err := tx.Create(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict("vote state changed concurrently")
				}
				return err
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(broadcast.Event{
		Topic:      "post:" + post.Key,
		Kind:       EventPostPollVote,
		SubjectKey: post.Key,
		ActorKey:   v.Key(),
	})
	return post, nil
}

// CreatePostImage builds an image aggregate from a batch of image
// actions. Individual failures are skipped so one bad entry does not
// sink the batch; an aggregate with zero images is rejected.
func (s *PostService) CreatePostImage(ctx context.Context, v viewer.Viewer, caption *string, inputs []ImageInput) (*models.PostImage, error) {
	if !v.Authenticated() {
		return nil, apperr.Authorization("authentication required")
	}
	var imgs []*models.Image
	for _, in := range inputs {
		img, err := s.images.Resolve(ctx, in)
		if err != nil {
			slog.Warn("post image entry skipped", "error", err)
			continue
		}
		if img != nil {
			imgs = append(imgs, img)
		}
	}
	if len(imgs) == 0 {
		return nil, apperr.Validation("no resolvable images in input")
	}

	agg := models.PostImage{Caption: caption, Images: imgs}
	if err := s.db.Create(&agg).Error; err != nil {
		return nil, err
	}
	return &agg, nil
}

// PollVotesCount counts all active votes on a poll.
func (s *PostService) PollVotesCount(pollID string) (int64, error) {
	var n int64
	err := s.db.Model(&models.PostPollVote{}).Where("poll_id = ?", pollID).Count(&n).Error
	return n, err
}

// PollOptionVotes counts active votes for one option.
func (s *PostService) PollOptionVotes(pollID string, optionID int) (int64, error) {
	var n int64
	err := s.db.Model(&models.PostPollVote{}).
		Where("poll_id = ? AND option = ?", pollID, optionID).Count(&n).Error
	return n, err
}

// MyPollVote returns the option the viewer voted for, nil if none.
func (s *PostService) MyPollVote(v viewer.Viewer, pollID string) (*int, error) {
	if !v.Authenticated() {
		return nil, nil
	}
	var vote models.PostPollVote
	err := s.db.Where("poll_id = ? AND user_key = ?", pollID, v.Key()).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote.Option, nil
}

// ClapsCount counts claps on a post.
func (s *PostService) ClapsCount(postKey string) (int64, error) {
	var n int64
	err := s.db.Model(&models.PostClap{}).Where("post_key = ?", postKey).Count(&n).Error
	return n, err
}

// ClappedBy reports whether the viewer has clapped on the post.
func (s *PostService) ClappedBy(v viewer.Viewer, postKey string) (bool, error) {
	if !v.Authenticated() {
		return false, nil
	}
	var n int64
	err := s.db.Model(&models.PostClap{}).
		Where("post_key = ? AND user_key = ?", postKey, v.Key()).Count(&n).Error
	return n > 0, err
}

// SavedBy reports whether the post is in the viewer's reading list.
func (s *PostService) SavedBy(v viewer.Viewer, postKey string) (bool, error) {
	if !v.Authenticated() {
		return false, nil
	}
	var n int64
	err := s.db.Table("user_saved_posts").
		Where("user_key = ? AND post_key = ?", v.Key(), postKey).Count(&n).Error
	return n > 0, err
}

// CommentsCount counts live root comments; replies are excluded.
func (s *PostService) CommentsCount(postKey string) (int64, error) {
	var n int64
	err := s.db.Model(&models.PostComment{}).
		Where("post_key = ? AND parent_id IS NULL AND is_deleted = ?", postKey, false).
		Count(&n).Error
	return n, err
}

// ReplyCount counts live replies under a comment.
func (s *PostService) ReplyCount(commentID string) (int64, error) {
	var n int64
	err := s.db.Model(&models.PostComment{}).
		Where("parent_id = ? AND is_deleted = ?", commentID, false).Count(&n).Error
	return n, err
}

// CommentVotesCount counts upvotes on a comment.
func (s *PostService) CommentVotesCount(commentID string) (int64, error) {
	var n int64
	err := s.db.Model(&models.PostCommentVote{}).
		Where("comment_id = ?", commentID).Count(&n).Error
	return n, err
}

// CommentVotedBy reports whether the viewer has voted on the comment.
func (s *PostService) CommentVotedBy(v viewer.Viewer, commentID string) (bool, error) {
	if !v.Authenticated() {
		return false, nil
	}
	var n int64
	err := s.db.Model(&models.PostCommentVote{}).
		Where("comment_id = ? AND user_key = ?", commentID, v.Key()).Count(&n).Error
	return n > 0, err
}

// owned loads a post and enforces that the viewer owns its author.
func (s *PostService) owned(v viewer.Viewer, key string) (*models.Post, error) {
	post, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if _, err := s.creators.owned(v, post.AuthorKey); err != nil {
		return nil, err
	}
	return post, nil
}
